// Package mover executes placement decisions: verified transfers through a
// temp file in the destination directory, finalized by rename, with move
// semantics that delete the source only after the write is confirmed.
package mover
