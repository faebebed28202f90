// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// It is the fast path for video container metadata: one external process
// call returns every creation tag the container carries. The wrapper has no
// snapsort-specific dependencies and could be extracted as a standalone
// library.
package ffprobe
