package media

import "time"

// File is the immutable per-file record created at scan time. It carries
// everything the pipeline stages need without re-statting the source.
type File struct {
	// Path is the absolute source path.
	Path string
	// Kind is the classified media kind.
	Kind Kind
	// Size is the byte size at scan time.
	Size int64
	// ModTime is the filesystem modification timestamp at scan time.
	ModTime time.Time
}
