package plan

import (
	"os"
	"sync"

	"snapsort/internal/fileutil"
)

// Index is the shared per-run collision index: destination path to the
// content that will occupy it. Check-and-reserve is a single atomic step so
// two workers racing for one path can never both win; the loser is redirected
// to the rename-suffix branch by whichever reservation landed first.
type Index struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// NewIndex returns an empty collision index.
func NewIndex() *Index {
	return &Index{entries: make(map[string]*Entry)}
}

// Entry records the occupant of one destination path. Its content hash is
// computed lazily, only when a collision forces a comparison.
type Entry struct {
	dest string

	mu     sync.Mutex
	source string
	hash   string
}

// Source returns the path whose content occupies (or will occupy) the slot.
func (e *Entry) Source() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source
}

// Hash returns the occupant's SHA256, computing it on first use. A move
// deletes the recorded source once the transfer finishes; the destination
// then holds the same verified bytes, so hashing falls through to it.
// Failures are not cached: a later caller retries.
func (e *Entry) Hash() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.hash != "" {
		return e.hash, nil
	}
	hash, err := fileutil.HashFile(e.source)
	if os.IsNotExist(err) && e.source != e.dest {
		hash, err = fileutil.HashFile(e.dest)
	}
	if err != nil {
		return "", err
	}
	e.hash = hash
	return hash, nil
}

// Acquire reserves dest for source if the slot is free. When the slot is
// already held, in-run or by a file already on disk from a previous run, the
// holding entry is returned with owned=false. The disk probe happens under
// the index lock so the check-and-reserve step stays atomic within the run.
func (ix *Index) Acquire(dest, source string) (*Entry, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if held, ok := ix.entries[dest]; ok {
		return held, false
	}

	if _, err := os.Stat(dest); err == nil {
		// A previous run placed a file here; it owns the slot.
		held := &Entry{dest: dest, source: dest}
		ix.entries[dest] = held
		return held, false
	}

	entry := &Entry{dest: dest, source: source}
	ix.entries[dest] = entry
	return entry, true
}

// Release frees a reservation after a failed transfer so a re-run inside the
// same process does not believe the slot is taken.
func (ix *Index) Release(dest string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.entries, dest)
}

// Len returns the number of reserved paths.
func (ix *Index) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.entries)
}
