// Package datefind resolves the capture date of a media file.
//
// A registry maps each media kind to an ordered chain of extraction
// strategies; the order encodes trust (embedded capture tags over container
// metadata over descriptive metadata over filename patterns). The resolver
// tries them in turn and applies one shared acceptance rule, then falls back
// to the filesystem timestamp, which is always accepted. Strategies are
// read-only, bounded by per-operation deadlines, and report failure as typed
// outcomes rather than faults.
package datefind
