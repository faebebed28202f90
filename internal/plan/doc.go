// Package plan maps classified, date-resolved files onto destination paths.
// It owns the collision policy: byte-identical duplicates are skipped, name
// clashes with different content get a numeric suffix, and a shared
// check-and-reserve index keeps concurrent workers from racing for one path.
package plan
