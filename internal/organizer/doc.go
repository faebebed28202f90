// Package organizer is the run coordinator. It scans the source tree, fans
// files out over a bounded worker pool through the resolve, plan, and apply
// stages, holds a destination-root lock for the duration of the run, and
// aggregates per-file results into a run summary.
package organizer
