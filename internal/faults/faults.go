package faults

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for per-file and run-level failure classification.
// Every error crossing a pipeline stage boundary wraps exactly one of these.
var (
	// ErrUnsupportedFormat marks files the classifier could not identify.
	// Routed to the Unknown bucket; never a run failure.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrMetadataUnreadable marks files whose extraction strategies were all
	// exhausted. The filesystem-timestamp fallback still applies, so this is
	// informational rather than fatal.
	ErrMetadataUnreadable = errors.New("metadata unreadable")
	// ErrSourceUnreadable marks files that could not be opened or read.
	ErrSourceUnreadable = errors.New("source unreadable")
	// ErrDestinationConflict marks a collision-index invariant violation:
	// two reservations for one destination path. Always a bug, never a
	// recoverable runtime condition.
	ErrDestinationConflict = errors.New("destination conflict")
	// ErrDestinationWriteFailed marks transfer failures (disk full,
	// permissions, path length).
	ErrDestinationWriteFailed = errors.New("destination write failed")
	// ErrTimeout marks metadata probes that exceeded their per-operation
	// deadline.
	ErrTimeout = errors.New("timeout")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrSourceUnreadable
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps an error to the short reason label recorded on a
// ProcessingResult and rendered in the run summary.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedFormat):
		return "unsupported-format"
	case errors.Is(err, ErrMetadataUnreadable):
		return "metadata-unreadable"
	case errors.Is(err, ErrSourceUnreadable):
		return "source-unreadable"
	case errors.Is(err, ErrDestinationConflict):
		return "destination-conflict"
	case errors.Is(err, ErrDestinationWriteFailed):
		return "destination-write-failed"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	default:
		return "error"
	}
}

// Fatal reports whether an error should abort the whole run instead of
// failing a single file. Destination-conflict is an invariant violation and
// destination-root write failures leave nowhere for any file to go.
func Fatal(err error) bool {
	return errors.Is(err, ErrDestinationConflict)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
