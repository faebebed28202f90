package datefind

import (
	"regexp"
	"strings"
	"time"
)

// Rules is the single acceptance rule shared by every strategy: a candidate
// timestamp must parse to a concrete calendar date whose year falls inside
// the plausible capture window. Centralizing this means adding a format only
// ever adds candidates, never new acceptance logic.
type Rules struct {
	// EarliestYear rejects placeholder and pre-digital dates.
	EarliestYear int
	// FutureGrace tolerates camera clocks ahead of ours (timezones).
	FutureGrace time.Duration
	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

// DefaultRules returns the acceptance window used when config leaves the
// bounds unset.
func DefaultRules() Rules {
	return Rules{EarliestYear: 1990, FutureGrace: 24 * time.Hour}
}

func (r Rules) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Accept reports whether a candidate timestamp is a plausible capture date.
func (r Rules) Accept(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	earliest := r.EarliestYear
	if earliest <= 0 {
		earliest = 1990
	}
	if t.Year() < earliest {
		return false
	}
	grace := r.FutureGrace
	if grace <= 0 {
		grace = 24 * time.Hour
	}
	return !t.After(r.now().Add(grace))
}

// dateFormats are the layouts seen in EXIF, XMP, and container metadata,
// tried in order.
var dateFormats = []string{
	"2006:01:02 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006:01:02 15:04:05Z07:00",
	"2006-01-02",
	"2006:01:02",
}

var trailingZoneRe = regexp.MustCompile(`[+-]\d{2}:\d{2}$`)

// ParseFlexible parses a metadata date string in any of the known layouts.
// Zone offsets are dropped: capture dates are treated as local wall-clock
// values the way the camera wrote them.
func ParseFlexible(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range dateFormats {
		parsed, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		if parsed.Location() != time.Local {
			parsed = time.Date(
				parsed.Year(), parsed.Month(), parsed.Day(),
				parsed.Hour(), parsed.Minute(), parsed.Second(),
				parsed.Nanosecond(), time.Local,
			)
		}
		return parsed, true
	}

	// Strip trailing zone suffixes some writers append to non-zoned layouts.
	cleaned := strings.TrimSuffix(trailingZoneRe.ReplaceAllString(value, ""), "Z")
	if cleaned != value {
		return ParseFlexible(cleaned)
	}
	return time.Time{}, false
}
