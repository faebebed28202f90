package datefind

import (
	"context"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"snapsort/internal/media"
)

// filenamePatterns are the recognized date shapes, most specific first so a
// full timestamp is never truncated to its date prefix. Submatches are
// year, month, day[, hour, minute, second].
var filenamePatterns = []*regexp.Regexp{
	// 20220101_120000, 20220101-120000, 20220101120000
	regexp.MustCompile(`(?:^|\D)((?:19|20)\d{2})(\d{2})(\d{2})[-_ .]?(\d{2})(\d{2})(\d{2})(?:\D|$)`),
	// 2022-01-01 12.00.00, 2022-01-01_12-00-00, 2022-01-01T12:00:00
	regexp.MustCompile(`(?:^|\D)((?:19|20)\d{2})-(\d{2})-(\d{2})[-_ T](\d{2})[.:\-](\d{2})[.:\-](\d{2})(?:\D|$)`),
	// 2022-01-01
	regexp.MustCompile(`(?:^|\D)((?:19|20)\d{2})-(\d{2})-(\d{2})(?:\D|$)`),
	// 20220101
	regexp.MustCompile(`(?:^|\D)((?:19|20)\d{2})(\d{2})(\d{2})(?:\D|$)`),
}

// unixMillisPattern matches epoch-milliseconds names some phones produce
// (13 digits, ~2011 through ~2025 era prefixes).
var unixMillisPattern = regexp.MustCompile(`(?:^|\D)(1[3-7]\d{11})(?:\D|$)`)

// filenameStrategy recovers a capture date from patterns embedded in the
// file name, e.g. VID_20220101_120000.mov.
type filenameStrategy struct{}

func (s *filenameStrategy) Name() string { return "filename" }

func (s *filenameStrategy) Tier() Tier { return TierFilename }

func (s *filenameStrategy) TryExtract(ctx context.Context, file media.File) (Candidate, error) {
	if err := ctx.Err(); err != nil {
		return Candidate{}, err
	}

	base := filepath.Base(file.Path)

	for _, pattern := range filenamePatterns {
		match := pattern.FindStringSubmatch(base)
		if match == nil {
			continue
		}
		if parsed, ok := timeFromGroups(match[1:]); ok {
			return Candidate{Time: parsed, Strategy: s.Name(), Tier: s.Tier()}, nil
		}
	}

	if match := unixMillisPattern.FindStringSubmatch(base); match != nil {
		millis, err := strconv.ParseInt(match[1], 10, 64)
		if err == nil {
			return Candidate{Time: time.UnixMilli(millis), Strategy: s.Name(), Tier: s.Tier()}, nil
		}
	}

	return Candidate{}, ErrNoDate
}

// timeFromGroups builds a concrete time from matched digit groups, rejecting
// impossible calendar components instead of letting time.Date normalize them
// (2022-13-40 must not become 2023-02-09).
func timeFromGroups(groups []string) (time.Time, bool) {
	nums := make([]int, len(groups))
	for i, g := range groups {
		n, err := strconv.Atoi(g)
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}

	year, month, day := nums[0], nums[1], nums[2]
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	var hour, minute, second int
	if len(nums) >= 6 {
		hour, minute, second = nums[3], nums[4], nums[5]
		if hour > 23 || minute > 59 || second > 59 {
			return time.Time{}, false
		}
	}

	parsed := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.Local)
	if parsed.Day() != day || parsed.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return parsed, true
}
