//go:build !linux

package datefind

import "time"

// birthTime is unavailable off Linux; the modification time from scan is
// used instead.
func birthTime(string) (time.Time, bool) {
	return time.Time{}, false
}
