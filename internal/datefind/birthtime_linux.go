//go:build linux

package datefind

import (
	"time"

	"golang.org/x/sys/unix"
)

// birthTime returns the statx birth timestamp when the filesystem records
// one. Many Linux filesystems (ext4, btrfs, xfs) do; the kernel reports
// support through the result mask.
func birthTime(path string) (time.Time, bool) {
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, path, unix.AT_STATX_SYNC_AS_STAT, unix.STATX_BTIME, &stx)
	if err != nil {
		return time.Time{}, false
	}
	if stx.Mask&unix.STATX_BTIME == 0 {
		return time.Time{}, false
	}
	if stx.Btime.Sec <= 0 {
		return time.Time{}, false
	}
	return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec)), true
}
