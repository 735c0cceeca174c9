//go:build darwin

package metadata

import (
	"time"

	"golang.org/x/sys/unix"
)

// changeTime returns the inode status-change timestamp.
func changeTime(path string) (time.Time, bool) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return time.Time{}, false
	}
	return time.Unix(st.Ctimespec.Sec, st.Ctimespec.Nsec), true
}
