//go:build !linux && !darwin

package metadata

import "time"

// changeTime is unavailable on this platform; only the modification
// time participates in the fallback.
func changeTime(path string) (time.Time, bool) {
	return time.Time{}, false
}
