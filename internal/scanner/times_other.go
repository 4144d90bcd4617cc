//go:build !linux

package scanner

import "time"

// ageAnchor falls back to the modification time on platforms where the
// change time is not exposed in a portable way.
func ageAnchor(_ string, modTime time.Time) time.Time {
	return modTime
}
