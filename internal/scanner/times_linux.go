//go:build linux

package scanner

import (
	"time"

	"golang.org/x/sys/unix"
)

// ageAnchor returns the newest of a file's modification and change times.
// Cloud sync clients preserve the recording mtime when a file lands, which
// can be days in the past; the ctime reflects when the local copy actually
// appeared, so anchoring on the newer of the two keeps freshly synced old
// recordings inside the scan window.
func ageAnchor(path string, modTime time.Time) time.Time {
	var stat unix.Stat_t
	if err := unix.Stat(path, &stat); err != nil {
		return modTime
	}
	ctime := time.Unix(stat.Ctim.Unix())
	if ctime.After(modTime) {
		return ctime
	}
	return modTime
}
