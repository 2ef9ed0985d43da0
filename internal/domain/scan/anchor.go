package scan

import (
	"strconv"
	"strings"
	"time"
)

// FindLastScanTime looks for a top-level "<marker> = <unixSeconds>"
// assignment in the document and returns it as the anchor for relative
// time-key reconstruction. Absent or unreadable markers return false;
// callers fall back to wall-clock time, accepting the timestamp drift
// that repeated imports of marker-less documents can cause.
func FindLastScanTime(text, marker string) (time.Time, bool) {
	for _, line := range strings.Split(text, "\n") {
		f, ok := splitLine(line)
		if !ok || f.key != marker || f.opensTable {
			continue
		}
		secs, err := strconv.ParseInt(f.value, 10, 64)
		if err != nil || secs <= 0 {
			return time.Time{}, false
		}
		return time.Unix(secs, 0).UTC(), true
	}
	return time.Time{}, false
}
