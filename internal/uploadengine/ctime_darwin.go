//go:build darwin

package uploadengine

import (
	"os"
	"syscall"
	"time"
)

// APFS/HFS+ expose a birth time through Stat_t.
func creationTime(fi os.FileInfo) (time.Time, bool) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, false
	}
	ts := st.Birthtimespec
	if ts.Sec == 0 && ts.Nsec == 0 {
		return time.Time{}, false
	}
	return time.Unix(ts.Sec, ts.Nsec), true
}
