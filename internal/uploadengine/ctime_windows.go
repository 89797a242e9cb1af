//go:build windows

package uploadengine

import (
	"os"
	"syscall"
	"time"
)

func creationTime(fi os.FileInfo) (time.Time, bool) {
	st, ok := fi.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return time.Time{}, false
	}
	t := time.Unix(0, st.CreationTime.Nanoseconds())
	if t.IsZero() {
		return time.Time{}, false
	}
	return t, true
}
