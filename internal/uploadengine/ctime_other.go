//go:build !darwin && !windows

package uploadengine

import (
	"os"
	"time"
)

// Linux and friends do not expose a file creation time through os.FileInfo;
// the caller falls back to the modification time.
func creationTime(os.FileInfo) (time.Time, bool) {
	return time.Time{}, false
}
