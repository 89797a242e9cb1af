package uploadengine

import (
	"fmt"
	"strings"
	"sync"
	"time"

	exiftool "github.com/barasher/go-exiftool"
)

// exifTimeFormat is how exiftool prints timestamps.
const exifTimeFormat = "2006:01:02 15:04:05"

// Capture-date fields in order of preference. Video containers name their
// fields differently from EXIF proper.
var imageDateFields = []string{"DateTimeOriginal", "DateTimeDigitized", "CreateDate", "DateTime"}
var videoDateFields = []string{"CreateDate", "MediaCreateDate", "TrackCreateDate", "ModifyDate"}

// Exiftool wraps a single long-lived exiftool process. ExtractMetadata is not
// safe for concurrent use, so every read is serialized through a mutex.
type Exiftool struct {
	mu sync.Mutex
	et *exiftool.Exiftool
}

// NewExiftool starts the exiftool helper process. It fails when the exiftool
// binary is not installed.
func NewExiftool() (*Exiftool, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("unable to start exiftool: %w", err)
	}
	return &Exiftool{et: et}, nil
}

// Close shuts the exiftool process down.
func (e *Exiftool) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.et != nil {
		e.et.Close()
		e.et = nil
	}
}

// CaptureDate reads the capture timestamp from a file's embedded metadata.
// Best effort: any failure reports not-ok and the caller falls back to
// filesystem times.
func (e *Exiftool) CaptureDate(path, mimeType string) (time.Time, bool) {
	fields := imageDateFields
	if strings.HasPrefix(mimeType, "video/") {
		fields = videoDateFields
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.et == nil {
		return time.Time{}, false
	}

	for _, fileInfo := range e.et.ExtractMetadata(path) {
		if fileInfo.Err != nil {
			continue
		}
		for _, field := range fields {
			raw, err := fileInfo.GetString(field)
			if err != nil {
				continue
			}
			// Some cameras append a timezone offset; parse the leading part.
			if len(raw) > len(exifTimeFormat) {
				raw = raw[:len(exifTimeFormat)]
			}
			t, err := time.ParseInLocation(exifTimeFormat, raw, time.Local)
			if err != nil {
				continue
			}
			return t, true
		}
	}
	return time.Time{}, false
}
