package uploadengine

import (
	"errors"
	"fmt"
	"hash/fnv"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// DeviceID identifies this client to the server. It is the prefix of every
// deviceAssetId, so the server can tell our uploads apart from other clients.
const DeviceID = "goimmich"

var ErrInvalidName = errors.New("filename is not valid UTF-8")

// mimeByExtension covers the media formats we care about. mime.TypeByExtension
// knows most of these too, but its table varies by platform; an explicit map
// keeps classification deterministic.
var mimeByExtension = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".heic": "image/heic",
	".heif": "image/heif",
	".dng":  "image/x-adobe-dng",
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mpg":  "video/mpeg",
	".mpeg": "video/mpeg",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".3gp":  "video/3gpp",
}

// Media is one discovered file together with its sniffed content type.
type Media struct {
	Path     string
	MimeType string
}

// AssetIdentity carries the metadata the server uses to deduplicate an
// upload: a stable per-path id plus the file timestamps.
type AssetIdentity struct {
	DeviceAssetID string
	DeviceID      string
	CreatedAt     time.Time
	ModifiedAt    time.Time
}

// SniffMime classifies a path by its extension. Returns "" for anything we
// cannot classify.
func SniffMime(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return ""
	}
	if mt, ok := mimeByExtension[ext]; ok {
		return mt
	}
	mt := mime.TypeByExtension(ext)
	if mt == "" {
		return ""
	}
	// Strip any parameters such as "; charset=utf-8".
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt
}

// IsMedia reports whether a path classifies as an image or a video.
func IsMedia(path string) bool {
	mt := SniffMime(path)
	return strings.HasPrefix(mt, "image/") || strings.HasPrefix(mt, "video/")
}

// NewMedia builds a Media for a path, resolving it to an absolute path so the
// derived identity does not depend on the working directory.
func NewMedia(path string) (Media, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Media{}, err
	}
	return Media{Path: abs, MimeType: SniffMime(abs)}, nil
}

// DeviceAssetID derives the stable per-path identifier sent to the server.
// Same path, same id on every run; the hash is for dedup, not security.
func DeviceAssetID(path string) string {
	h := fnv.New64a()
	h.Write([]byte(path))
	return fmt.Sprintf("%s-%d", DeviceID, h.Sum64())
}

// Identity derives the upload metadata for a media file.
//
// Creation time is best effort: EXIF capture date when an exiftool reader is
// supplied, then the filesystem's creation time where one exists, then the
// modification time, then now. Modification time falls back to now as well.
func (m Media) Identity(now func() time.Time, exif *Exiftool) (AssetIdentity, error) {
	if !utf8.ValidString(filepath.Base(m.Path)) {
		return AssetIdentity{}, fmt.Errorf("%s: %w", m.Path, ErrInvalidName)
	}

	fi, err := os.Stat(m.Path)
	if err != nil {
		return AssetIdentity{}, fmt.Errorf("unable to read file metadata: %w", err)
	}

	if now == nil {
		now = time.Now
	}

	modified := fi.ModTime()
	if modified.IsZero() {
		modified = now()
	}

	created := modified
	if ct, ok := creationTime(fi); ok {
		created = ct
	}
	if exif != nil {
		if ct, ok := exif.CaptureDate(m.Path, m.MimeType); ok {
			created = ct
		}
	}
	if created.IsZero() {
		created = now()
	}

	return AssetIdentity{
		DeviceAssetID: DeviceAssetID(m.Path),
		DeviceID:      DeviceID,
		CreatedAt:     created,
		ModifiedAt:    modified,
	}, nil
}
