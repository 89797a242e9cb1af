package uploadengine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// UploadStatus is the terminal classification of one upload attempt.
type UploadStatus int

const (
	StatusUploaded UploadStatus = iota
	StatusAlreadyExists
	StatusFailed
)

func (s UploadStatus) String() string {
	switch s {
	case StatusUploaded:
		return "uploaded"
	case StatusAlreadyExists:
		return "already exists"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DefaultDuplicateMarker is the substring Immich error bodies contain when an
// asset was uploaded before. It is server-specific phrasing, hence a Client
// field and not a hard rule; set Client.DuplicateMarker to "" to rely on
// HTTP 409 alone.
const DefaultDuplicateMarker = "already exists"

// maxErrorBody caps how much of an error response we keep for reporting.
const maxErrorBody = 2048

// Client talks to one Immich-compatible server. It is safe for concurrent
// use; the underlying http.Client pools connections across uploads.
type Client struct {
	Server          string
	APIKey          string
	DuplicateMarker string

	http *http.Client
}

// NewClient builds a client for a server URL, trimming any trailing slash.
func NewClient(server, apiKey string) *Client {
	return &Client{
		Server:          strings.TrimRight(server, "/"),
		APIKey:          apiKey,
		DuplicateMarker: DefaultDuplicateMarker,
		http:            &http.Client{Timeout: 10 * time.Minute},
	}
}

// Ping verifies connectivity before a batch. The server must answer 2xx with
// a body containing "pong".
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Server+"/api/server/ping", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("unable to reach server: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server ping failed: %s", resp.Status)
	}
	if !strings.Contains(string(body), "pong") {
		return fmt.Errorf("unexpected response from ping: %s", strings.TrimSpace(string(body)))
	}
	return nil
}

// Upload performs exactly one multipart POST for a single file and classifies
// the result. It never retries; a failed attempt is reported, not re-driven.
func (c *Client) Upload(ctx context.Context, media Media, identity AssetIdentity) (UploadStatus, error) {
	f, err := os.Open(media.Path)
	if err != nil {
		return StatusFailed, fmt.Errorf("unable to open file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := createFilePart(writer, filepath.Base(media.Path), media.MimeType)
	if err != nil {
		return StatusFailed, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return StatusFailed, fmt.Errorf("unable to read file: %w", err)
	}

	fields := map[string]string{
		"deviceAssetId":  identity.DeviceAssetID,
		"deviceId":       identity.DeviceID,
		"fileCreatedAt":  identity.CreatedAt.Format(time.RFC3339),
		"fileModifiedAt": identity.ModifiedAt.Format(time.RFC3339),
		"isFavorite":     "false",
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return StatusFailed, err
		}
	}
	if err := writer.Close(); err != nil {
		return StatusFailed, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Server+"/api/assets", &body)
	if err != nil {
		return StatusFailed, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", c.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return StatusFailed, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return StatusUploaded, nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode == http.StatusConflict {
		return StatusAlreadyExists, nil
	}
	if c.DuplicateMarker != "" && strings.Contains(string(respBody), c.DuplicateMarker) {
		return StatusAlreadyExists, nil
	}
	return StatusFailed, fmt.Errorf("server returned %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// createFilePart is CreateFormFile with a real content type instead of the
// application/octet-stream the stdlib hardcodes.
func createFilePart(writer *multipart.Writer, filename, mimeType string) (io.Writer, error) {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="assetData"; filename="%s"`, quoteEscaper.Replace(filename)))
	h.Set("Content-Type", mimeType)
	return writer.CreatePart(h)
}
