package uploadengine

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMedia(t *testing.T, name, content string) Media {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	media, err := NewMedia(path)
	require.NoError(t, err)
	return media
}

func testIdentity(media Media) AssetIdentity {
	return AssetIdentity{
		DeviceAssetID: DeviceAssetID(media.Path),
		DeviceID:      DeviceID,
		CreatedAt:     time.Date(2023, 6, 15, 10, 30, 0, 0, time.UTC),
		ModifiedAt:    time.Date(2023, 6, 16, 11, 0, 0, 0, time.UTC),
	}
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/server/ping", r.URL.Path)
		w.Write([]byte(`{"res":"pong"}`))
	}))
	defer server.Close()

	assert.NoError(t, NewClient(server.URL, "key").Ping(context.Background()))
}

func TestPingServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	assert.Error(t, NewClient(server.URL, "key").Ping(context.Background()))
}

func TestPingUnexpectedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	err := NewClient(server.URL, "key").Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected response")
}

func TestUploadSuccess(t *testing.T) {
	media := testMedia(t, "photo.jpg", "jpeg bytes")
	identity := testIdentity(media)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/assets", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, identity.DeviceAssetID, r.FormValue("deviceAssetId"))
		assert.Equal(t, DeviceID, r.FormValue("deviceId"))
		assert.Equal(t, "2023-06-15T10:30:00Z", r.FormValue("fileCreatedAt"))
		assert.Equal(t, "2023-06-16T11:00:00Z", r.FormValue("fileModifiedAt"))
		assert.Equal(t, "false", r.FormValue("isFavorite"))

		file, header, err := r.FormFile("assetData")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "photo.jpg", header.Filename)
		assert.Equal(t, "image/jpeg", header.Header.Get("Content-Type"))
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "jpeg bytes", string(content))

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"1","status":"created"}`))
	}))
	defer server.Close()

	status, err := NewClient(server.URL, "secret").Upload(context.Background(), media, identity)
	require.NoError(t, err)
	assert.Equal(t, StatusUploaded, status)
}

func TestUploadConflict(t *testing.T) {
	media := testMedia(t, "photo.jpg", "jpeg bytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"duplicate"}`))
	}))
	defer server.Close()

	status, err := NewClient(server.URL, "key").Upload(context.Background(), media, testIdentity(media))
	require.NoError(t, err)
	assert.Equal(t, StatusAlreadyExists, status)
}

func TestUploadDuplicateBodyMarker(t *testing.T) {
	media := testMedia(t, "photo.jpg", "jpeg bytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Asset already exists on this server"}`))
	}))
	defer server.Close()

	status, err := NewClient(server.URL, "key").Upload(context.Background(), media, testIdentity(media))
	require.NoError(t, err)
	assert.Equal(t, StatusAlreadyExists, status)
}

func TestUploadDuplicateMarkerDisabled(t *testing.T) {
	media := testMedia(t, "photo.jpg", "jpeg bytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Asset already exists on this server"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "key")
	client.DuplicateMarker = ""
	status, err := client.Upload(context.Background(), media, testIdentity(media))
	require.Error(t, err)
	assert.Equal(t, StatusFailed, status)
}

func TestUploadServerError(t *testing.T) {
	media := testMedia(t, "photo.jpg", "jpeg bytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer server.Close()

	status, err := NewClient(server.URL, "key").Upload(context.Background(), media, testIdentity(media))
	require.Error(t, err)
	assert.Equal(t, StatusFailed, status)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "boom")
}

func TestUploadTransportError(t *testing.T) {
	media := testMedia(t, "photo.jpg", "jpeg bytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	status, err := NewClient(server.URL, "key").Upload(context.Background(), media, testIdentity(media))
	require.Error(t, err)
	assert.Equal(t, StatusFailed, status)
}

func TestUploadMissingFile(t *testing.T) {
	media := Media{Path: filepath.Join(t.TempDir(), "gone.jpg"), MimeType: "image/jpeg"}

	status, err := NewClient("http://localhost:1", "key").Upload(context.Background(), media, AssetIdentity{})
	require.Error(t, err)
	assert.Equal(t, StatusFailed, status)
}
