// Package mockserver implements just enough of the Immich REST surface to
// exercise the uploader against: the ping endpoint and multipart asset
// uploads with duplicate detection. It backs cmd/goimmich-mock and the
// end-to-end tests.
package mockserver

import (
	"crypto/sha256"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Server struct {
	store   *Store
	apiKey  string
	saveDir string
}

// New builds a mock server. Requests must carry apiKey in the x-api-key
// header. Uploaded bytes are written under saveDir.
func New(store *Store, apiKey, saveDir string) *Server {
	return &Server{store: store, apiKey: apiKey, saveDir: saveDir}
}

func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/api/server/ping", s.ping)
	router.POST("/api/assets", s.uploadAsset)
	return router
}

func (s *Server) ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"res": "pong"})
}

func (s *Server) uploadAsset(c *gin.Context) {
	if c.GetHeader("x-api-key") != s.apiKey {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid API key"})
		return
	}

	file, err := c.FormFile("assetData")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("missing assetData: %s", err.Error())})
		return
	}
	deviceAssetID := c.PostForm("deviceAssetId")
	deviceID := c.PostForm("deviceId")
	if deviceAssetID == "" || deviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "deviceAssetId and deviceId are required"})
		return
	}

	checksum, err := formFileChecksum(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	// Same path on the same device, or same bytes from anywhere: duplicate.
	if id, ok := s.store.Lookup(deviceAssetID, checksum); ok {
		c.JSON(http.StatusConflict, gin.H{
			"message":   "Asset already exists",
			"id":        id,
			"duplicate": true,
		})
		return
	}

	id := uuid.New().String()
	dest := filepath.Join(s.saveDir, id+filepath.Ext(file.Filename))

	// Save through a temp name so an interrupted upload never leaves a
	// half-written file at the final path.
	tmp := dest + ".upload"
	if err := c.SaveUploadedFile(file, tmp); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": fmt.Sprintf("unable to save file: %s", err.Error())})
		return
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		c.JSON(http.StatusInternalServerError, gin.H{"message": fmt.Sprintf("unable to save file: %s", err.Error())})
		return
	}

	asset := Asset{
		ID:             id,
		DeviceAssetID:  deviceAssetID,
		DeviceID:       deviceID,
		Checksum:       checksum,
		Filename:       file.Filename,
		Size:           file.Size,
		FileCreatedAt:  c.PostForm("fileCreatedAt"),
		FileModifiedAt: c.PostForm("fileModifiedAt"),
		UploadedAt:     time.Now().UTC(),
	}
	if err := s.store.Add(asset); err != nil {
		os.Remove(dest)
		c.JSON(http.StatusInternalServerError, gin.H{"message": fmt.Sprintf("unable to record asset: %s", err.Error())})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id, "status": "created"})
}

func formFileChecksum(file *multipart.FileHeader) (string, error) {
	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
