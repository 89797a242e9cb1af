package mockserver

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// Asset is one stored upload as the mock server knows it.
type Asset struct {
	ID             string
	DeviceAssetID  string
	DeviceID       string
	Checksum       string
	Filename       string
	Size           int64
	FileCreatedAt  string
	FileModifiedAt string
	UploadedAt     time.Time
}

// Store keeps uploaded asset records in a SQLite database so duplicate
// detection survives server restarts.
type Store struct {
	db *sql.DB
}

func OpenStore(filename string) (*Store, error) {
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return nil, err
	}

	stmt := `
	CREATE TABLE IF NOT EXISTS
		assets (
			id CHAR PRIMARY KEY,
			device_asset_id CHAR UNIQUE,
			device_id CHAR,
			checksum CHAR,
			filename CHAR,
			size INT,
			file_created_at CHAR,
			file_modified_at CHAR,
			uploaded_at TIMESTAMP
		)
	`
	if _, err := db.Exec(stmt); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Lookup returns the stored asset id for a deviceAssetId or checksum, if one
// exists. Either key identifies a prior upload of the same logical asset.
func (s *Store) Lookup(deviceAssetID, checksum string) (string, bool) {
	var id string
	err := s.db.QueryRow(
		"SELECT id FROM assets WHERE device_asset_id = ? OR checksum = ?",
		deviceAssetID, checksum,
	).Scan(&id)
	if err != nil {
		return "", false
	}
	return id, true
}

func (s *Store) Add(a Asset) error {
	stmt := `INSERT INTO assets
		(id, device_asset_id, device_id, checksum, filename, size, file_created_at, file_modified_at, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(
		stmt,
		a.ID,
		a.DeviceAssetID,
		a.DeviceID,
		a.Checksum,
		a.Filename,
		a.Size,
		a.FileCreatedAt,
		a.FileModifiedAt,
		a.UploadedAt,
	)
	return err
}

// Count returns how many assets have been stored.
func (s *Store) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT count(*) FROM assets").Scan(&count)
	return count, err
}
