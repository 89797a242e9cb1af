package uploadengine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var ErrNotADirectory = errors.New("not a directory")

// ScanMedia walks root and returns every regular file that classifies as an
// image or a video. With recursive unset, only root's direct children are
// considered. Entries that cannot be read (permission errors, broken
// symlinks) are skipped; only a bad root is fatal.
func ScanMedia(root string, recursive bool) ([]Media, error) {
	root = filepath.Clean(root)

	fi, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("unable to scan %s: %w", root, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, ErrNotADirectory)
	}

	if !recursive {
		return scanFlat(root)
	}
	return scanTree(root)
}

func scanFlat(root string) ([]Media, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("unable to scan %s: %w", root, err)
	}

	files := make([]Media, 0, len(entries))
	for _, entry := range entries {
		// Symlinks and special files are excluded along with directories.
		if !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(root, entry.Name())
		if !IsMedia(path) {
			continue
		}
		m, err := NewMedia(path)
		if err != nil {
			continue
		}
		files = append(files, m)
	}
	return files, nil
}

func scanTree(root string) ([]Media, error) {
	files := make([]Media, 0, 128)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// An unreadable root is fatal, same as in flat mode. Anything
			// deeper is skipped and the walk keeps going.
			if filepath.Clean(path) == root {
				return fmt.Errorf("unable to scan %s: %w", root, walkErr)
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !IsMedia(path) {
			return nil
		}
		m, err := NewMedia(path)
		if err != nil {
			return nil
		}
		files = append(files, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
