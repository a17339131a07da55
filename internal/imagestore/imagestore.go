// Package imagestore keeps the original captured images on disk so a note's
// source photo can be reviewed after OCR.
package imagestore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type Store struct {
	dir string
}

// New creates the upload directory if needed and returns a store rooted there.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the root directory, for serving files over HTTP.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the image under a fresh uuid name and returns the filename.
func (s *Store) Save(data []byte, contentType string) (string, error) {
	name := uuid.NewString() + extensionFor(contentType)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o600); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return name, nil
}

// Path resolves a stored filename to its on-disk path. The name is reduced
// to its base component so request input cannot escape the upload dir.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

// Remove deletes a stored image. Missing files are not an error; the image
// may already be gone after a restore.
func (s *Store) Remove(name string) error {
	err := os.Remove(s.Path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

func extensionFor(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
