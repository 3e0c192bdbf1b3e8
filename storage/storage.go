// Package storage holds report images behind a narrow blob-store interface so
// nothing else in the service depends on filesystem layout.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// BlobStore stores opaque image blobs and hands back references.
type BlobStore interface {
	Store(data []byte, mimeType string) (string, error)
	Read(ref string) ([]byte, error)
}

// DiskStore keeps blobs as flat files under one base directory, named by a
// random uuid plus an extension derived from the mime type.
type DiskStore struct {
	baseDir string
}

func NewDiskStore(baseDir string) (*DiskStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s: %w", baseDir, err)
	}
	return &DiskStore{baseDir: baseDir}, nil
}

var mimeExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/avif": ".avif",
	"image/webp": ".webp",
}

func (s *DiskStore) Store(data []byte, mimeType string) (string, error) {
	ext, ok := mimeExtensions[mimeType]
	if !ok {
		ext = ".bin"
	}
	ref := uuid.NewString() + ext

	path := filepath.Join(s.baseDir, ref)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write blob %s: %w", ref, err)
	}
	return ref, nil
}

func (s *DiskStore) Read(ref string) ([]byte, error) {
	// Refs are generated server-side, but never trust one with path elements.
	if filepath.Base(ref) != ref {
		return nil, fmt.Errorf("invalid blob ref %q", ref)
	}
	data, err := os.ReadFile(filepath.Join(s.baseDir, ref))
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", ref, err)
	}
	return data, nil
}
