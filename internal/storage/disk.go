package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps uploads on the local filesystem and serves them under a
// configured base URL. Keys are flat names; path separators are rejected so
// a key can never escape the directory.
type DiskStore struct {
	dir     string
	baseURL string
}

// NewDiskStore creates the upload directory if needed.
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *DiskStore) Upload(ctx context.Context, key string, r io.Reader) (string, error) {
	if strings.ContainsAny(key, "/\\") || key == "" {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	f, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return "", fmt.Errorf("create object file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write object: %w", err)
	}
	return s.PublicURL(key), nil
}

func (s *DiskStore) PublicURL(key string) string {
	return s.baseURL + "/" + key
}
