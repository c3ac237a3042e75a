package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// AssetStore keeps uploaded images. DeleteByPath is best effort for callers.
type AssetStore interface {
	Save(ctx context.Context, r io.Reader, ext string) (string, error)
	DeleteByPath(ctx context.Context, path string) error
}

// DiskAssetStore writes images to a local directory under random names.
type DiskAssetStore struct {
	dir string
}

func NewDiskAssetStore(dir string) (*DiskAssetStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskAssetStore{dir: filepath.Clean(dir)}, nil
}

// Save returns the slash-separated path of the stored file, e.g.
// "uploads/images/<uuid>.png".
func (d *DiskAssetStore) Save(ctx context.Context, r io.Reader, ext string) (string, error) {
	path := filepath.Join(d.dir, uuid.NewString()+"."+strings.TrimPrefix(ext, "."))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return filepath.ToSlash(path), nil
}

// DeleteByPath removes a previously saved file. Paths outside the upload
// directory are refused; a missing file is not an error.
func (d *DiskAssetStore) DeleteByPath(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	clean := filepath.Clean(filepath.FromSlash(path))
	rel, err := filepath.Rel(d.dir, clean)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("asset path %q outside upload dir", path)
	}
	if err := os.Remove(clean); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
