package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmptyKey is returned when an object key resolves to nothing.
var ErrEmptyKey = errors.New("empty key")

// DiskStorage stores media below a local directory. It backs development
// setups where the files are served by the API process itself.
type DiskStorage struct {
	root    string
	baseURL string
}

// NewDiskStorage creates root if needed. Locations are baseURL joined with the key.
func NewDiskStorage(root, baseURL string) (*DiskStorage, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("disk storage: %w", ErrEmptyKey)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("disk storage: create root: %w", err)
	}
	return &DiskStorage{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Root is the directory files are written to.
func (d *DiskStorage) Root() string {
	return d.root
}

// Save writes r to the key's path and returns its public location.
func (d *DiskStorage) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key, err := cleanKey(name)
	if err != nil {
		return "", fmt.Errorf("disk storage: %w", err)
	}

	path := filepath.Join(d.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("disk storage: create dir for %s: %w", key, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("disk storage: create %s: %w", key, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("disk storage: write %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("disk storage: close %s: %w", key, err)
	}

	return publicLocation(d.baseURL, key), nil
}

// Delete removes the file behind location. Deleting a missing file succeeds.
func (d *DiskStorage) Delete(ctx context.Context, location string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := cleanKey(keyFromLocation(d.baseURL, location))
	if err != nil {
		return fmt.Errorf("disk storage: %w", err)
	}
	err = os.Remove(filepath.Join(d.root, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("disk storage: delete %s: %w", key, err)
	}
	return nil
}
