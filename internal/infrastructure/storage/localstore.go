// Package storage keeps uploaded files on the local filesystem.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const tmpDir = ".tmp"

// LocalStore implements upload.BlobStore. Files are written through a temp
// file and renamed into place, so readers never see partial content.
type LocalStore struct {
	root      string
	publicURL string
}

func NewLocalStore(root, publicURL string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(root, tmpDir), 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &LocalStore{
		root:      root,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Root is the directory files are served from.
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader) (int64, error) {
	finalPath, err := s.pathFor(key)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	tmpFile, err := os.CreateTemp(filepath.Join(s.root, tmpDir), "upload-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return 0, fmt.Errorf("writing %s: %w", key, err)
	}
	if err := tmpFile.Close(); err != nil {
		return 0, fmt.Errorf("closing temp file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return 0, fmt.Errorf("creating folder for %s: %w", key, err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return 0, fmt.Errorf("renaming upload to %s: %w", key, err)
	}

	success = true
	return n, nil
}

func (s *LocalStore) URL(key string) string {
	return s.publicURL + "/" + key
}

// pathFor maps key onto the filesystem, refusing keys that would escape the
// root or land in the temp directory.
func (s *LocalStore) pathFor(key string) (string, error) {
	clean := path.Clean(key)
	if key == "" || clean != key || path.IsAbs(clean) || clean == "." ||
		strings.HasPrefix(clean, "../") || clean == ".." ||
		clean == tmpDir || strings.HasPrefix(clean, tmpDir+"/") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}
