package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hireiq/hireiq/config"
)

// LocalStore keeps assets on the local filesystem. It is the default for
// development where no object storage is available.
type LocalStore struct {
	basePath string
	baseURL  string
}

func NewLocalStore(cfg config.StorageConfig) (*LocalStore, error) {
	if cfg.LocalPath == "" {
		return nil, fmt.Errorf("local path is required for local storage")
	}
	if err := os.MkdirAll(cfg.LocalPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{
		basePath: cfg.LocalPath,
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
	}, nil
}

func (s *LocalStore) Upload(ctx context.Context, reader io.Reader, filename, contentType string) (string, error) {
	key := objectKey(filename)

	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, reader); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return fmt.Sprintf("%s/%s", s.baseURL, key), nil
}

func (s *LocalStore) DeleteByURL(ctx context.Context, url string) error {
	key := keyFromURL(s.baseURL, url)
	if key == "" {
		return fmt.Errorf("url %q does not belong to this store", url)
	}

	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
