package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hireiq/hireiq/app/service"
	"github.com/hireiq/hireiq/config"

	"github.com/google/uuid"
)

// New builds the asset store selected by configuration.
func New(cfg config.StorageConfig) (service.AssetStore, error) {
	switch cfg.Type {
	case "local":
		return NewLocalStore(cfg)
	case "s3":
		return NewS3Store(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// objectKey derives a collision-free key for an uploaded file, keeping the
// original extension so served files carry a usable content type.
func objectKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("profile-images/%s%s", uuid.NewString(), ext)
}

// keyFromURL recovers the object key from a public URL previously returned
// by Upload. An empty result means the URL was not produced by this store.
func keyFromURL(baseURL, url string) string {
	prefix := strings.TrimSuffix(baseURL, "/") + "/"
	if !strings.HasPrefix(url, prefix) {
		return ""
	}
	return strings.TrimPrefix(url, prefix)
}
