package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hireiq/hireiq/app/storage"
	"github.com/hireiq/hireiq/config"
)

func newLocalStore(t *testing.T) (*storage.LocalStore, string) {
	t.Helper()

	dir := t.TempDir()
	store, err := storage.NewLocalStore(config.StorageConfig{
		Type:      "local",
		LocalPath: dir,
		BaseURL:   "http://localhost:8080/assets",
	})
	if err != nil {
		t.Fatalf("failed to create local store: %v", err)
	}
	return store, dir
}

func TestLocalStore_UploadAndDelete(t *testing.T) {
	store, dir := newLocalStore(t)

	url, err := store.Upload(context.Background(), strings.NewReader("image-bytes"), "avatar.png", "image/png")
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if !strings.HasPrefix(url, "http://localhost:8080/assets/profile-images/") {
		t.Fatalf("unexpected url: %s", url)
	}
	if !strings.HasSuffix(url, ".png") {
		t.Fatalf("expected extension preserved, got %s", url)
	}

	key := strings.TrimPrefix(url, "http://localhost:8080/assets/")
	path := filepath.Join(dir, filepath.FromSlash(key))
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("uploaded file not found: %v", err)
	}
	if string(data) != "image-bytes" {
		t.Fatalf("unexpected file content: %q", data)
	}

	if err := store.DeleteByURL(context.Background(), url); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected file removed")
	}
}

func TestLocalStore_UploadsDoNotCollide(t *testing.T) {
	store, _ := newLocalStore(t)

	first, err := store.Upload(context.Background(), strings.NewReader("a"), "same.png", "image/png")
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	second, err := store.Upload(context.Background(), strings.NewReader("b"), "same.png", "image/png")
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if first == second {
		t.Fatal("two uploads of the same filename must get distinct URLs")
	}
}

func TestLocalStore_DeleteForeignURL(t *testing.T) {
	store, _ := newLocalStore(t)

	if err := store.DeleteByURL(context.Background(), "https://elsewhere.example/x.png"); err == nil {
		t.Fatal("expected error for a URL outside the store")
	}
}

func TestNew_UnknownType(t *testing.T) {
	if _, err := storage.New(config.StorageConfig{Type: "ftp"}); err == nil {
		t.Fatal("expected error for unsupported storage type")
	}
}
