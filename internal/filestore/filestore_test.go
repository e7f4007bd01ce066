package filestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matt-dz/foodgram/internal/fileserver"
)

func newTestFileStore(t *testing.T) (FileStore, string) {
	t.Helper()
	baseDir := t.TempDir()
	return New(fileserver.New(baseDir), KeyPrefix, "http://localhost:8080"), baseDir
}

func TestNew_HostWithTrailingSlash(t *testing.T) {
	store := New(fileserver.New(t.TempDir()), KeyPrefix, "http://localhost:8080/")

	expected := "http://localhost:8080"
	if store.host != expected {
		t.Errorf("host = %q, want %q (trailing slash should be trimmed)", store.host, expected)
	}
}

func TestWriteImages(t *testing.T) {
	tests := []struct {
		name  string
		dir   string
		write func(FileStore, []byte) (string, int, error)
	}{
		{
			name: "recipe image",
			dir:  recipesDir,
			write: func(s FileStore, data []byte) (string, int, error) {
				return s.WriteRecipeImage(context.Background(), ".jpg", "image/jpeg", data)
			},
		},
		{
			name: "avatar",
			dir:  avatarsDir,
			write: func(s FileStore, data []byte) (string, int, error) {
				return s.WriteAvatar(context.Background(), ".jpg", "image/jpeg", data)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, baseDir := newTestFileStore(t)
			data := []byte("image data")

			key, n, err := tt.write(store, data)
			if err != nil {
				t.Fatalf("write error = %v", err)
			}
			if n != len(data) {
				t.Errorf("n = %d, want %d", n, len(data))
			}

			// /media/<dir>/<random-id>.jpg
			expectedPrefix := filepath.Join(KeyPrefix, tt.dir)
			if !strings.HasPrefix(key, expectedPrefix) || !strings.HasSuffix(key, ".jpg") {
				t.Errorf("key = %q, want %s/<id>.jpg", key, expectedPrefix)
			}

			content, err := os.ReadFile(filepath.Join(baseDir, extractKeyPrefix(key, store.keyPrefix)))
			if err != nil {
				t.Fatalf("failed to read written file: %v", err)
			}
			if string(content) != string(data) {
				t.Errorf("file content = %q, want %q", string(content), string(data))
			}
		})
	}
}

func TestFileURL(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		key      string
		expected string
	}{
		{
			name:     "simple key",
			host:     "http://localhost:8080",
			key:      "/media/recipes/abc123.jpg",
			expected: "http://localhost:8080/media/recipes/abc123.jpg",
		},
		{
			name:     "bucket key without prefix",
			host:     "https://s3.example.com/foodgram",
			key:      "avatars/xyz789.png",
			expected: "https://s3.example.com/foodgram/avatars/xyz789.png",
		},
		{
			name:     "empty key",
			host:     "http://localhost:8080",
			key:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := New(fileserver.New(t.TempDir()), KeyPrefix, tt.host)

			got := store.FileURL(tt.key)
			if got != tt.expected {
				t.Errorf("FileURL() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDeleteKey(t *testing.T) {
	store, baseDir := newTestFileStore(t)

	key, _, err := store.WriteRecipeImage(context.Background(), ".jpg", "image/jpeg", []byte("test data"))
	if err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	filePath := filepath.Join(baseDir, extractKeyPrefix(key, store.keyPrefix))
	if _, err := os.Stat(filePath); err != nil {
		t.Fatalf("file should exist before delete: %v", err)
	}

	if err := store.DeleteKey(context.Background(), key); err != nil {
		t.Fatalf("DeleteKey() error = %v", err)
	}

	if _, err := os.Stat(filePath); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected file to be deleted, got err = %v", err)
	}
}

func TestDeleteKey_NonExistent(t *testing.T) {
	store, _ := newTestFileStore(t)

	err := store.DeleteKey(context.Background(), "/media/recipes/nonexistent.jpg")
	if !errors.Is(err, fileserver.ErrNotExist) {
		t.Errorf("DeleteKey() error = %v, want ErrNotExist", err)
	}
}

func TestMediaKey(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		dir      string
		id       string
		suffix   string
		expected string
	}{
		{
			name:     "local volume",
			prefix:   KeyPrefix,
			dir:      recipesDir,
			id:       "abc123",
			suffix:   ".jpg",
			expected: "/media/recipes/abc123.jpg",
		},
		{
			name:     "bucket",
			prefix:   "",
			dir:      avatarsDir,
			id:       "xyz789",
			suffix:   ".png",
			expected: "avatars/xyz789.png",
		},
		{
			name:     "no extension",
			prefix:   KeyPrefix,
			dir:      recipesDir,
			id:       "test",
			suffix:   "",
			expected: "/media/recipes/test",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mediaKey(tt.prefix, tt.dir, tt.id, tt.suffix)
			if got != tt.expected {
				t.Errorf("mediaKey() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestExtractKeyPrefix(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		prefix   string
		expected string
	}{
		{
			name:     "trim leading prefix",
			key:      "/media/recipes/123.jpg",
			prefix:   "/media",
			expected: "recipes/123.jpg",
		},
		{
			name:     "key without leading slash",
			key:      "media/recipes/123.jpg",
			prefix:   "/media",
			expected: "recipes/123.jpg",
		},
		{
			name:     "trailing slash in key",
			key:      "/media/recipes/123.jpg/",
			prefix:   "/media",
			expected: "recipes/123.jpg",
		},
		{
			name:     "empty prefix",
			key:      "avatars/1.png",
			prefix:   "",
			expected: "avatars/1.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractKeyPrefix(tt.key, tt.prefix)
			if got != tt.expected {
				t.Errorf("extractKeyPrefix() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestGenerateKeyID(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id, err := generateKeyID()
		if err != nil {
			t.Fatalf("generateKeyID() error = %v", err)
		}
		if seen[id] {
			t.Errorf("generateKeyID() produced duplicate ID: %q", id)
		}
		seen[id] = true

		if strings.ContainsAny(id, "+/=") {
			t.Errorf("generateKeyID() = %q, should use URL-safe base64 encoding", id)
		}
	}
}
