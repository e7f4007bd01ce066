// Package filestore names, writes and deletes media keys on top of a
// storage backend: the local fileserver or an S3 bucket.
package filestore

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	recipesDir = "recipes"
	avatarsDir = "avatars"
	keyIDBytes = 16
)

// KeyPrefix is the key prefix of media served from the local volume.
const KeyPrefix = "/media"

// Backend persists objects by path.
type Backend interface {
	Write(ctx context.Context, path string, data []byte, contentType string) (n int, err error)
	Delete(ctx context.Context, path string) error
}

type Store interface {
	WriteRecipeImage(ctx context.Context, suffix, contentType string, data []byte) (key string, n int, err error)
	WriteAvatar(ctx context.Context, suffix, contentType string, data []byte) (key string, n int, err error)
	DeleteKey(ctx context.Context, key string) error
	FileURL(key string) string
}

type FileStore struct {
	keyPrefix string
	host      string
	fs        Backend
}

var _ Store = FileStore{}

// New creates a FileStore. Keys are prefixed with keyPrefix and public URLs
// are built from host.
func New(backend Backend, keyPrefix, host string) FileStore {
	return FileStore{
		keyPrefix: keyPrefix,
		host:      strings.TrimRight(host, "/"),
		fs:        backend,
	}
}

func (f FileStore) WriteRecipeImage(ctx context.Context, suffix, contentType string, data []byte) (string, int, error) {
	return f.write(ctx, recipesDir, suffix, contentType, data)
}

func (f FileStore) WriteAvatar(ctx context.Context, suffix, contentType string, data []byte) (string, int, error) {
	return f.write(ctx, avatarsDir, suffix, contentType, data)
}

func (f FileStore) write(ctx context.Context, dir, suffix, contentType string, data []byte) (string, int, error) {
	id, err := generateKeyID()
	if err != nil {
		return "", 0, err
	}
	key := mediaKey(f.keyPrefix, dir, id, suffix)
	n, err := f.fs.Write(ctx, extractKeyPrefix(key, f.keyPrefix), data, contentType)
	if err != nil {
		return "", n, fmt.Errorf("writing %s: %w", dir, err)
	}
	return key, n, nil
}

// FileURL is the public URL of key. Empty keys yield an empty URL.
func (f FileStore) FileURL(key string) string {
	if key == "" {
		return ""
	}
	return f.host + "/" + strings.TrimLeft(key, "/")
}

func (f FileStore) DeleteKey(ctx context.Context, key string) error {
	return f.fs.Delete(ctx, extractKeyPrefix(key, f.keyPrefix))
}

func generateKeyID() (string, error) {
	b := make([]byte, keyIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating key id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func mediaKey(prefix, dir, id, suffix string) string {
	return filepath.Join(prefix, dir, id+suffix)
}

func extractKeyPrefix(key string, prefix string) string {
	key = strings.Trim(key, "/")
	keyPrefix := strings.Trim(prefix, "/")
	key = strings.TrimPrefix(key, keyPrefix)
	return strings.TrimLeft(key, "/")
}
