// Package fileserver stores media files on a local volume and serves them.
package fileserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const (
	directoryPerms = 0o755
)

var (
	ErrInvalidPath = errors.New("invalid path")
	ErrNotExist    = errors.New("file does not exist")
)

// topLevelDirectories are the only directories files may be written to or
// deleted from.
var topLevelDirectories = []string{"recipes", "avatars"}

type FileServer struct {
	baseDir string
}

func New(baseDir string) *FileServer {
	return &FileServer{
		baseDir: baseDir,
	}
}

func (f *FileServer) BaseDirectory() string {
	return f.baseDir
}

// Write stores data at path relative to the base directory.
func (f *FileServer) Write(_ context.Context, path string, data []byte, _ string) (n int, err error) {
	if f == nil {
		return 0, nil
	}

	fullpath, err := f.resolve(path)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(fullpath), directoryPerms); err != nil {
		return 0, fmt.Errorf("creating parent directories: %w", err)
	}

	file, err := os.Create(fullpath)
	if err != nil {
		return 0, fmt.Errorf("creating file: %w", err)
	}
	defer func() { _ = file.Close() }()

	n, err = file.Write(data)
	if err != nil {
		return n, fmt.Errorf("writing file: %w", err)
	}

	return n, nil
}

// Delete removes the file at path and prunes the directories left empty
// below its top-level directory.
func (f *FileServer) Delete(_ context.Context, path string) error {
	if f == nil {
		return nil
	}

	fullpath, err := f.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(fullpath); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %q", ErrNotExist, path)
	} else if err != nil {
		return fmt.Errorf("removing file: %w", err)
	}

	absBase, err := filepath.Abs(f.baseDir)
	if err != nil {
		return fmt.Errorf("resolving base directory: %w", err)
	}
	topDir := filepath.Join(absBase, topLevelDirectory(path))
	for dir := filepath.Dir(fullpath); dir != topDir && strings.HasPrefix(dir, topDir); dir = filepath.Dir(dir) {
		empty, err := isEmptyDirectory(dir)
		if err != nil || !empty {
			break
		}
		if err := os.Remove(dir); err != nil {
			break
		}
	}

	return nil
}

// Handler serves the volume under urlPrefix.
func (f *FileServer) Handler(urlPrefix string) http.Handler {
	return http.StripPrefix(strings.TrimRight(urlPrefix, "/"), http.FileServer(http.Dir(f.baseDir)))
}

func (f *FileServer) resolve(path string) (string, error) {
	fullpath, err := cleanPath(f.baseDir, path)
	if err != nil {
		return "", err
	}
	if !slices.Contains(topLevelDirectories, topLevelDirectory(path)) {
		return "", fmt.Errorf("%w: %q is outside the media directories", ErrInvalidPath, path)
	}
	return fullpath, nil
}

// cleanPath joins path onto baseDir and rejects results that escape it.
func cleanPath(baseDir, path string) (string, error) {
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("resolving base directory: %w", err)
	}
	if filepath.IsAbs(path) {
		return "", fmt.Errorf("%w: absolute path %q", ErrInvalidPath, path)
	}

	joined := filepath.Join(absBase, path)
	rel, err := filepath.Rel(absBase, joined)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes base directory", ErrInvalidPath, path)
	}
	return joined, nil
}

func topLevelDirectory(path string) string {
	sep := string(filepath.Separator)
	cleaned := strings.TrimPrefix(filepath.Clean(path), sep)
	return strings.SplitN(cleaned, sep, 2)[0]
}

func isEmptyDirectory(path string) (bool, error) {
	dir, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer func() { _ = dir.Close() }()

	if _, err := dir.Readdirnames(1); errors.Is(err, io.EOF) {
		return true, nil
	} else if err != nil {
		return false, err
	}
	return false, nil
}
