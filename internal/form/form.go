// Package form reads uploaded images, either raw or as base64 data URIs.
package form

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	magicNumberSeek = 512
	MaxImageBytes   = 10 << 20
)

// allowedImageTypes lists the simple MIME types we accept.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

var mimeTypeSuffix = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

var (
	ErrUnsupportedMimeType = errors.New("unsupported mime type")
	ErrNoImageUploaded     = errors.New("image not uploaded")
	ErrInvalidDataURI      = errors.New("invalid data uri")
	ErrImageTooLarge       = errors.New("image too large")
)

type File struct {
	Size     int64
	Data     []byte
	Suffix   string
	MimeType string
}

func ReadFile(file io.ReadCloser) (*File, error) {
	defer func() { _ = file.Close() }()
	data, err := io.ReadAll(io.LimitReader(file, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return ReadImage(data)
}

// ReadImage sniffs the content type of data and accepts it when it is a
// supported image.
func ReadImage(data []byte) (*File, error) {
	if len(data) == 0 {
		return nil, ErrNoImageUploaded
	}
	if len(data) > MaxImageBytes {
		return nil, ErrImageTooLarge
	}

	contentType := http.DetectContentType(data[:min(len(data), magicNumberSeek)])
	if !allowedImageTypes[contentType] {
		return nil, fmt.Errorf("mime type %q: %w", contentType, ErrUnsupportedMimeType)
	}

	return &File{
		Size:     int64(len(data)),
		MimeType: contentType,
		Suffix:   mimeTypeSuffix[contentType],
		Data:     data,
	}, nil
}

// DecodeDataURI decodes "data:image/png;base64,<payload>". The declared
// media type is ignored in favor of the sniffed one.
func DecodeDataURI(uri string) (*File, error) {
	if uri == "" {
		return nil, ErrNoImageUploaded
	}
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, fmt.Errorf("%w: missing data scheme", ErrInvalidDataURI)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("%w: expected base64 payload", ErrInvalidDataURI)
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes+2 {
		return nil, ErrImageTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return ReadImage(data)
}
