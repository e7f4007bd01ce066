// Package request decodes and validates request bodies, path and query
// parameters.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	mJson "github.com/matt-dz/foodgram/internal/json"
)

const maxBodyBytes = 16 << 20

var (
	ErrInvalidID    = errors.New("invalid id")
	ErrInvalidQuery = errors.New("invalid query parameter")
)

var (
	usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)
	slugRe     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugRe.MatchString(fl.Field().String())
	})
	return v
}

// Validator returns the shared validator, which also knows the "username"
// and "slug" rules.
func Validator() *validator.Validate {
	return validate
}

// DecodeJSON reads a single JSON object from the body into dst, rejecting
// unknown fields, then validates it.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	defer func() { _ = r.Body.Close() }()
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := mJson.DecodeJSON(dst, decoder); err != nil {
		return err
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("validating request: %w", err)
	}
	return nil
}

// PathID parses the positive integer path parameter key.
func PathID(r *http.Request, key string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, chi.URLParam(r, key))
	}
	return id, nil
}

// Flag reports whether the query parameter key is set to a truthy value
// ("1" or "true").
func Flag(r *http.Request, key string) bool {
	switch strings.ToLower(r.URL.Query().Get(key)) {
	case "1", "true":
		return true
	}
	return false
}

// OptionalInt parses the query parameter key. A missing parameter yields
// nil.
func OptionalInt(r *http.Request, key string) (*int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return nil, fmt.Errorf("%w: %s=%q", ErrInvalidQuery, key, raw)
	}
	return &v, nil
}
