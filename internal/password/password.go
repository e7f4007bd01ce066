// Package password checks new account passwords.
package password

import (
	"errors"
	"strings"
	"unicode"

	passwordvalidator "github.com/wagslane/go-password-validator"
)

const (
	minLength       = 8
	maxLength       = 150
	minEntropyBits  = 60
	minAttributeLen = 3
)

var (
	ErrTooShort   = errors.New("password must be at least 8 characters long")
	ErrTooLong    = errors.New("password must be at most 150 characters long")
	ErrNumeric    = errors.New("password can't be entirely numeric")
	ErrCommon     = errors.New("password is too common")
	ErrTooSimilar = errors.New("password is too similar to the username or email")
	ErrTooWeak    = errors.New("password is too weak")
)

var common = map[string]struct{}{
	"password":   {},
	"password1":  {},
	"qwerty123":  {},
	"12345678":   {},
	"iloveyou":   {},
	"admin123":   {},
	"welcome1":   {},
	"foodgram":   {},
	"letmein123": {},
}

// Validate reports why password is unacceptable for an account, or nil.
// attrs are the account's own values (username, email) that the password
// must not contain.
func Validate(password string, attrs ...string) error {
	if len(password) < minLength {
		return ErrTooShort
	}
	if len(password) > maxLength {
		return ErrTooLong
	}
	if isNumeric(password) {
		return ErrNumeric
	}

	lower := strings.ToLower(password)
	if _, ok := common[lower]; ok {
		return ErrCommon
	}
	for _, attr := range attrs {
		if similar(lower, attr) {
			return ErrTooSimilar
		}
	}

	if err := passwordvalidator.Validate(password, minEntropyBits); err != nil {
		return errors.Join(ErrTooWeak, err)
	}
	return nil
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// similar matches an attribute, or the local part of an email, appearing
// inside the password.
func similar(lowerPassword, attr string) bool {
	attr = strings.ToLower(strings.TrimSpace(attr))
	if local, _, ok := strings.Cut(attr, "@"); ok {
		attr = local
	}
	if len(attr) < minAttributeLen {
		return false
	}
	return strings.Contains(lowerPassword, attr)
}
