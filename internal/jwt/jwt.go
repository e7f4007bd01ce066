// Package jwt provides functions for generating and validating JWTs
package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	"github.com/matt-dz/foodgram/internal/role"
)

type JWTParams struct {
	Role   role.Role
	UserID int64
}

const (
	JWTDuration = 24 * time.Hour
	DefaultKID  = "1"
)

var ErrInvalidSubject = errors.New("invalid subject claim")

// Claims carries the user id in the subject and a unique token id used
// for revocation.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSubject, c.Subject)
	}
	return id, nil
}

func (c *Claims) UserRole() role.Role {
	return role.ToRole(c.Role)
}

func GenerateJWT(params JWTParams, secret []byte, version string) (string, error) {
	return generate(params, secret, version, time.Now())
}

func generate(params JWTParams, secret []byte, version string, now time.Time) (string, error) {
	claims := Claims{
		Role: params.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(params.UserID, 10),
			ID:        ulid.Make().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(JWTDuration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = version

	signedKey, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signedKey, nil
}

func ValidateJWT(rawToken, version string, secret []byte) (*Claims, error) {
	parserFunc := func(token *jwt.Token) (any, error) {
		kidVal, ok := token.Header["kid"].(string)
		if !ok {
			return nil, fmt.Errorf("missing/invalid kid value")
		}

		if kidVal != version {
			return nil, fmt.Errorf("verifying KID value, value=%q", kidVal)
		}

		return secret, nil
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(rawToken, claims, parserFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	return claims, nil
}
