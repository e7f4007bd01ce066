// Package token contains utilities for access tokens.
package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/matt-dz/foodgram/internal/env"
	"github.com/matt-dz/foodgram/internal/jwt"
)

const (
	AuthorizationHeader = "Authorization"
	revokedPrefix       = "revoked:"
)

var (
	ErrMissingToken     = errors.New("missing access token")
	ErrMalformedHeader  = errors.New("malformed authorization header")
	ErrMissingAppSecret = errors.New("app secret not configured")
)

type userIDKeyType struct{}
type claimsKeyType struct{}

var (
	userIDKey userIDKeyType
	claimsKey claimsKeyType
)

func AccessTokenName(env *env.Env) string {
	if env.Config.IsProd() {
		return "__Host-Http-access"
	}
	return "access"
}

func secret(env *env.Env) ([]byte, string, error) {
	if env.Config.AppSecret.Value == nil || *env.Config.AppSecret.Value == "" {
		return nil, "", ErrMissingAppSecret
	}
	version := env.Config.AppSecret.Version
	if version == "" {
		version = jwt.DefaultKID
	}
	return []byte(*env.Config.AppSecret.Value), version, nil
}

func NewAccessToken(params jwt.JWTParams, env *env.Env) (string, error) {
	key, version, err := secret(env)
	if err != nil {
		return "", err
	}
	token, err := jwt.GenerateJWT(params, key, version)
	if err != nil {
		return "", fmt.Errorf("generating access token: %w", err)
	}
	return token, nil
}

func ValidateAccessToken(raw string, env *env.Env) (*jwt.Claims, error) {
	key, version, err := secret(env)
	if err != nil {
		return nil, err
	}
	return jwt.ValidateJWT(raw, version, key)
}

func NewAccessTokenCookie(token string, env *env.Env) *http.Cookie {
	return &http.Cookie{
		Name:     AccessTokenName(env),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(jwt.JWTDuration.Seconds()),
		SameSite: http.SameSiteLaxMode,
		Secure:   env.Config.IsProd(),
	}
}

func ExpiredAccessTokenCookie(env *env.Env) *http.Cookie {
	cookie := NewAccessTokenCookie("", env)
	cookie.MaxAge = -1
	return cookie
}

// FromRequest reads the access token from an "Authorization: Token" or
// "Authorization: Bearer" header, falling back to the access cookie.
func FromRequest(r *http.Request, env *env.Env) (string, error) {
	if header := r.Header.Get(AuthorizationHeader); header != "" {
		scheme, value, ok := strings.Cut(header, " ")
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			return "", ErrMalformedHeader
		}
		switch strings.ToLower(scheme) {
		case "token", "bearer":
			return value, nil
		default:
			return "", ErrMalformedHeader
		}
	}

	cookie, err := r.Cookie(AccessTokenName(env))
	if err != nil || cookie.Value == "" {
		return "", ErrMissingToken
	}
	return cookie.Value, nil
}

// Revoke blacklists the token id until the token would have expired.
func Revoke(ctx context.Context, env *env.Env, claims *jwt.Claims) error {
	if env.Cache == nil || claims.ID == "" {
		return nil
	}
	ttl := jwt.JWTDuration
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	if err := env.Cache.Set(ctx, revokedPrefix+claims.ID, "1", ttl); err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	return nil
}

func IsRevoked(ctx context.Context, env *env.Env, claims *jwt.Claims) (bool, error) {
	if env.Cache == nil || claims.ID == "" {
		return false, nil
	}
	_, found, err := env.Cache.Get(ctx, revokedPrefix+claims.ID)
	if err != nil {
		return false, fmt.Errorf("checking revocation: %w", err)
	}
	return found, nil
}

func UserIDWithCtx(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromCtx returns the authenticated user id, if any.
func UserIDFromCtx(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

func ClaimsWithCtx(ctx context.Context, claims *jwt.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func ClaimsFromCtx(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*jwt.Claims)
	return claims, ok && claims != nil
}
