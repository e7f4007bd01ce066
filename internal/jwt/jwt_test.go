package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/matt-dz/foodgram/internal/role"
)

var testSecret = []byte("test-secret-that-is-at-least-32-bytes-long")

func TestGenerateAndValidate(t *testing.T) {
	raw, err := GenerateJWT(JWTParams{Role: role.RoleAdmin, UserID: 42}, testSecret, DefaultKID)
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}

	claims, err := ValidateJWT(raw, DefaultKID, testSecret)
	if err != nil {
		t.Fatalf("ValidateJWT() error = %v", err)
	}

	id, err := claims.UserID()
	if err != nil || id != 42 {
		t.Errorf("UserID() = %d, %v; want 42", id, err)
	}
	if claims.UserRole() != role.RoleAdmin {
		t.Errorf("UserRole() = %v, want %v", claims.UserRole(), role.RoleAdmin)
	}
	if claims.ID == "" {
		t.Error("expected a token id")
	}
}

func TestGenerate_UniqueIDs(t *testing.T) {
	a, _ := GenerateJWT(JWTParams{Role: role.RoleUser, UserID: 1}, testSecret, DefaultKID)
	b, _ := GenerateJWT(JWTParams{Role: role.RoleUser, UserID: 1}, testSecret, DefaultKID)
	ca, err := ValidateJWT(a, DefaultKID, testSecret)
	if err != nil {
		t.Fatal(err)
	}
	cb, err := ValidateJWT(b, DefaultKID, testSecret)
	if err != nil {
		t.Fatal(err)
	}
	if ca.ID == cb.ID {
		t.Errorf("expected distinct token ids, got %q twice", ca.ID)
	}
}

func TestValidateJWT_Rejects(t *testing.T) {
	valid, err := GenerateJWT(JWTParams{Role: role.RoleUser, UserID: 1}, testSecret, DefaultKID)
	if err != nil {
		t.Fatal(err)
	}
	expired, err := generate(JWTParams{Role: role.RoleUser, UserID: 1}, testSecret, DefaultKID,
		time.Now().Add(-2*JWTDuration))
	if err != nil {
		t.Fatal(err)
	}

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	hs512.Header["kid"] = DefaultKID
	wrongAlg, err := hs512.SignedString(testSecret)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		token   string
		version string
		secret  []byte
		wantErr error
	}{
		{name: "wrong version", token: valid, version: "2", secret: testSecret},
		{name: "wrong secret", token: valid, version: DefaultKID, secret: []byte("another-secret-another-secret-xx")},
		{name: "expired", token: expired, version: DefaultKID, secret: testSecret, wantErr: jwt.ErrTokenExpired},
		{name: "wrong algorithm", token: wrongAlg, version: DefaultKID, secret: testSecret},
		{name: "garbage", token: "not-a-token", version: DefaultKID, secret: testSecret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateJWT(tt.token, tt.version, tt.secret)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestClaims_UserID_Invalid(t *testing.T) {
	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "abc"}}
	if _, err := c.UserID(); !errors.Is(err, ErrInvalidSubject) {
		t.Errorf("UserID() error = %v, want ErrInvalidSubject", err)
	}
}
