package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "canvas-secret"

var testNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func signTestToken(t *testing.T, claims Claims, secret string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func validClaims(issuer string, expires time.Time) Claims {
	return Claims{
		UserID:    "google:42",
		UserEmail: "designer@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "42",
			IssuedAt:  jwt.NewNumericDate(testNow.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
}

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	validator, err := NewValidator(ValidatorConfig{
		SigningSecret: []byte(testSecret),
		Clock:         func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("failed to construct validator: %v", err)
	}
	return validator
}

func TestValidatorToken(t *testing.T) {
	validator := newTestValidator(t)
	testCases := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"valid", signTestToken(t, validClaims(DefaultIssuer, testNow.Add(time.Hour)), testSecret), nil},
		{"expired", signTestToken(t, validClaims(DefaultIssuer, testNow.Add(-time.Hour)), testSecret), ErrExpiredToken},
		{"wrong issuer", signTestToken(t, validClaims("elsewhere", testNow.Add(time.Hour)), testSecret), ErrInvalidToken},
		{"wrong secret", signTestToken(t, validClaims(DefaultIssuer, testNow.Add(time.Hour)), "other"), ErrInvalidToken},
		{"blank", "  ", ErrMissingToken},
		{"no subject", signTestToken(t, Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: DefaultIssuer, ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour))}}, testSecret), ErrMissingSubject},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			claims, err := validator.Token(testCase.token)
			if testCase.wantErr != nil {
				if !errors.Is(err, testCase.wantErr) {
					t.Fatalf("expected %v, got %v", testCase.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if claims.UserID != "google:42" {
				t.Fatalf("unexpected user id %q", claims.UserID)
			}
		})
	}
}

func TestValidatorRequestReadsCookieThenBearer(t *testing.T) {
	validator := newTestValidator(t)
	token := signTestToken(t, validClaims(DefaultIssuer, testNow.Add(time.Hour)), testSecret)

	withCookie := httptest.NewRequest(http.MethodGet, "/documents", http.NoBody)
	withCookie.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: token})
	if _, err := validator.Request(withCookie); err != nil {
		t.Fatalf("cookie validation failed: %v", err)
	}

	withHeader := httptest.NewRequest(http.MethodGet, "/documents", http.NoBody)
	withHeader.Header.Set("Authorization", "Bearer "+token)
	if _, err := validator.Request(withHeader); err != nil {
		t.Fatalf("bearer validation failed: %v", err)
	}

	anonymous := httptest.NewRequest(http.MethodGet, "/documents", http.NoBody)
	if _, err := validator.Request(anonymous); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected missing token, got %v", err)
	}
}

func TestNewValidatorRequiresSecret(t *testing.T) {
	if _, err := NewValidator(ValidatorConfig{}); !errors.Is(err, ErrMissingSigningSecret) {
		t.Fatalf("expected missing secret error, got %v", err)
	}
	if _, err := NewValidator(ValidatorConfig{SigningSecret: []byte("x"), CookieName: "bad name"}); !errors.Is(err, ErrMissingCookieName) {
		t.Fatalf("expected cookie name error, got %v", err)
	}
}
