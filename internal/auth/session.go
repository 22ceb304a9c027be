// Package auth validates TAuth session cookies for the mailcanvas API.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultIssuer is the issuer TAuth stamps on session tokens.
const DefaultIssuer = "tauth"

// DefaultCookieName is the cookie TAuth sets after sign-in.
const DefaultCookieName = "app_session"

const bearerPrefix = "Bearer "

var (
	ErrMissingSigningSecret = errors.New("auth: signing secret required")
	ErrMissingCookieName    = errors.New("auth: cookie name required")
	ErrMissingToken         = errors.New("auth: session token required")
	ErrInvalidToken         = errors.New("auth: invalid session token")
	ErrExpiredToken         = errors.New("auth: session token expired")
	ErrMissingSubject       = errors.New("auth: session subject required")
)

// Claims is the session payload. UserID may carry a "provider:subject" pair.
type Claims struct {
	UserID          string `json:"user_id"`
	UserEmail       string `json:"user_email"`
	UserDisplayName string `json:"user_display_name"`
	jwt.RegisteredClaims
}

// ValidatorConfig configures a Validator. Issuer and CookieName default to the
// TAuth values.
type ValidatorConfig struct {
	SigningSecret []byte
	Issuer        string
	CookieName    string
	Clock         func() time.Time
}

// Validator checks HS256 session tokens taken from a cookie or bearer header.
type Validator struct {
	secret     []byte
	issuer     string
	cookieName string
	clock      func() time.Time
}

func NewValidator(cfg ValidatorConfig) (*Validator, error) {
	if len(cfg.SigningSecret) == 0 {
		return nil, ErrMissingSigningSecret
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = DefaultIssuer
	}
	cookieName := strings.TrimSpace(cfg.CookieName)
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	if strings.ContainsAny(cookieName, " ;=") {
		return nil, fmt.Errorf("%w: %q is not a valid cookie name", ErrMissingCookieName, cookieName)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Validator{
		secret:     append([]byte(nil), cfg.SigningSecret...),
		issuer:     issuer,
		cookieName: cookieName,
		clock:      clock,
	}, nil
}

// Token parses and verifies raw.
func (v *Validator) Token(raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, ErrMissingToken
	}

	claims := Claims{}
	parsed, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithTimeFunc(v.clock),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, ErrExpiredToken
	case err != nil:
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	case parsed == nil || !parsed.Valid:
		return Claims{}, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" && strings.TrimSpace(claims.UserID) == "" {
		return Claims{}, ErrMissingSubject
	}
	return claims, nil
}

// Request validates the session cookie, falling back to an Authorization bearer token.
func (v *Validator) Request(r *http.Request) (Claims, error) {
	if r == nil {
		return Claims{}, ErrMissingToken
	}
	if cookie, err := r.Cookie(v.cookieName); err == nil && cookie.Value != "" {
		return v.Token(cookie.Value)
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, bearerPrefix) {
		return v.Token(strings.TrimPrefix(header, bearerPrefix))
	}
	return Claims{}, ErrMissingToken
}

// CookieName returns the session cookie consulted by Request.
func (v *Validator) CookieName() string {
	return v.cookieName
}
