// Package auth inspects backend access tokens so the web session can decide
// when to refresh before calling the backend.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

const defaultLeeway = 30 * time.Second

var (
	ErrMalformedToken = errors.New("malformed access token")
	ErrInvalidToken   = errors.New("invalid access token")
)

// Claims is the subset of access token claims the web client cares about.
type Claims struct {
	Subject   string
	Email     string
	Role      string
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry at now. Tokens without
// an exp claim never expire here; the backend remains the authority.
func (c Claims) Expired(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt)
}

// VerifierOptions selects how signatures are checked. Secret wins over
// JWKSURL; with neither set the token is decoded without verification.
type VerifierOptions struct {
	Secret  string
	JWKSURL string
	Leeway  time.Duration
}

// Verifier decodes access tokens issued by the auth service.
type Verifier struct {
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
	leeway  time.Duration
}

// NewVerifier builds a verifier for the configured key source.
func NewVerifier(opts VerifierOptions) (*Verifier, error) {
	leeway := opts.Leeway
	if leeway <= 0 {
		leeway = defaultLeeway
	}
	v := &Verifier{leeway: leeway}

	secret := strings.TrimSpace(opts.Secret)
	jwksURL := strings.TrimSpace(opts.JWKSURL)
	switch {
	case secret != "":
		key := []byte(secret)
		v.keyfunc = func(*jwt.Token) (any, error) { return key, nil }
		v.parser = jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
			jwt.WithoutClaimsValidation(),
		)
	case jwksURL != "":
		provider, err := keyfunc.NewDefault([]string{jwksURL})
		if err != nil {
			return nil, fmt.Errorf("failed to init JWKS keyfunc: %w", err)
		}
		v.keyfunc = provider.Keyfunc
		v.parser = jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name, jwt.SigningMethodES256.Name}),
			jwt.WithoutClaimsValidation(),
		)
	default:
		v.parser = jwt.NewParser(jwt.WithoutClaimsValidation())
	}
	return v, nil
}

// Verifies reports whether signatures are checked.
func (v *Verifier) Verifies() bool {
	return v != nil && v.keyfunc != nil
}

// Inspect decodes the token and returns its claims. Expiry is not enforced so
// callers can still read the subject of an expired token and refresh it.
func (v *Verifier) Inspect(tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrMalformedToken
	}

	mapClaims := jwt.MapClaims{}
	if v.keyfunc == nil {
		if _, _, err := v.parser.ParseUnverified(tokenString, mapClaims); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		}
	} else {
		token, err := v.parser.ParseWithClaims(tokenString, mapClaims, v.keyfunc)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenMalformed) {
				return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
			}
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		if !token.Valid {
			return nil, ErrInvalidToken
		}
	}

	claims := &Claims{
		Subject: readString(mapClaims, "sub"),
		Email:   readString(mapClaims, "email"),
		Role:    readString(mapClaims, "role"),
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}

// NeedsRefresh reports whether the token is expired or about to expire at now.
// Tokens that cannot be decoded need a refresh too.
func (v *Verifier) NeedsRefresh(tokenString string, now time.Time) bool {
	claims, err := v.Inspect(tokenString)
	if err != nil {
		return true
	}
	return claims.Expired(now.Add(v.leeway))
}

func readString(claims jwt.MapClaims, key string) string {
	if s, ok := claims[key].(string); ok {
		return s
	}
	return ""
}
