// Package auth issues and verifies the per-drone ingest credentials.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const ingestIssuer = "drone-fire-monitor"

var (
	ErrSecretNotConfigured = errors.New("ingest token secret is not configured")
	ErrInvalidIngestToken  = errors.New("invalid ingest token")
)

// IngestClaims identify the drone an ingest token was issued to.
type IngestClaims struct {
	Collection string `json:"collection"`
	jwt.RegisteredClaims
}

// DroneID is the registry id the token was issued for.
func (c *IngestClaims) DroneID() string {
	return c.Subject
}

// TokenIssuer signs ingest tokens with a shared HMAC secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration, now func() time.Time) *TokenIssuer {
	if now == nil {
		now = time.Now
	}
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    now,
	}
}

// Enabled reports whether tokens can be issued and must be verified.
func (i *TokenIssuer) Enabled() bool {
	return i != nil && len(i.secret) > 0
}

func (i *TokenIssuer) Issue(droneID, collection string) (string, error) {
	if !i.Enabled() {
		return "", ErrSecretNotConfigured
	}

	now := i.now()
	claims := IngestClaims{
		Collection: collection,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   ingestIssuer,
			Subject:  droneID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign ingest token: %w", err)
	}
	return signed, nil
}

func (i *TokenIssuer) Verify(tokenStr string) (*IngestClaims, error) {
	if !i.Enabled() {
		return nil, ErrSecretNotConfigured
	}

	claims := &IngestClaims{}
	tok, err := jwt.ParseWithClaims(strings.TrimSpace(tokenStr), claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	},
		jwt.WithIssuer(ingestIssuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIngestToken, err)
	}
	if !tok.Valid || claims.Subject == "" || claims.Collection == "" {
		return nil, ErrInvalidIngestToken
	}
	return claims, nil
}
