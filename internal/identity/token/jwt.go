// Package token issues and verifies the stateless session tokens. Tokens are
// signed claim sets; nothing is persisted server-side and invalidation happens
// only through expiry or client-side discard.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verification failures form a tri-state contract: callers can distinguish an
// expired token from a forged or garbled one, and Verify never panics.
var (
	ErrExpired          = errors.New("token expired")
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrMalformed        = errors.New("token malformed")
)

// Claims is the signed claim set carried by a session token.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Subject returns the token subject (the principal's email).
func (c *Claims) Subject() string {
	return c.RegisteredClaims.Subject
}

// Service signs and verifies session tokens with one process-wide HS256 key.
type Service struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

// DefaultTTL is applied when no explicit TTL is configured.
const DefaultTTL = 30 * time.Minute

func NewService(signingKey string, issuer string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        ttl,
	}
}

// TTL exposes the configured token lifetime (for expires_in responses).
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for the given subject with expiry now+ttl.
func (s *Service) Issue(subject string, role string, now time.Time) (string, error) {
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims or exactly one of
// ErrExpired, ErrInvalidSignature, ErrMalformed. Expiry is evaluated against
// the caller's clock, the same one that stamped issuance.
func (s *Service) Verify(tokenString string, now time.Time) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.signingKey, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrMalformed
		}
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}
	if claims.Subject() == "" {
		return nil, ErrMalformed
	}
	return claims, nil
}
