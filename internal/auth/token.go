package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingSecret   = errors.New("token signing secret is not configured")
	ErrInvalidLifetime = errors.New("token lifetime must be at least one second")
	ErrMissingSubject  = errors.New("token subject is empty")

	// Decode failures. They are distinct for diagnostics only; the Gate
	// collapses all of them into ErrUnauthorized.
	ErrMalformed        = errors.New("token malformed")
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrExpired          = errors.New("token expired")
)

// Claims is the session payload carried by an access token.
type Claims struct {
	Subject   string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenManager issues and decodes HS256-signed JWTs. It holds no mutable
// state after construction and is safe for concurrent use.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a manager with the provided secret, issuer, and
// default lifetime. An empty secret is a startup error.
func NewTokenManager(secret, issuer string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl < time.Second {
		return nil, ErrInvalidLifetime
	}
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// TTL returns the default token lifetime.
func (t *TokenManager) TTL() time.Duration {
	return t.ttl
}

// Generate issues a token for subject using the default lifetime.
func (t *TokenManager) Generate(subject string) (string, error) {
	return t.Issue(subject, t.ttl)
}

// Issue signs a token for subject that expires lifetime from now.
func (t *TokenManager) Issue(subject string, lifetime time.Duration) (string, error) {
	if subject == "" {
		return "", ErrMissingSubject
	}
	if lifetime < time.Second {
		return "", ErrInvalidLifetime
	}
	now := t.now()
	claims := jwt.RegisteredClaims{
		Issuer:    t.issuer,
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Decode verifies the token signature, then its expiry and issuer, and
// returns the embedded claims. The library checks the HMAC with a
// constant-time comparison before any claim is validated.
func (t *TokenManager) Decode(tokenString string) (Claims, error) {
	var rc jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &rc, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(t.issuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Claims{}, classify(err)
	}
	if rc.Subject == "" {
		return Claims{}, ErrMalformed
	}

	claims := Claims{
		Subject:   rc.Subject,
		ID:        rc.ID,
		ExpiresAt: rc.ExpiresAt.Time,
	}
	if rc.IssuedAt != nil {
		claims.IssuedAt = rc.IssuedAt.Time
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return ErrMalformed
	}
}
