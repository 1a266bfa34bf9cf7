package auth

import (
	"context"
	"errors"
	"time"

	"github.com/hongminglow/payment-gateway/internal/logging"
)

// ErrUnauthorized is the only failure the Gate reports to callers.
var ErrUnauthorized = errors.New("could not validate credentials")

// Identity is the authenticated principal derived from a valid token.
type Identity struct {
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// TokenDecoder decodes and validates presented tokens.
type TokenDecoder interface {
	Decode(token string) (Claims, error)
}

// Gate turns presented tokens into identities. It does not consult storage;
// callers needing the full user record look it up themselves.
type Gate struct {
	tokens TokenDecoder
	log    logging.Logger
}

// NewGate creates a Gate backed by tokens.
func NewGate(tokens TokenDecoder, log logging.Logger) *Gate {
	return &Gate{tokens: tokens, log: log}
}

// Authenticate validates token and returns the identity it names.
func (g *Gate) Authenticate(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		g.log.Debug(ctx, "authentication rejected", "reason", "missing")
		return Identity{}, ErrUnauthorized
	}
	claims, err := g.tokens.Decode(token)
	if err != nil {
		g.log.Debug(ctx, "authentication rejected", "reason", err.Error())
		return Identity{}, ErrUnauthorized
	}
	return Identity{
		Email:     claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}
