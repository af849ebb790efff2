package auth

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/mkarlsen/reddit-user-client/pkg/logging"
)

// refreshMargin is subtracted from a token's lifetime before storing it,
// so tokens are refreshed before they actually lapse.
const refreshMargin = 1 * time.Minute

// TokenSource yields a bearer token for an outgoing request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Static returns a TokenSource that always yields the given token.
// Useful for tests and for tokens obtained out of band.
func Static(token string) TokenSource {
	return staticSource(token)
}

type staticSource string

func (s staticSource) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

// CachedSource serves tokens from a Store and falls back to the
// Authenticator when the store is empty. Safe for concurrent use; a store
// miss under concurrency may trigger more than one token request, which
// Reddit tolerates.
type CachedSource struct {
	auth   *Authenticator
	store  Store
	logger zerolog.Logger
}

// NewCachedSource plugs an authenticator and a store together.
func NewCachedSource(authenticator *Authenticator, store Store) *CachedSource {
	if authenticator == nil {
		panic("authenticator cannot be nil")
	}
	if store == nil {
		store = NewMemoryStore()
	}
	return &CachedSource{
		auth:   authenticator,
		store:  store,
		logger: logging.NewLogger("auth"),
	}
}

// Token returns a stored token when one is available, otherwise requests
// a fresh one and stores it. Store failures are logged and degrade to a
// direct token request rather than failing the caller.
func (s *CachedSource) Token(ctx context.Context) (string, error) {
	token, err := s.store.Get(ctx)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, ErrNoToken) {
		s.logger.Warn().
			Err(err).
			Msg("Token store unavailable, requesting fresh token")
	}

	fresh, err := s.auth.Authenticate(ctx)
	if err != nil {
		return "", err
	}

	ttl := fresh.TTL() - refreshMargin
	if err := s.store.Set(ctx, fresh.AccessToken, ttl); err != nil {
		s.logger.Warn().
			Err(err).
			Msg("Failed to store token")
	}

	s.logger.Debug().
		Str("grant", s.auth.GrantType()).
		Time("expires", fresh.Expires).
		Msg("Obtained fresh token")

	return fresh.AccessToken, nil
}

// Invalidate discards the stored token so the next Token call requests a
// fresh one. Called after the API rejects a token as expired or revoked.
func (s *CachedSource) Invalidate(ctx context.Context) error {
	return s.store.Delete(ctx)
}
