package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// TokenID identifies a persisted session token
type TokenID string

// NewTokenID generates a new unique TokenID
func NewTokenID() TokenID {
	return TokenID(uuid.New().String())
}

// Validate checks if the token ID is non-empty
func (id TokenID) Validate() error {
	if id == "" {
		return goerr.New("token ID is empty")
	}
	return nil
}

// String returns the string representation of the token ID
func (id TokenID) String() string {
	return string(id)
}

// TokenSecret is the secret half of a session token. It is compared in the
// server and never logged (masq redacts it by type).
type TokenSecret string

// NewTokenSecret generates a random token secret
func NewTokenSecret() TokenSecret {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return TokenSecret(hex.EncodeToString(buf))
}

// Validate checks if the token secret is non-empty
func (s TokenSecret) Validate() error {
	if s == "" {
		return goerr.New("token secret is empty")
	}
	return nil
}

// String returns the string representation of the token secret
func (s TokenSecret) String() string {
	return string(s)
}

const tokenTTL = 7 * 24 * time.Hour

// Token is a persisted session. It restores a session across reloads without
// re-validating the underlying OTP/password, which is never stored.
type Token struct {
	ID        TokenID     `json:"id"`
	Secret    TokenSecret `json:"secret"`
	Session   Session     `json:"session"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// NewToken mints a token for the given session
func NewToken(session Session) *Token {
	now := time.Now().UTC()
	return &Token{
		ID:        NewTokenID(),
		Secret:    NewTokenSecret(),
		Session:   session,
		CreatedAt: now,
		ExpiresAt: now.Add(tokenTTL),
	}
}

// Validate checks if the token is complete and consistent
func (t *Token) Validate() error {
	if err := t.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid token")
	}
	if err := t.Secret.Validate(); err != nil {
		return goerr.Wrap(err, "invalid token")
	}
	if err := t.Session.Validate(); err != nil {
		return goerr.Wrap(err, "invalid token session")
	}
	if !t.Session.IsAuthenticated() {
		return goerr.New("token requires an authenticated session")
	}
	return nil
}

// IsExpired reports whether the token has expired at the given time
func (t *Token) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

type ctxTokenKey struct{}

// ContextWithToken embeds the token into the context
func ContextWithToken(ctx context.Context, token *Token) context.Context {
	return context.WithValue(ctx, ctxTokenKey{}, token)
}

// TokenFromContext extracts the token from the context
func TokenFromContext(ctx context.Context) (*Token, error) {
	token, ok := ctx.Value(ctxTokenKey{}).(*Token)
	if !ok || token == nil {
		return nil, goerr.New("no token in context")
	}
	return token, nil
}

// SessionFromContext extracts the session from the context, returning the
// anonymous session when no token is present.
func SessionFromContext(ctx context.Context) Session {
	token, err := TokenFromContext(ctx)
	if err != nil {
		return AnonymousSession()
	}
	return token.Session
}
