// Package session persists the bearer token and UI preferences on the device.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/classroom/internal/model"
	"github.com/and161185/classroom/internal/storage"
)

// DefaultTTL applies to tokens without an exp claim.
const DefaultTTL = 15 * time.Minute

// Theme is the persisted color scheme.
type Theme string

// Themes.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme accepts "light" or "dark".
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

type tokenRecord struct {
	Token     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store reads and writes session entries. It implements remote.TokenSource.
type Store struct {
	kv  storage.KV
	now func() time.Time
}

// New wraps kv.
func New(kv storage.KV) *Store { return &Store{kv: kv, now: time.Now} }

// ExpiryOf reads the exp claim without verifying the signature.
func ExpiryOf(token string, now time.Time) time.Time {
	var claims jwt.RegisteredClaims
	_, _, _ = jwt.NewParser().ParseUnverified(token, &claims)
	if claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return now.Add(DefaultTTL)
}

// Save persists token and returns the resulting session.
func (s *Store) Save(ctx context.Context, token string) (model.Session, error) {
	if token == "" {
		return model.Session{}, errors.New("session: empty token")
	}
	sess := model.Session{Token: token, ExpiresAt: ExpiryOf(token, s.now())}
	b, err := json.Marshal(tokenRecord{Token: sess.Token, ExpiresAt: sess.ExpiresAt})
	if err != nil {
		return model.Session{}, err
	}
	if err := s.kv.Set(ctx, storage.KeyAuthToken, b); err != nil {
		return model.Session{}, fmt.Errorf("save token: %w", err)
	}
	return sess, nil
}

// Load returns the stored session. Missing or expired tokens report false.
func (s *Store) Load(ctx context.Context) (model.Session, bool, error) {
	b, err := s.kv.Get(ctx, storage.KeyAuthToken)
	if errors.Is(err, storage.ErrNotFound) {
		return model.Session{}, false, nil
	}
	if err != nil {
		return model.Session{}, false, fmt.Errorf("load token: %w", err)
	}
	var rec tokenRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return model.Session{}, false, fmt.Errorf("decode token: %w", err)
	}
	sess := model.Session{Token: rec.Token, ExpiresAt: rec.ExpiresAt}
	if !sess.Valid(s.now()) {
		return model.Session{}, false, nil
	}
	return sess, true, nil
}

// Token returns the live bearer token or "".
func (s *Store) Token(ctx context.Context) (string, error) {
	sess, ok, err := s.Load(ctx)
	if err != nil || !ok {
		return "", err
	}
	return sess.Token, nil
}

// Clear removes the token.
func (s *Store) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, storage.KeyAuthToken)
}

// Theme returns the saved theme, light when unset.
func (s *Store) Theme(ctx context.Context) (Theme, error) {
	b, err := s.kv.Get(ctx, storage.KeyThemeMode)
	if errors.Is(err, storage.ErrNotFound) {
		return ThemeLight, nil
	}
	if err != nil {
		return "", err
	}
	t, err := ParseTheme(string(b))
	if err != nil {
		return ThemeLight, nil
	}
	return t, nil
}

// SetTheme persists t.
func (s *Store) SetTheme(ctx context.Context, t Theme) error {
	if _, err := ParseTheme(string(t)); err != nil {
		return err
	}
	return s.kv.Set(ctx, storage.KeyThemeMode, []byte(t))
}
