// Package service contains application services for authentication, the
// status feed and the class roster.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/classroom/internal/errs"
	"github.com/and161185/classroom/internal/limiter"
	"github.com/and161185/classroom/internal/model"
	"github.com/and161185/classroom/internal/repository"
)

var emailRe = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// AuthService defines sign-in and profile operations.
type AuthService interface {
	// Login applies rate-limiting, signs in and persists the session.
	Login(ctx context.Context, email, password string) (model.Identity, error)
	// Logout removes the session and the cached identity.
	Logout(ctx context.Context) error
	// UpdateProfile writes the editable fields and refreshes the cache.
	UpdateProfile(ctx context.Context, username, email string) (model.Identity, error)
}

// SessionStore persists the bearer token. session.Store implements it.
type SessionStore interface {
	Save(ctx context.Context, token string) (model.Session, error)
	Clear(ctx context.Context) error
}

// IdentityStore is the identity cache surface used by AuthServiceImpl.
type IdentityStore interface {
	Set(ctx context.Context, id model.Identity) error
	Clear(ctx context.Context) error
	Refresh(ctx context.Context) (model.Identity, error)
}

type AuthServiceImpl struct {
	accounts repository.ProfileRepository
	sessions SessionStore
	ids      IdentityStore
	lim      limiter.Limiter
	log      *zap.Logger
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(accounts repository.ProfileRepository, sessions SessionStore, ids IdentityStore, lim limiter.Limiter, log *zap.Logger) *AuthServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthServiceImpl{accounts: accounts, sessions: sessions, ids: ids, lim: lim, log: log}
}

func validateEmail(email string) error {
	if email == "" {
		return errs.Invalid("email", "required")
	}
	if !emailRe.MatchString(email) {
		return errs.Invalid("email", "invalid format")
	}
	return nil
}

// Login authenticates with client-side rate limiting by email.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (model.Identity, error) {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return model.Identity{}, err
	}
	if password == "" {
		return model.Identity{}, errs.Invalid("password", "required")
	}

	allowed, retry, err := s.lim.Allow(ctx, email)
	if err != nil {
		return model.Identity{}, err
	}
	if !allowed {
		return model.Identity{}, fmt.Errorf("%w: retry in %s", errs.ErrRateLimited, retry.Round(time.Second))
	}

	token, id, err := s.accounts.SignIn(ctx, email, password)
	if err != nil {
		// transport failures are not counted as attempts
		var se *errs.ServerError
		if errors.As(err, &se) {
			if blocked, _, ferr := s.lim.Failure(ctx, email); ferr == nil && blocked {
				return model.Identity{}, errs.ErrRateLimited
			}
		}
		return model.Identity{}, err
	}

	// Success: reset counters (best-effort).
	if err := s.lim.Success(ctx, email); err != nil {
		s.log.Warn("reset login limiter", zap.Error(err))
	}

	if _, err := s.sessions.Save(ctx, token); err != nil {
		return model.Identity{}, err
	}
	if err := s.ids.Set(ctx, id); err != nil {
		return model.Identity{}, err
	}
	fresh, err := s.ids.Refresh(ctx)
	if err != nil {
		s.log.Warn("refresh profile after login", zap.Error(err))
		return id, nil
	}
	return fresh, nil
}

// Logout removes token and identity. Both removals are attempted.
func (s *AuthServiceImpl) Logout(ctx context.Context) error {
	return errors.Join(s.sessions.Clear(ctx), s.ids.Clear(ctx))
}

// UpdateProfile validates and writes username and email.
func (s *AuthServiceImpl) UpdateProfile(ctx context.Context, username, email string) (model.Identity, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return model.Identity{}, errs.Invalid("username", "required")
	}
	if err := validateEmail(email); err != nil {
		return model.Identity{}, err
	}
	id, err := s.accounts.UpdateProfile(ctx, repository.ProfileUpdate{Username: username, Email: email})
	if err != nil {
		return model.Identity{}, err
	}
	if err := s.ids.Set(ctx, id); err != nil {
		return model.Identity{}, err
	}
	return id, nil
}
