// Package identity caches the signed-in user's profile on the device.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/and161185/classroom/internal/errs"
	"github.com/and161185/classroom/internal/model"
	"github.com/and161185/classroom/internal/remote"
	"github.com/and161185/classroom/internal/repository"
	"github.com/and161185/classroom/internal/storage"
)

// Cache is the process-wide owner of the cached identity. The persisted blob
// is read once on first access and written through on every change.
type Cache struct {
	kv       storage.KV
	profiles repository.ProfileRepository
	tokens   remote.TokenSource
	log      *zap.Logger

	mu     sync.RWMutex
	loaded bool
	cur    *model.Identity
}

// New constructs a Cache. tokens may be nil, in which case Refresh relies on
// the server to reject a missing session.
func New(kv storage.KV, profiles repository.ProfileRepository, tokens remote.TokenSource, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{kv: kv, profiles: profiles, tokens: tokens, log: log}
}

// Cached returns the identity without touching the network.
func (c *Cache) Cached() (model.Identity, bool) {
	c.mu.RLock()
	if c.loaded {
		defer c.mu.RUnlock()
		if c.cur == nil {
			return model.Identity{}, false
		}
		return *c.cur, true
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		c.cur = c.readLocked(context.Background())
		c.loaded = true
	}
	if c.cur == nil {
		return model.Identity{}, false
	}
	return *c.cur, true
}

// Email returns the cached identity's email or "".
func (c *Cache) Email() string {
	id, _ := c.Cached()
	return id.Email
}

func (c *Cache) readLocked(ctx context.Context) *model.Identity {
	b, err := c.kv.Get(ctx, storage.KeyUser)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.log.Warn("read cached identity", zap.Error(err))
		}
		return nil
	}
	var id model.Identity
	if err := json.Unmarshal(b, &id); err != nil {
		c.log.Warn("decode cached identity", zap.Error(err))
		return nil
	}
	return &id
}

// Refresh fetches the profile and overwrites the cache.
func (c *Cache) Refresh(ctx context.Context) (model.Identity, error) {
	if c.tokens != nil {
		tok, err := c.tokens.Token(ctx)
		if err != nil {
			return model.Identity{}, &errs.AuthError{Reason: "read session", Err: err}
		}
		if tok == "" {
			return model.Identity{}, &errs.AuthError{Reason: "no session"}
		}
	}
	id, err := c.profiles.Profile(ctx)
	if err != nil {
		return model.Identity{}, err
	}
	if err := c.Set(ctx, id); err != nil {
		return model.Identity{}, err
	}
	return id, nil
}

// Set writes id through to storage.
func (c *Cache) Set(ctx context.Context, id model.Identity) error {
	b, err := json.Marshal(id)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.kv.Set(ctx, storage.KeyUser, b); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	c.cur = &id
	c.loaded = true
	return nil
}

// Clear removes the cached identity.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.kv.Delete(ctx, storage.KeyUser); err != nil {
		return fmt.Errorf("clear identity: %w", err)
	}
	c.cur = nil
	c.loaded = true
	return nil
}
