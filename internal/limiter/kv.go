package limiter

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/and161185/classroom/internal/storage"
)

type record struct {
	FailCount    int       `json:"fail_count"`
	BlockedUntil time.Time `json:"blocked_until"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// KV is a limiter with sliding window and lockout persisted in a storage.KV.
type KV struct {
	kv       storage.KV
	window   time.Duration
	maxFails int
	blockFor time.Duration
	now      func() time.Time

	mu sync.Mutex
}

// NewKV constructs a KV-backed limiter.
func NewKV(kv storage.KV, window time.Duration, maxFails int, blockFor time.Duration) *KV {
	return &KV{kv: kv, window: window, maxFails: maxFails, blockFor: blockFor, now: time.Now}
}

func key(email string) string { return storage.LimiterPrefix + HashEmail(email) }

func (l *KV) load(ctx context.Context, email string) (record, error) {
	b, err := l.kv.Get(ctx, key(email))
	if errors.Is(err, storage.ErrNotFound) {
		return record{}, nil
	}
	if err != nil {
		return record{}, err
	}
	var r record
	if err := json.Unmarshal(b, &r); err != nil {
		// unreadable counters reset
		return record{}, nil
	}
	return r, nil
}

func (l *KV) store(ctx context.Context, email string, r record) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return l.kv.Set(ctx, key(email), b)
}

// Allow reports whether login is currently allowed and a retry-after duration.
func (l *KV) Allow(ctx context.Context, email string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, err := l.load(ctx, email)
	if err != nil {
		return false, 0, err
	}
	now := l.now()
	if r.BlockedUntil.After(now) {
		return false, r.BlockedUntil.Sub(now), nil
	}
	return true, 0, nil
}

// Success resets counters for email.
func (l *KV) Success(ctx context.Context, email string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.kv.Delete(ctx, key(email))
}

// Failure records a failed attempt; may set a block until a future time.
func (l *KV) Failure(ctx context.Context, email string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, err := l.load(ctx, email)
	if err != nil {
		return false, 0, err
	}
	now := l.now()
	if now.Sub(r.UpdatedAt) > l.window {
		r.FailCount = 0
	}
	r.FailCount++
	r.UpdatedAt = now
	blocked := r.FailCount >= l.maxFails
	if blocked {
		r.BlockedUntil = now.Add(l.blockFor)
		r.FailCount = 0
	}
	if err := l.store(ctx, email, r); err != nil {
		return false, 0, err
	}
	if blocked {
		return true, l.blockFor, nil
	}
	return false, 0, nil
}
