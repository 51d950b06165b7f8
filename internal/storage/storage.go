// Package storage defines the local key-value persistence used for session
// state, the identity cache and the login limiter.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("storage: not found")

// Entry names.
const (
	KeyAuthToken = "authToken"
	KeyUser      = "user"
	KeyThemeMode = "themeMode"
	// LimiterPrefix namespaces login limiter counters.
	LimiterPrefix = "limiter:"
)

// KV is a flat named-entry store. Values are written wholesale.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
