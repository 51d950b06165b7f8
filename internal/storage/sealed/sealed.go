// Package sealed encrypts storage.KV values at rest.
package sealed

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/and161185/classroom/internal/storage"
)

// Params
const (
	KeyLen  = 32
	SaltLen = 16

	// DeviceKeyFile is created inside the data dir with mode 0600.
	DeviceKeyFile = "device.key"
	saltKey       = "sealed:salt"

	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 1
)

// ErrCorrupt is returned when a stored value fails authentication.
var ErrCorrupt = errors.New("sealed: value failed authentication")

// Rand returns n random bytes.
func Rand(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// DeriveMaster derives the master key from a passphrase and salt using Argon2id.
func DeriveMaster(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, argonTime, argonMemory, argonThreads, KeyLen)
}

// DeviceKey loads the device key from dir, creating it on first use.
func DeviceKey(dir string) ([]byte, error) {
	path := filepath.Join(dir, DeviceKeyFile)
	b, err := os.ReadFile(path)
	if err == nil {
		if len(b) != KeyLen {
			return nil, fmt.Errorf("device key %s: want %d bytes, got %d", path, KeyLen, len(b))
		}
		return b, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	b, err = Rand(KeyLen)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return nil, err
	}
	return b, nil
}

// entryKey derives a per-entry key via HKDF-SHA256 using the entry name as info.
func entryKey(master []byte, name string) ([]byte, error) {
	r := hkdf.New(sha256.New, master, nil, []byte(name))
	key := make([]byte, KeyLen)
	_, err := io.ReadFull(r, key)
	return key, err
}

// Seal encrypts plaintext with AAD = name and a random nonce.
func Seal(master []byte, name string, plaintext []byte) ([]byte, error) {
	key, err := entryKey(master, name)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce, err := Rand(chacha20poly1305.NonceSizeX)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)
	out = append(out, aead.Seal(nil, nonce, plaintext, []byte(name))...)
	return out, nil
}

// Open decrypts a blob produced by Seal for the same name.
func Open(master []byte, name string, blob []byte) ([]byte, error) {
	if len(blob) < chacha20poly1305.NonceSizeX {
		return nil, ErrCorrupt
	}
	key, err := entryKey(master, name)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := blob[:chacha20poly1305.NonceSizeX]
	pt, err := aead.Open(nil, nonce, blob[chacha20poly1305.NonceSizeX:], []byte(name))
	if err != nil {
		return nil, ErrCorrupt
	}
	return pt, nil
}

// Store seals every value before handing it to the wrapped KV.
type Store struct {
	next   storage.KV
	master []byte
}

// New wraps next with a 32-byte master key.
func New(next storage.KV, master []byte) (*Store, error) {
	if len(master) != KeyLen {
		return nil, fmt.Errorf("sealed: master key must be %d bytes", KeyLen)
	}
	return &Store{next: next, master: master}, nil
}

// WithPassphrase wraps next with a key derived from passphrase. The salt is
// kept unsealed in next and created on first use.
func WithPassphrase(ctx context.Context, next storage.KV, passphrase string) (*Store, error) {
	salt, err := next.Get(ctx, saltKey)
	if errors.Is(err, storage.ErrNotFound) {
		if salt, err = Rand(SaltLen); err != nil {
			return nil, err
		}
		err = next.Set(ctx, saltKey, salt)
	}
	if err != nil {
		return nil, fmt.Errorf("sealed: salt: %w", err)
	}
	return New(next, DeriveMaster([]byte(passphrase), salt))
}

// Get opens the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	blob, err := s.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return Open(s.master, key, blob)
}

// Set seals value and stores it under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	blob, err := Seal(s.master, key, value)
	if err != nil {
		return err
	}
	return s.next.Set(ctx, key, blob)
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.next.Delete(ctx, key)
}
