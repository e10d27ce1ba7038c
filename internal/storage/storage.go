package storage

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Store is the durable key-value port. Writes are synchronous and last-write-wins.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// Scoped returns a Store whose keys live under "session:<id>:". Each session therefore
// sees its own fixed "cart" key, the way each browser has its own local storage.
func Scoped(store Store, sessionID string) Store {
	return &scoped{inner: store, prefix: "session:" + strings.TrimSpace(sessionID) + ":"}
}

type scoped struct {
	inner  Store
	prefix string
}

func (s *scoped) Get(ctx context.Context, key string) (string, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

func (s *scoped) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}
