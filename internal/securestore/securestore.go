// Package securestore persists small secrets (tokens, session blobs) for the
// client. Backends store opaque strings; Encrypted seals values before they
// reach a backend.
package securestore

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Keys used by the client containers.
const (
	KeyAuthToken      = "auth.token"
	KeyAuthUser       = "auth.user"
	KeyLocation       = "location.current"
	KeyFavRoutes      = "favroutes"
	KeyRecentSearches = "search.recent"
	KeyActiveStore    = "store.active"
)

var ErrNotFound = errors.New("securestore: key not found")

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Memory is a process-local Store, used in tests and with STORAGE_BACKEND=memory.
type Memory struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemory() *Memory { return &Memory{m: map[string]string{}} }

func (s *Memory) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *Memory) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.m[key] = value
	s.mu.Unlock()
	return nil
}

func (s *Memory) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
	return nil
}

// Open builds the backend named by kind ("sqlite", "redis" or "memory") and
// wraps it with Encrypted under passphrase.
func Open(ctx context.Context, kind, dsn, redisURL, passphrase string) (Store, func() error, error) {
	var (
		backend Store
		closer  = func() error { return nil }
	)
	switch kind {
	case "", "sqlite":
		s, err := OpenSQL(dsn)
		if err != nil {
			return nil, nil, err
		}
		backend, closer = s, s.Close
	case "redis":
		s, err := OpenRedis(ctx, redisURL, "storefront:secure")
		if err != nil {
			return nil, nil, err
		}
		backend, closer = s, s.Close
	case "memory":
		backend = NewMemory()
	default:
		return nil, nil, fmt.Errorf("securestore: unknown backend %q", kind)
	}
	enc, err := NewEncrypted(backend, passphrase)
	if err != nil {
		_ = closer()
		return nil, nil, err
	}
	return enc, closer, nil
}
