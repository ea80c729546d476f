package session

import (
	"context"
	"time"
)

// KeyValueStore is the storage capability a StoreHandler needs.
// Implementations: Redis, in-memory, Postgres (see internal/repository).
type KeyValueStore interface {
	// Get returns nil, nil when the key does not exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)
	// SetEx stores value under key and lets the backend expire it after ttl.
	SetEx(ctx context.Context, key string, ttl time.Duration, value []byte) (bool, error)
	// Del removes the given keys and reports how many existed.
	Del(ctx context.Context, keys ...string) (int64, error)
}

// SaveHandler is the lifecycle contract the session middleware drives.
type SaveHandler interface {
	Open(ctx context.Context, savePath, name string) (bool, error)
	Close(ctx context.Context) (bool, error)
	Read(ctx context.Context, sessionID string) ([]byte, error)
	Write(ctx context.Context, sessionID string, data []byte) (bool, error)
	Destroy(ctx context.Context, sessionID string) (bool, error)
	GC(ctx context.Context, maxLifetime time.Duration) (bool, error)
}
