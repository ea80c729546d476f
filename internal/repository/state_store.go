package repository

import (
	"context"

	"biliticket/sessionstore/internal/session"
)

// StateStore is the ephemeral key-value backend behind session storage.
// Implementations: Redis (production), in-memory (local dev / single instance)
// or Postgres (when no Redis is available).
type StateStore interface {
	session.KeyValueStore
}

// Pinger is implemented by backends that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
