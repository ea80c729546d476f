package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biliticket/sessionstore/internal/repository"
	"biliticket/sessionstore/internal/session"
)

func TestStoreHandlerOverMemoryStore(t *testing.T) {
	t.Parallel()

	store := repository.NewMemoryStateStore()
	h, err := session.NewStoreHandler(store, time.Minute, session.Options{"key_prefix": "foo:"})
	require.NoError(t, err)
	ctx := context.Background()

	data, err := h.Read(ctx, "bar")
	require.NoError(t, err)
	assert.Empty(t, data)

	ok, err := h.Write(ctx, "bar", []byte("payload"))
	require.NoError(t, err)
	assert.True(t, ok)

	raw, err := store.Get(ctx, "foo:bar")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), raw, "payload is stored under the prefixed key")

	data, err = h.Read(ctx, "bar")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	ok, err = h.Destroy(ctx, "bar")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Destroy(ctx, "bar")
	require.NoError(t, err)
	assert.False(t, ok)

	data, err = h.Read(ctx, "bar")
	require.NoError(t, err)
	assert.Empty(t, data)
}
