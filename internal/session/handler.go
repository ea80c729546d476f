package session

import (
	"context"
	"fmt"
	"reflect"
	"time"
)

// OptionKeyPrefix names the option holding the namespace prepended to every
// session ID. Any non-string value is treated as "no prefix".
const OptionKeyPrefix = "key_prefix"

// Options configures a StoreHandler. Unknown keys are ignored.
type Options map[string]any

func defaultOptions() Options {
	return Options{
		OptionKeyPrefix: "",
	}
}

// StoreHandler persists session payloads in a KeyValueStore and relies on the
// store's TTL for expiration. It holds no state besides its configuration.
type StoreHandler struct {
	store    KeyValueStore
	lifetime time.Duration
	options  Options
}

var _ SaveHandler = (*StoreHandler)(nil)

// NewStoreHandler builds a handler around store, which must implement
// KeyValueStore. Every write expires after lifetime.
func NewStoreHandler(store any, lifetime time.Duration, options Options) (*StoreHandler, error) {
	kv, ok := store.(KeyValueStore)
	if !ok {
		return nil, fmt.Errorf("%w: store of type %T does not implement KeyValueStore", ErrInvalidArgument, store)
	}
	if isNilValue(store) {
		return nil, fmt.Errorf("%w: store of type %T is nil", ErrInvalidArgument, store)
	}
	if lifetime <= 0 {
		return nil, fmt.Errorf("%w: lifetime must be positive, got %s", ErrInvalidArgument, lifetime)
	}

	merged := defaultOptions()
	for k, v := range options {
		merged[k] = v
	}

	return &StoreHandler{
		store:    kv,
		lifetime: lifetime,
		options:  merged,
	}, nil
}

// isNilValue catches typed nils such as (*PGStateStore)(nil), which satisfy
// the interface but panic on the first call.
func isNilValue(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Lifetime returns the TTL applied to every write.
func (h *StoreHandler) Lifetime() time.Duration {
	return h.lifetime
}

// Open is a no-op; the store connection is owned by the caller.
func (h *StoreHandler) Open(_ context.Context, _, _ string) (bool, error) {
	return true, nil
}

// Close is a no-op.
func (h *StoreHandler) Close(_ context.Context) (bool, error) {
	return true, nil
}

// Read returns the stored payload, or an empty slice when nothing is stored.
func (h *StoreHandler) Read(ctx context.Context, sessionID string) ([]byte, error) {
	data, err := h.store.Get(ctx, h.Key(sessionID))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return []byte{}, nil
	}
	return data, nil
}

// Write stores data under the prefixed key with the handler's lifetime as TTL.
func (h *StoreHandler) Write(ctx context.Context, sessionID string, data []byte) (bool, error) {
	return h.store.SetEx(ctx, h.Key(sessionID), h.lifetime, data)
}

// Destroy reports true only when exactly one key was removed.
func (h *StoreHandler) Destroy(ctx context.Context, sessionID string) (bool, error) {
	n, err := h.store.Del(ctx, h.Key(sessionID))
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// GC always succeeds: keys expire through the TTL set by Write.
func (h *StoreHandler) GC(_ context.Context, _ time.Duration) (bool, error) {
	return true, nil
}

// Key maps a session ID to its storage key.
func (h *StoreHandler) Key(sessionID string) string {
	if prefix, ok := h.options[OptionKeyPrefix].(string); ok {
		return prefix + sessionID
	}
	return sessionID
}
