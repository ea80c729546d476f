package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	"biliticket/sessionstore/internal/metrics"
)

type instrumentedStateStore struct {
	next   StateStore
	logger *zap.Logger
}

// NewInstrumentedStateStore wraps next with metrics and debug logging.
// Results and errors are passed through untouched.
func NewInstrumentedStateStore(next StateStore, logger *zap.Logger) StateStore {
	return &instrumentedStateStore{next: next, logger: logger}
}

func (s *instrumentedStateStore) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	val, err := s.next.Get(ctx, key)
	result := "ok"
	if err == nil && val == nil {
		result = "miss"
	}
	s.observe("get", start, result, err)
	return val, err
}

func (s *instrumentedStateStore) SetEx(ctx context.Context, key string, ttl time.Duration, value []byte) (bool, error) {
	start := time.Now()
	ok, err := s.next.SetEx(ctx, key, ttl, value)
	s.observe("setex", start, "ok", err)
	return ok, err
}

func (s *instrumentedStateStore) Del(ctx context.Context, keys ...string) (int64, error) {
	start := time.Now()
	n, err := s.next.Del(ctx, keys...)
	result := "ok"
	if err == nil && n == 0 {
		result = "miss"
	}
	s.observe("del", start, result, err)
	return n, err
}

func (s *instrumentedStateStore) Ping(ctx context.Context) error {
	if p, ok := s.next.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *instrumentedStateStore) observe(op string, start time.Time, result string, err error) {
	elapsed := time.Since(start)
	if err != nil {
		result = "error"
	}
	metrics.StoreOpsTotal.WithLabelValues(op, result).Inc()
	metrics.StoreOpLatency.WithLabelValues(op).Observe(elapsed.Seconds())

	if err != nil {
		s.logger.Warn("state store call failed",
			zap.String("op", op),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return
	}
	if ce := s.logger.Check(zap.DebugLevel, "state store call"); ce != nil {
		ce.Write(
			zap.String("op", op),
			zap.String("result", result),
			zap.Duration("elapsed", elapsed),
		)
	}
}
