package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"biliticket/sessionstore/internal/metrics"
)

func TestPurgeLoop(t *testing.T) {
	results := []struct {
		n   int64
		err error
	}{
		{3, nil},
		{0, errors.New("connection reset")},
		{0, nil},
	}
	calls := 0
	purge := func(context.Context) (int64, error) {
		r := results[calls]
		calls++
		return r.n, r.err
	}

	core, logs := observer.New(zapcore.DebugLevel)
	before := testutil.ToFloat64(metrics.PurgedTotal)

	ctx, cancel := context.WithCancel(context.Background())
	ticks := make(chan time.Time)
	done := make(chan struct{})
	go func() {
		purgeLoop(ctx, ticks, purge, zap.New(core))
		close(done)
	}()

	// Unbuffered sends return only once the loop is back in select, so after
	// the last send every earlier tick has been handled.
	for range results {
		ticks <- time.Now()
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("purge loop did not stop after cancel")
	}

	assert.Equal(t, len(results), calls)
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.PurgedTotal)-before)
	require.Equal(t, 1, logs.FilterMessage("purge expired session states").Len())
	assert.Equal(t, 1, logs.FilterMessage("purged expired session states").Len())
}

func TestRunPurgeLoop_DisabledInterval(t *testing.T) {
	done := make(chan struct{})
	go func() {
		(&PGStateStore{}).RunPurgeLoop(context.Background(), 0, zap.NewNop())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("zero interval must return immediately")
	}
}
