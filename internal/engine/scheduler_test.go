package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func nopLogger() *zap.Logger { return zap.NewNop() }

type countingRunner struct {
	calls atomic.Int32
	err   error
}

func (r *countingRunner) RunAll(context.Context) ([]ProjectReport, error) {
	r.calls.Add(1)
	return nil, r.err
}

func TestScheduler_RunsImmediatelyAndOnTick(t *testing.T) {
	defer goleak.VerifyNone(t)

	runner := &countingRunner{err: errors.New("one project failed")}
	s := NewScheduler(runner, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool { return runner.calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_FirstRunIsImmediate(t *testing.T) {
	defer goleak.VerifyNone(t)

	runner := &countingRunner{}
	s := NewScheduler(runner, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return runner.calls.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	<-done
	assert.Equal(t, int32(1), runner.calls.Load())
}
