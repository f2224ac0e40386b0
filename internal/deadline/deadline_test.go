package deadline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestRun_ReturnsResult(t *testing.T) {
	defer goleak.VerifyNone(t)

	got, err := Run(context.Background(), time.Second, func(ctx context.Context) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestRun_ReturnsError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Run(context.Background(), time.Second, func(ctx context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestRun_DeadlineWithUncooperativeCall(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	got, err := Run(context.Background(), 20*time.Millisecond, func(ctx context.Context) (string, error) {
		<-release
		return "late", nil
	})

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, got)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRun_ParentCancellation(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, 0, func(ctx context.Context) (string, error) {
		<-release
		return "late", nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_RecoversPanic(t *testing.T) {
	_, err := Run(context.Background(), time.Second, func(ctx context.Context) (string, error) {
		panic("nil map")
	})
	require.ErrorIs(t, err, ErrPanic)
	assert.Contains(t, err.Error(), "nil map")
}
