package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anortham/codesearch-mcp/internal/cserrors"
)

func fastConfig() Config {
	return Config{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestDoSucceedsWithoutRetryingOnFirstSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransientErrorsUpToMaxAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return cserrors.ErrFileBusy
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsRetryingNonTransientError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return cserrors.ErrInvalidPath
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoSucceedsAfterTransientRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		if calls < 2 {
			return cserrors.ErrTimeout
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDoStopsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := Do(ctx, Config{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}, func() error {
		calls++
		return cserrors.ErrFileBusy
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled) || calls >= 1)
}
