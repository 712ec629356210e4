package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSleep returns a SleepFunc that records delays without waiting.
func recordingSleep(delays *[]time.Duration) SleepFunc {
	return func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return ctx.Err()
	}
}

func TestRetryPolicy_Success(t *testing.T) {
	var delays []time.Duration
	policy := RetryPolicy{MaxAttempts: 3, Backoff: ExponentialBackoff(time.Second), Sleep: recordingSleep(&delays)}

	attempts := 0
	err := policy.Do(context.Background(), func(context.Context, int) error {
		attempts++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, attempts, "should succeed on first try")
	assert.Empty(t, delays)
}

func TestRetryPolicy_EventualSuccess(t *testing.T) {
	var delays []time.Duration
	policy := RetryPolicy{MaxAttempts: 5, Backoff: ExponentialBackoff(time.Second), Sleep: recordingSleep(&delays)}

	attempts := 0
	err := policy.Do(context.Background(), func(context.Context, int) error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts, "should succeed on third attempt")
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
}

func TestRetryPolicy_AllAttemptsFail(t *testing.T) {
	var delays []time.Duration
	policy := RetryPolicy{MaxAttempts: 3, Backoff: ExponentialBackoff(time.Second), Sleep: recordingSleep(&delays)}
	expectedErr := errors.New("persistent error")

	attempts := 0
	err := policy.Do(context.Background(), func(context.Context, int) error {
		attempts++
		return expectedErr
	})

	require.Error(t, err)
	assert.Equal(t, expectedErr, err, "should return the last error")
	assert.Equal(t, 3, attempts, "should attempt exactly MaxAttempts times")
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays, "no sleep after the last attempt")
}

func TestRetryPolicy_Permanent(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, Sleep: recordingSleep(new([]time.Duration))}
	stop := errors.New("do not retry")

	attempts := 0
	err := policy.Do(context.Background(), func(context.Context, int) error {
		attempts++
		return Permanent(stop)
	})

	assert.Equal(t, stop, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryPolicy_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := RetryPolicy{MaxAttempts: 10, Backoff: ExponentialBackoff(time.Millisecond), Sleep: ContextSleep}

	attempts := 0
	err := policy.Do(ctx, func(context.Context, int) error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("error")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, attempts, "should stop when context is canceled")
}

func TestRetryPolicy_InvalidMaxAttempts(t *testing.T) {
	for _, n := range []int{0, -1} {
		attempts := 0
		err := RetryPolicy{MaxAttempts: n}.Do(context.Background(), func(context.Context, int) error {
			attempts++
			return nil
		})
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
		assert.Equal(t, 0, attempts)
	}
}

func TestExponentialBackoff(t *testing.T) {
	backoff := ExponentialBackoff(time.Second)

	assert.Equal(t, time.Second, backoff(1))
	assert.Equal(t, 2*time.Second, backoff(2))
	assert.Equal(t, 4*time.Second, backoff(3))
}

func TestDefaultRetryPolicy(t *testing.T) {
	policy := DefaultRetryPolicy()

	assert.Equal(t, 3, policy.MaxAttempts)
	assert.Equal(t, time.Second, policy.Backoff(1))
	assert.Equal(t, 2*time.Second, policy.Backoff(2))
	assert.NotNil(t, policy.Sleep)
}

func TestContextSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, ContextSleep(ctx, time.Hour), context.Canceled)
	assert.NoError(t, ContextSleep(context.Background(), time.Millisecond))
}
