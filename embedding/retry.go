// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package embedding

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// RetryPolicy controls how many times an operation is attempted and how long
// to wait between attempts.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// Backoff returns the delay after the given failed attempt (1-based).
	Backoff func(attempt int) time.Duration
	// Sleep performs the wait. Tests replace it to avoid real delays.
	Sleep SleepFunc
}

// DefaultRetryPolicy makes 3 attempts, waiting 1s then 2s between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     ExponentialBackoff(time.Second),
		Sleep:       ContextSleep,
	}
}

// ExponentialBackoff returns base * 2^(attempt-1).
func ExponentialBackoff(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		delay := base
		for i := 1; i < attempt; i++ {
			delay *= 2
		}
		return delay
	}
}

// ContextSleep sleeps for d, returning early with ctx.Err() on cancellation.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Do returns the wrapped error as is.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs operation until it succeeds, returns a permanent error, the context
// ends, or the policy's attempts are used up. The last error is returned.
func (p RetryPolicy) Do(ctx context.Context, operation func(ctx context.Context, attempt int) error) error {
	if p.MaxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}
	backoff := p.Backoff
	if backoff == nil {
		backoff = ExponentialBackoff(time.Second)
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = ContextSleep
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = operation(ctx, attempt)
		if lastErr == nil {
			if attempt > 1 {
				slog.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return nil
		}

		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return perm.err
		}

		if attempt == p.MaxAttempts {
			break
		}

		delay := backoff(attempt)
		slog.Warn("operation failed, will retry",
			"attempt", attempt,
			"maxAttempts", p.MaxAttempts,
			"retryIn", delay,
			"err", lastErr)

		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}

	return lastErr
}
