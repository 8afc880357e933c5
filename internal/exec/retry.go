package exec

import (
	"context"

	"github.com/cenkalti/backoff/v4"

	"github.com/felixgeelhaar/ananke/internal/errors"
	"github.com/felixgeelhaar/ananke/internal/log"
	"github.com/felixgeelhaar/ananke/internal/telemetry"
)

// RetryRunner repeats Retryable commands with exponential backoff. Commands
// that could not be spawned are never retried.
type RetryRunner struct {
	Next       Runner
	MaxRetries uint64
	Logger     *log.Logger
	// NewBackOff overrides the backoff policy; tests use a zero backoff.
	NewBackOff func() backoff.BackOff
}

// Run executes cmd through Next, retrying failures of retryable commands.
func (r *RetryRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if !cmd.Retryable || r.MaxRetries == 0 {
		return r.Next.Run(ctx, cmd)
	}

	var (
		result  *Result
		attempt int
	)
	operation := func() error {
		attempt++
		var err error
		result, err = r.Next.Run(ctx, cmd)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || errors.HasCode(err, errors.ErrCodeProcessSpawn) {
			return backoff.Permanent(err)
		}
		if uint64(attempt) <= r.MaxRetries {
			telemetry.RecordRetry(ctx, cmd.Name)
			if r.Logger != nil {
				r.Logger.WarnContext(ctx, "command failed, retrying", "command", cmd.String(), "attempt", attempt, "error", err)
			}
		}
		return err
	}

	b := r.backOff()
	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, r.MaxRetries), ctx))
	return result, err
}

func (r *RetryRunner) backOff() backoff.BackOff {
	if r.NewBackOff != nil {
		return r.NewBackOff()
	}
	return backoff.NewExponentialBackOff()
}
