package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy describes a bounded retry with exponential backoff: BaseDelay, 2*BaseDelay, 4*BaseDelay...
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Default mirrors the mail retry schedule: 3 attempts, waiting 1s then 2s.
var Default = Policy{MaxAttempts: 3, BaseDelay: time.Second}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	if p.MaxAttempts <= 32 {
		b.MaxInterval = p.BaseDelay << uint(p.MaxAttempts)
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1)), ctx)
}

// Do calls fn until it succeeds, the attempts are exhausted or ctx is done.
func Do(ctx context.Context, p Policy, name string, fn func(ctx context.Context) error) error {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}

	attempt := 0
	var lastErr error
	err := backoff.Retry(func() error {
		attempt++
		err := fn(ctx)
		if err != nil {
			lastErr = err
			slog.Error("Operation failed",
				"operation", name,
				"attempt", attempt,
				"max_attempts", p.MaxAttempts,
				"error", err,
			)
		}
		return err
	}, p.backOff(ctx))

	if err == nil {
		if attempt > 1 {
			slog.Info("Operation succeeded after retry", "operation", name, "attempt", attempt)
		}
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w (last error: %v)", name, ctxErr, lastErr)
	}
	return fmt.Errorf("%s failed after %d attempts: %w", name, attempt, lastErr)
}
