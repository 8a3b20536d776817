package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/kcgrab/kcgrab/pkg/logger"
)

type Config struct {
	MaxRetries uint64
	Interval   time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		Interval:   5 * time.Second,
	}
}

// Do runs the operation with a fixed-interval retry policy. Wrap terminal
// errors with Permanent to stop retrying early.
func Do(ctx context.Context, log logger.Logger, operationName string, operation func() error, cfg Config) error {
	bo := backoff.NewConstantBackOff(cfg.Interval)

	retryable := backoff.WithMaxRetries(bo, cfg.MaxRetries)
	retryableWithContext := backoff.WithContext(retryable, ctx)

	notify := func(err error, t time.Duration) {
		log.Warn(
			"Operation failed, retrying...",
			"operation", operationName,
			"error", err,
			"next_attempt_in", t.Round(time.Millisecond).String(),
		)
	}

	return backoff.RetryNotify(operation, retryableWithContext, notify)
}

// Permanent marks an error as non-retryable for Do.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}
