// Package retry implements the bounded exponential backoff helper of
// spec §7.
package retry

import (
	"context"
	"time"

	"github.com/anortham/codesearch-mcp/internal/cserrors"
)

// Config bounds a retry loop.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultConfig is the spec's "bounded exponential backoff, <=3 attempts".
func DefaultConfig() Config {
	return Config{MaxAttempts: 3, BaseDelay: 50 * time.Millisecond, MaxDelay: 2 * time.Second}
}

// Do runs fn up to cfg.MaxAttempts times, doubling the delay between
// attempts (capped at cfg.MaxDelay), stopping early if ctx is done or fn
// returns an error classified under a cserrors kind other than
// KindTransient -- transient failures (timeouts, file-busy, cancellation)
// and errors carrying no kind at all are retried (see shouldRetry).
func Do(ctx context.Context, cfg Config, fn func() error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	delay := cfg.BaseDelay
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !shouldRetry(lastErr) || attempt == cfg.MaxAttempts {
			return lastErr
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
	return lastErr
}

// shouldRetry retries unknown errors (e.g. a plain os.Open failure with
// no taxonomy attached) and anything explicitly classified transient;
// input/resource/state/internal errors are never worth repeating.
func shouldRetry(err error) bool {
	kind := cserrors.KindOf(err)
	if kind == "" {
		return true
	}
	return kind == cserrors.KindTransient
}
