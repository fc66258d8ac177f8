package resolver

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/tubetext/tubetext/internal/tube"
)

// attempt runs one strategy, optionally retrying transient failures with
// exponential backoff before giving up and falling back. Non-transient
// errors (no captions, bad input, cancelled request) never retry.
func (r *Resolver) attempt(ctx context.Context, strategy Strategy, id string) (string, error) {
	if r.cfg.TransientRetries <= 0 {
		return r.runAttempt(ctx, strategy, id)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second

	return backoff.Retry(ctx, func() (string, error) {
		text, err := r.runAttempt(ctx, strategy, id)
		if err != nil && !isTransient(err) {
			return "", backoff.Permanent(err)
		}
		return text, err
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(uint(r.cfg.TransientRetries+1)))
}

// isTransient reports whether an attempt failure is worth retrying:
// timeouts, connection errors and upstream rate limiting. A cancelled
// caller is not transient.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, tube.ErrTooManyRequests) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr)
}
