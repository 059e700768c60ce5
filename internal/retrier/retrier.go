// Package retrier implements bounded retry with exponential backoff for
// network-backed drivers. Only failures the classifier marks transient are
// retried; everything else surfaces immediately.
package retrier

import (
	"context"
	"log/slog"
	"time"
)

// Classifier reports whether an error is transient and worth retrying.
// Permission and not-found failures must never be classified transient.
type Classifier func(err error) bool

// Retrier runs operations with bounded retries and exponential backoff.
// The zero value is unusable; use New.
type Retrier struct {
	attempts  int
	delay     time.Duration
	maxDelay  time.Duration
	transient Classifier

	// OnRetry runs between a transient failure and the next attempt.
	// Drivers use it to reconnect.
	OnRetry func(err error)
}

// New creates a Retrier making at most attempts tries, waiting delay before
// the second try and growing the wait by half each time, capped at 10s.
func New(attempts int, delay time.Duration, transient Classifier) *Retrier {
	if attempts < 1 {
		attempts = 1
	}
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	return &Retrier{
		attempts:  attempts,
		delay:     delay,
		maxDelay:  10 * time.Second,
		transient: transient,
	}
}

// Do runs fn until it succeeds, fails non-transiently, the attempt budget is
// spent, or ctx is done.
func (r *Retrier) Do(ctx context.Context, op string, fn func() error) error {
	delay := r.delay
	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !r.transient(err) {
			return err
		}
		if attempt == r.attempts {
			break
		}

		slog.Debug("retrying after transient failure",
			"op", op, "attempt", attempt, "delay", delay, "err", err)

		if r.OnRetry != nil {
			r.OnRetry(err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay += delay / 2
		if delay > r.maxDelay {
			delay = r.maxDelay
		}
	}
	return err
}
