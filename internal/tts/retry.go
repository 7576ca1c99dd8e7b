package tts

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
)

// Retry policy defaults
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second
	DefaultMaxJitter  = time.Second
)

// Retrier runs an operation with exponential backoff. Attempt n (1-based)
// that fails with a retriable SynthesisError is followed by a pause of
// BaseDelay*2^(n-1) plus a uniform jitter in [0, MaxJitter).
type Retrier struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxJitter  time.Duration

	// Sleep and Jitter are replaced in tests.
	Sleep  func(ctx context.Context, d time.Duration) error
	Jitter func(max time.Duration) time.Duration

	Logger *log.Logger
}

// NewRetrier returns a Retrier with the default policy.
func NewRetrier(logger *log.Logger) *Retrier {
	return &Retrier{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		MaxJitter:  DefaultMaxJitter,
		Logger:     logger,
	}
}

// Backoff returns the pause after the given failed attempt, without jitter.
func (r *Retrier) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return r.BaseDelay << (attempt - 1)
}

// Do calls fn until it succeeds, fails with a non-retriable error, or
// MaxRetries retries are used up. The error returned after giving up is
// the last one observed, as a *SynthesisError annotated with op and the
// number of attempts.
func (r *Retrier) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}
	total := max(r.MaxRetries, 0) + 1

	var lastErr error
	attempt := 1
	for ; attempt <= total; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			if attempt > 1 {
				logger.Debug("Succeeded after retry", "op", op, "attempt", attempt)
			}
			return nil
		}

		if attempt == total || !IsRetriable(lastErr) {
			break
		}

		delay := r.Backoff(attempt) + r.jitter()
		logger.Debug("Attempt failed, retrying",
			"op", op,
			"attempt", attempt,
			"of", total,
			"delay", delay.Round(time.Millisecond),
			"err", lastErr)

		if err := r.sleep(ctx, delay); err != nil {
			return errors.Join(err, annotate(lastErr, op, attempt))
		}
	}

	final := annotate(lastErr, op, attempt)
	logger.Error("Synthesis failed", "op", op, "attempts", final.Attempts, "err", lastErr)
	return final
}

func (r *Retrier) jitter() time.Duration {
	if r.MaxJitter <= 0 {
		return 0
	}
	if r.Jitter != nil {
		return r.Jitter(r.MaxJitter)
	}
	return rand.N(r.MaxJitter)
}

func (r *Retrier) sleep(ctx context.Context, d time.Duration) error {
	if r.Sleep != nil {
		return r.Sleep(ctx, d)
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

// annotate copies err into a SynthesisError carrying op and attempts.
func annotate(err error, op string, attempts int) *SynthesisError {
	var synthErr *SynthesisError
	if errors.As(err, &synthErr) {
		annotated := *synthErr
		annotated.Op = op
		annotated.Attempts = attempts
		return &annotated
	}
	return &SynthesisError{Op: op, Attempts: attempts, Err: err}
}
