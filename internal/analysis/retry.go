package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultMaxAttempts is the number of times the analysis sequence runs
	// before falling back.
	DefaultMaxAttempts = 3

	// DefaultRetryDelay is the pause after a failed attempt.
	DefaultRetryDelay = 2 * time.Second

	// DefaultLoadingDelay is the pause after the model reported it is still
	// loading.
	DefaultLoadingDelay = 3 * time.Second
)

// RetryPolicy runs an operation up to MaxAttempts times, pausing between
// attempts. Zero fields take the package defaults.
type RetryPolicy struct {
	MaxAttempts  int
	Delay        time.Duration
	LoadingDelay time.Duration

	// Sleep waits for d or until ctx is done. Nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy returns three attempts with a 2s pause, 3s when the
// model is loading.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  DefaultMaxAttempts,
		Delay:        DefaultRetryDelay,
		LoadingDelay: DefaultLoadingDelay,
	}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.Delay == 0 {
		p.Delay = DefaultRetryDelay
	}
	if p.LoadingDelay == 0 {
		p.LoadingDelay = DefaultLoadingDelay
	}
	if p.Sleep == nil {
		p.Sleep = sleepContext
	}
	return p
}

// DelayFor returns the pause that follows a failure with err.
func (p RetryPolicy) DelayFor(err error) time.Duration {
	p = p.withDefaults()
	if errors.Is(err, ErrModelLoading) {
		return p.LoadingDelay
	}
	return p.Delay
}

// Do calls fn until it succeeds, the attempts run out, or ctx is done. It
// returns nil on success and otherwise the last error from fn, or the
// context error if ctx ended during a pause. Attempts are numbered from 1.
func (p RetryPolicy) Do(ctx context.Context, log zerolog.Logger, fn func(ctx context.Context, attempt int) error) error {
	p = p.withDefaults()

	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		log.Info().Int("attempt", attempt).Msg("Running analysis attempt")

		err = fn(ctx, attempt)
		if err == nil {
			return nil
		}
		if attempt == p.MaxAttempts {
			break
		}

		delay := p.DelayFor(err)
		event := log.Warn().Err(err).Int("attempt", attempt).Dur("delay", delay)
		if errors.Is(err, ErrModelLoading) {
			event.Msg("Model is loading, waiting before retry")
		} else {
			event.Msg("Attempt failed, retrying")
		}

		if sleepErr := p.Sleep(ctx, delay); sleepErr != nil {
			return sleepErr
		}
	}
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
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
