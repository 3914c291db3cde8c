// Package retry provides a Generator decorator that applies the shared
// backoff policy to every generative model call.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driven"
	"github.com/custodia-labs/paperpilot/internal/logger"
)

// Ensure Generator implements the interface.
var _ driven.Generator = (*Generator)(nil)

// MaxDelay caps a single backoff wait.
const MaxDelay = time.Minute

// Policy configures retries for a generator.
type Policy struct {
	// MaxAttempts is the total number of calls, including the first (default: 3).
	MaxAttempts int

	// InitialDelay is the wait before the second attempt. Each later wait
	// doubles (default: 2s).
	InitialDelay time.Duration

	// Timeout bounds each individual attempt. Zero leaves it to the provider.
	Timeout time.Duration

	// RequestsPerMinute throttles attempts across callers. Zero disables it.
	RequestsPerMinute int
}

// PolicyFromSettings converts stored retry settings into a Policy.
func PolicyFromSettings(s domain.RetrySettings) Policy {
	return Policy{
		MaxAttempts:       s.MaxAttempts,
		InitialDelay:      s.InitialDelay,
		Timeout:           s.Timeout,
		RequestsPerMinute: s.RequestsPerMinute,
	}
}

// Generator wraps another Generator with retries, per-attempt timeouts
// and rate limiting.
type Generator struct {
	next        driven.Generator
	maxAttempts int
	timeout     time.Duration
	limiter     *rate.Limiter
	backoff     func() retry.Backoff
}

// New wraps next with the given policy.
func New(next driven.Generator, policy Policy) *Generator {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = domain.DefaultMaxAttempts
	}
	if policy.InitialDelay <= 0 {
		policy.InitialDelay = domain.DefaultInitialDelay
	}

	g := &Generator{
		next:        next,
		maxAttempts: policy.MaxAttempts,
		timeout:     policy.Timeout,
	}

	if policy.RequestsPerMinute > 0 {
		every := time.Minute / time.Duration(policy.RequestsPerMinute)
		g.limiter = rate.NewLimiter(rate.Every(every), 1)
	}

	delay := policy.InitialDelay
	retries := uint64(policy.MaxAttempts - 1)
	g.backoff = func() retry.Backoff {
		b := retry.NewExponential(delay)
		b = retry.WithCappedDuration(MaxDelay, b)
		return retry.WithMaxRetries(retries, b)
	}

	return g
}

// Generate calls the wrapped generator until it succeeds, fails with a
// non-retryable kind, or the attempt budget is spent. Exhaustion returns a
// GenerationError with Exhausted set; callers must not retry it.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		text     string
		attempts int
		last     *domain.GenerationError
	)

	err := retry.Do(ctx, g.backoff(), func(ctx context.Context) error {
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		attempts++
		out, err := g.attempt(ctx, prompt)
		if err == nil {
			text = out
			return nil
		}

		last = asGenerationError(err)
		last.Attempts = attempts
		if !last.Kind.Retryable() {
			logger.Debug("%s: %s failure, not retrying", g.next.ModelName(), last.Kind)
			return last
		}
		if attempts < g.maxAttempts {
			logger.Warn("%s: attempt %d/%d failed (%s), retrying", g.next.ModelName(), attempts, g.maxAttempts, last.Kind)
		}
		return retry.RetryableError(last)
	})

	switch {
	case err == nil:
		return text, nil
	case last == nil:
		return "", err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		if !errors.As(err, new(*domain.GenerationError)) {
			return "", domain.NewGenerationError(domain.FailureTimeout, err)
		}
	}

	if !last.Kind.Retryable() {
		return "", last
	}

	logger.Warn("%s: giving up after %d attempts (%s)", g.next.ModelName(), attempts, last.Kind)
	return "", &domain.GenerationError{
		Kind:      last.Kind,
		Attempts:  attempts,
		Exhausted: true,
		Err:       last.Err,
	}
}

// attempt runs one call under the per-attempt timeout.
func (g *Generator) attempt(ctx context.Context, prompt string) (string, error) {
	if g.timeout <= 0 {
		return g.next.Generate(ctx, prompt)
	}

	actx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	out, err := g.next.Generate(actx, prompt)
	if err != nil && ctx.Err() == nil && errors.Is(actx.Err(), context.DeadlineExceeded) {
		return "", domain.NewGenerationError(domain.FailureTimeout, err)
	}
	return out, err
}

// ModelName returns the wrapped generator's model name.
func (g *Generator) ModelName() string {
	return g.next.ModelName()
}

// Ping checks the wrapped generator without retrying.
func (g *Generator) Ping(ctx context.Context) error {
	return g.next.Ping(ctx)
}

// Close closes the wrapped generator.
func (g *Generator) Close() error {
	return g.next.Close()
}

// MaxAttempts returns the total attempt budget.
func (g *Generator) MaxAttempts() int {
	return g.maxAttempts
}

func asGenerationError(err error) *domain.GenerationError {
	var genErr *domain.GenerationError
	if errors.As(err, &genErr) {
		cp := *genErr
		return &cp
	}
	return &domain.GenerationError{Kind: domain.KindOf(err), Attempts: 1, Err: err}
}
