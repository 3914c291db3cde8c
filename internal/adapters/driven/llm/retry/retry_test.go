package retry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
)

// scriptedGenerator returns errs in order, then succeeds with "ok".
type scriptedGenerator struct {
	calls atomic.Int32
	errs  []error
	block bool
}

func (s *scriptedGenerator) Generate(ctx context.Context, _ string) (string, error) {
	n := int(s.calls.Add(1))
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if n <= len(s.errs) {
		return "", s.errs[n-1]
	}
	return "ok", nil
}

func (s *scriptedGenerator) ModelName() string            { return "scripted" }
func (s *scriptedGenerator) Ping(_ context.Context) error { return nil }
func (s *scriptedGenerator) Close() error                 { return nil }

func overloaded() error {
	return domain.NewGenerationError(domain.FailureOverloaded, errors.New("status 429"))
}

// countingBackoff wraps the generator's backoff and counts Next calls.
func countingBackoff(g *Generator, next *atomic.Int32) {
	inner := g.backoff
	g.backoff = func() retry.Backoff {
		b := inner()
		return retry.BackoffFunc(func() (time.Duration, bool) {
			next.Add(1)
			return b.Next()
		})
	}
}

func fastPolicy() Policy {
	return Policy{MaxAttempts: 3, InitialDelay: time.Millisecond}
}

func TestGenerate_SucceedsFirstTry(t *testing.T) {
	inner := &scriptedGenerator{}
	g := New(inner, fastPolicy())

	out, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(1), inner.calls.Load())
}

func TestGenerate_RecoversAfterTransientFailures(t *testing.T) {
	inner := &scriptedGenerator{errs: []error{overloaded(), errors.New("connection reset")}}
	g := New(inner, fastPolicy())

	out, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(3), inner.calls.Load())
}

func TestGenerate_ExhaustsAttempts(t *testing.T) {
	inner := &scriptedGenerator{errs: []error{overloaded(), overloaded(), overloaded(), overloaded()}}
	g := New(inner, fastPolicy())

	_, err := g.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.Equal(t, int32(3), inner.calls.Load())

	var genErr *domain.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.True(t, genErr.Exhausted)
	assert.Equal(t, 3, genErr.Attempts)
	assert.Equal(t, domain.FailureOverloaded, genErr.Kind)
	assert.ErrorIs(t, err, domain.ErrOverloaded)
	assert.Equal(t, domain.GuidanceTransient, domain.Guidance(err))
}

func TestGenerate_InvalidInputNotRetried(t *testing.T) {
	inner := &scriptedGenerator{errs: []error{
		domain.NewGenerationError(domain.FailureInvalidInput, errors.New("prompt too large")),
	}}
	g := New(inner, Policy{MaxAttempts: 3, InitialDelay: time.Hour})

	var nexts atomic.Int32
	countingBackoff(g, &nexts)

	start := time.Now()
	_, err := g.Generate(context.Background(), "prompt")
	require.Error(t, err)

	assert.Equal(t, int32(1), inner.calls.Load())
	assert.Equal(t, int32(0), nexts.Load())
	assert.Less(t, time.Since(start), time.Second)

	var genErr *domain.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.False(t, genErr.Exhausted)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, domain.GuidanceTooLarge, domain.Guidance(err))
}

func TestGenerate_BackoffCalledBetweenAttempts(t *testing.T) {
	inner := &scriptedGenerator{errs: []error{overloaded(), overloaded(), overloaded()}}
	g := New(inner, fastPolicy())

	var nexts atomic.Int32
	countingBackoff(g, &nexts)

	_, err := g.Generate(context.Background(), "prompt")
	require.Error(t, err)
	// Two waits between three attempts, then one refusal.
	assert.Equal(t, int32(3), nexts.Load())
}

func TestGenerate_BackoffDoubles(t *testing.T) {
	g := New(&scriptedGenerator{}, Policy{MaxAttempts: 4, InitialDelay: 2 * time.Second})

	b := g.backoff()
	var delays []time.Duration
	for {
		d, stop := b.Next()
		if stop {
			break
		}
		delays = append(delays, d)
	}
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}, delays)
}

func TestGenerate_PerAttemptTimeout(t *testing.T) {
	inner := &scriptedGenerator{block: true}
	g := New(inner, Policy{MaxAttempts: 2, InitialDelay: time.Millisecond, Timeout: 10 * time.Millisecond})

	_, err := g.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
	assert.ErrorIs(t, err, domain.ErrTimeout)

	var genErr *domain.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.True(t, genErr.Exhausted)
}

func TestGenerate_CancelledContext(t *testing.T) {
	inner := &scriptedGenerator{}
	g := New(inner, fastPolicy())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, "prompt")
	require.Error(t, err)
	assert.Equal(t, int32(0), inner.calls.Load())
}

func TestNew_Defaults(t *testing.T) {
	g := New(&scriptedGenerator{}, Policy{})
	assert.Equal(t, domain.DefaultMaxAttempts, g.MaxAttempts())
	assert.Nil(t, g.limiter)
	assert.Equal(t, "scripted", g.ModelName())

	limited := New(&scriptedGenerator{}, PolicyFromSettings(domain.RetrySettings{RequestsPerMinute: 60}))
	assert.NotNil(t, limited.limiter)
}
