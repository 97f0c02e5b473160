package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = NewTransientError(errors.New("upstream 503"), 503)

func failN(t *testing.T, b *Breaker, n int, err error) {
	t.Helper()
	for i := 0; i < n; i++ {
		_ = b.Do(context.Background(), func(context.Context) error { return err })
	}
}

func TestBreaker_ClosedPassesThrough(t *testing.T) {
	b := NewBreaker(DefaultBreakerConfig("llm"))

	calls := 0
	err := b.Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, Closed, b.State())
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "llm", FailureThreshold: 3, ResetTimeout: time.Minute})

	failN(t, b, 3, errUpstream)
	assert.Equal(t, Open, b.State())

	err := b.Do(context.Background(), func(context.Context) error {
		t.Error("fn must not run while open")
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestBreaker_NonTransientErrorsDoNotTrip(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "llm", FailureThreshold: 2, ResetTimeout: time.Minute})

	failN(t, b, 5, errors.New("invalid request"))
	assert.Equal(t, Closed, b.State())
	assert.Equal(t, 0, b.Failures())
}

func TestBreaker_CancellationDoesNotTrip(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "llm", FailureThreshold: 1, ResetTimeout: time.Minute})

	failN(t, b, 3, context.Canceled)
	assert.Equal(t, Closed, b.State())
}

func TestBreaker_SuccessResetsCount(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "llm", FailureThreshold: 3, ResetTimeout: time.Minute})

	failN(t, b, 2, errUpstream)
	assert.Equal(t, 2, b.Failures())

	require.NoError(t, b.Do(context.Background(), func(context.Context) error { return nil }))
	assert.Equal(t, 0, b.Failures())
	assert.Equal(t, Closed, b.State())
}

func TestBreaker_HalfOpenProbeCloses(t *testing.T) {
	now := time.Now()
	b := NewBreaker(BreakerConfig{Name: "llm", FailureThreshold: 2, ResetTimeout: time.Second})
	b.nowFunc = func() time.Time { return now }

	failN(t, b, 2, errUpstream)
	require.Equal(t, Open, b.State())

	b.nowFunc = func() time.Time { return now.Add(2 * time.Second) }
	assert.Equal(t, HalfOpen, b.State())

	require.NoError(t, b.Do(context.Background(), func(context.Context) error { return nil }))
	assert.Equal(t, Closed, b.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	b := NewBreaker(BreakerConfig{Name: "llm", FailureThreshold: 2, ResetTimeout: time.Second})
	b.nowFunc = func() time.Time { return now }

	failN(t, b, 2, errUpstream)

	later := now.Add(2 * time.Second)
	b.nowFunc = func() time.Time { return later }
	failN(t, b, 1, errUpstream)

	assert.Equal(t, Open, b.State())
	err := b.Do(context.Background(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestBreaker_HalfOpenAllowsOneProbe(t *testing.T) {
	now := time.Now()
	b := NewBreaker(BreakerConfig{Name: "llm", FailureThreshold: 1, ResetTimeout: time.Second})
	b.nowFunc = func() time.Time { return now }
	failN(t, b, 1, errUpstream)
	b.nowFunc = func() time.Time { return now.Add(2 * time.Second) }

	inProbe := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- b.Do(context.Background(), func(context.Context) error {
			close(inProbe)
			<-release
			return nil
		})
	}()

	<-inProbe
	err := b.Do(context.Background(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, Closed, b.State())
}

func TestBreaker_OnStateChange(t *testing.T) {
	var transitions [][2]State
	b := NewBreaker(BreakerConfig{
		Name:             "llm",
		FailureThreshold: 2,
		ResetTimeout:     time.Minute,
		OnStateChange: func(from, to State) {
			transitions = append(transitions, [2]State{from, to})
		},
	})

	failN(t, b, 2, errUpstream)
	b.Reset()

	assert.Equal(t, [][2]State{{Closed, Open}, {Open, Closed}}, transitions)
}

func TestBreaker_CustomShouldTrip(t *testing.T) {
	b := NewBreaker(BreakerConfig{
		Name:             "llm",
		FailureThreshold: 1,
		ResetTimeout:     time.Minute,
		ShouldTrip:       func(err error) bool { return err.Error() == "trip" },
	})

	failN(t, b, 3, errors.New("ignore"))
	assert.Equal(t, Closed, b.State())

	failN(t, b, 1, errors.New("trip"))
	assert.Equal(t, Open, b.State())
}

func TestBreaker_Reset(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "llm", FailureThreshold: 1, ResetTimeout: time.Hour})
	failN(t, b, 1, errUpstream)
	require.Equal(t, Open, b.State())

	b.Reset()
	assert.Equal(t, Closed, b.State())
	assert.NoError(t, b.Do(context.Background(), func(context.Context) error { return nil }))
}

func TestBreaker_ConcurrentAccess(t *testing.T) {
	t.Parallel()
	b := NewBreaker(BreakerConfig{Name: "llm", FailureThreshold: 1000, ResetTimeout: time.Minute})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Do(context.Background(), func(context.Context) error {
				if i%2 == 0 {
					return errUpstream
				}
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, Closed, b.State())
}

func TestCall_ReturnsValue(t *testing.T) {
	b := NewBreaker(DefaultBreakerConfig("llm"))

	val, err := Call(context.Background(), b, func(context.Context) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
}

func TestCall_OpenReturnsZero(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "llm", FailureThreshold: 1, ResetTimeout: time.Hour})
	failN(t, b, 1, errUpstream)

	val, err := Call(context.Background(), b, func(context.Context) (int, error) {
		return 42, nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Zero(t, val)
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig("llm", 7, 12)
	assert.Equal(t, "llm", cfg.Name)
	assert.Equal(t, 7, cfg.FailureThreshold)
	assert.Equal(t, 12*time.Second, cfg.ResetTimeout)

	def := FromConfig("llm", 0, -1)
	assert.Equal(t, 5, def.FailureThreshold)
	assert.Equal(t, 30*time.Second, def.ResetTimeout)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "open", Open.String())
	assert.Equal(t, "half-open", HalfOpen.String())
	assert.Equal(t, "unknown", State(99).String())
}
