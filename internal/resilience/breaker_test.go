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

var errFail = errors.New("fail")

func fakeClock(b *Breaker) *time.Time {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	return &now
}

func TestBreaker_ClosedPassesThrough(t *testing.T) {
	t.Parallel()
	b := NewBreaker("maps.example.com", Config{})

	calls := 0
	v, err := Do(context.Background(), b, func(context.Context) (int, error) {
		calls++
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 1, calls)
	assert.Equal(t, Closed, b.State())
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	t.Parallel()
	b := NewBreaker("maps.example.com", Config{Threshold: 2, Cooldown: time.Minute})
	fakeClock(b)

	for range 2 {
		require.NoError(t, b.Allow())
		b.Record(errFail)
	}
	assert.Equal(t, Open, b.State())

	_, err := Do(context.Background(), b, func(context.Context) (int, error) {
		t.Error("should not be called when open")
		return 0, nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOpen))
	assert.Contains(t, err.Error(), "maps.example.com")
}

func TestBreaker_SuccessResetsCount(t *testing.T) {
	t.Parallel()
	b := NewBreaker("h", Config{Threshold: 2})

	b.Record(errFail)
	b.Record(nil)
	b.Record(errFail)
	assert.Equal(t, Closed, b.State())
}

func TestBreaker_NonTrippingErrorsIgnored(t *testing.T) {
	t.Parallel()
	b := NewBreaker("h", Config{Threshold: 1, Trips: func(err error) bool { return errors.Is(err, errFail) }})

	b.Record(errors.New("parse problem"))
	assert.Equal(t, Closed, b.State())

	b.Record(errFail)
	assert.Equal(t, Open, b.State())
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	t.Parallel()
	b := NewBreaker("h", Config{Threshold: 1, Cooldown: time.Minute})
	now := fakeClock(b)

	b.Record(errFail)
	require.Equal(t, Open, b.State())
	assert.Error(t, b.Allow())

	*now = now.Add(time.Minute)
	require.NoError(t, b.Allow())
	assert.Equal(t, HalfOpen, b.State())

	// Only one probe at a time.
	err := b.Allow()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOpen))

	b.Record(nil)
	assert.Equal(t, Closed, b.State())
	assert.NoError(t, b.Allow())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	t.Parallel()
	b := NewBreaker("h", Config{Threshold: 3, Cooldown: time.Minute})
	now := fakeClock(b)

	for range 3 {
		b.Record(errFail)
	}
	*now = now.Add(2 * time.Minute)
	require.NoError(t, b.Allow())

	b.Record(errFail)
	assert.Equal(t, Open, b.State())
	assert.Error(t, b.Allow())
}

func TestState_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "open", Open.String())
	assert.Equal(t, "half-open", HalfOpen.String())
	assert.Equal(t, "unknown", State(9).String())
}

func TestHostKey(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.Google.com/maps/place/Acme", "google.com"},
		{"https://maps.example.com:8443/x", "maps.example.com"},
		{" http://example.org ", "example.org"},
		{"not a url", "not a url"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HostKey(tt.in), tt.in)
	}
}

func TestHostBreakers_SharedPerHost(t *testing.T) {
	t.Parallel()
	h := NewHostBreakers(Config{Threshold: 1})

	a := h.For("https://www.google.com/maps/place/A")
	b := h.For("https://google.com/maps/place/B")
	c := h.For("https://example.com/reviews")
	assert.Same(t, a, b)
	assert.NotSame(t, a, c)

	a.Record(errFail)
	assert.Equal(t, Open, b.State())
	assert.Equal(t, Closed, c.State())
}

func TestHostBreakers_Concurrent(t *testing.T) {
	t.Parallel()
	h := NewHostBreakers(Config{Threshold: 1000})

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b := h.For("https://google.com/maps")
			if b.Allow() == nil {
				b.Record(errFail)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, Closed, h.For("https://google.com").State())
}
