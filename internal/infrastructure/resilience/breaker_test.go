package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFeed = errors.New("feed unreachable")

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(c *clock, transitions *[]string) *Breaker {
	return New("opkg-feed", Settings{
		Threshold: 2,
		Cooldown:  time.Minute,
		Now:       c.now,
		OnStateChange: func(_ string, from, to State) {
			*transitions = append(*transitions, from.String()+"->"+to.String())
		},
	})
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	c := &clock{t: time.Unix(0, 0)}
	var transitions []string
	b := newTestBreaker(c, &transitions)

	fail := func() error { return errFeed }
	assert.ErrorIs(t, b.Call(fail), errFeed)
	assert.Equal(t, StateClosed, b.State())
	assert.ErrorIs(t, b.Call(fail), errFeed)
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Call(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
	assert.Equal(t, []string{"closed->open"}, transitions)
}

func TestBreakerSuccessResetsFailures(t *testing.T) {
	c := &clock{t: time.Unix(0, 0)}
	var transitions []string
	b := newTestBreaker(c, &transitions)

	_ = b.Call(func() error { return errFeed })
	require.NoError(t, b.Call(func() error { return nil }))
	_ = b.Call(func() error { return errFeed })
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerHalfOpenTrial(t *testing.T) {
	c := &clock{t: time.Unix(0, 0)}
	var transitions []string
	b := newTestBreaker(c, &transitions)

	_ = b.Call(func() error { return errFeed })
	_ = b.Call(func() error { return errFeed })
	c.advance(time.Minute)
	assert.Equal(t, StateHalfOpen, b.State())

	// A failed trial reopens immediately.
	assert.ErrorIs(t, b.Call(func() error { return errFeed }), errFeed)
	assert.Equal(t, StateOpen, b.State())

	c.advance(time.Minute)
	require.NoError(t, b.Call(func() error { return nil }))
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, []string{
		"closed->open", "open->half-open", "half-open->open",
		"open->half-open", "half-open->closed",
	}, transitions)
}

func TestBreakerSingleTrial(t *testing.T) {
	c := &clock{t: time.Unix(0, 0)}
	var transitions []string
	b := newTestBreaker(c, &transitions)
	_ = b.Call(func() error { return errFeed })
	_ = b.Call(func() error { return errFeed })
	c.advance(time.Minute)

	err := b.Call(func() error {
		// A second caller during the trial is refused.
		assert.ErrorIs(t, b.Call(func() error { return nil }), ErrCircuitOpen)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateClosed, b.State())
}

func TestNilBreakerCalls(t *testing.T) {
	var b *Breaker
	called := false
	require.NoError(t, b.Call(func() error { called = true; return nil }))
	assert.True(t, called)
}
