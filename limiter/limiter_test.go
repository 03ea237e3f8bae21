package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestMulti(t *testing.T) {
	slow := rate.NewLimiter(Per(1, time.Minute), 1)
	fast := rate.NewLimiter(Per(10, time.Second), 1)

	l := Multi(fast, slow)
	assert.Equal(t, slow.Limit(), l.Limit())
	assert.NoError(t, l.Wait(context.Background()))

	assert.Equal(t, rate.Inf, Multi().Limit())
}

func TestFromConfig(t *testing.T) {
	assert.Nil(t, FromConfig(nil))
	assert.Nil(t, FromConfig([]LimitConfig{{EventCount: 0, EventDur: time.Second}}))

	l := FromConfig([]LimitConfig{
		{EventCount: 1, EventDur: time.Second},
		{EventCount: 20, EventDur: time.Minute},
	})
	require.NotNil(t, l)
	assert.Equal(t, Per(20, time.Minute), l.Limit())
}

func TestPolicyInterval(t *testing.T) {
	tests := []struct {
		step Step
		want time.Duration
	}{
		{step: StepAnswer, want: time.Second},
		{step: StepPage, want: 10 * time.Second},
		{step: StepTopic, want: 120 * time.Second},
		{step: Step(9), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.step.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultPolicy.Interval(tt.step))
		})
	}
}

func TestPacerWait(t *testing.T) {
	clock := clockwork.NewFakeClock()
	p := NewPacer(DefaultPolicy, clock)

	done := make(chan error, 1)
	go func() {
		done <- p.Wait(context.Background(), StepPage)
	}()

	clock.BlockUntil(1)
	select {
	case <-done:
		t.Fatal("Wait returned before the interval elapsed")
	default:
	}

	clock.Advance(10 * time.Second)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after the interval elapsed")
	}
	assert.Equal(t, 10*time.Second, p.Slept())
}

func TestPacerZeroInterval(t *testing.T) {
	p := NewPacer(Policy{}, clockwork.NewFakeClock())
	assert.NoError(t, p.Wait(context.Background(), StepTopic))
	assert.Zero(t, p.Slept())
}

func TestPacerCancel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	p := NewPacer(DefaultPolicy, clock)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- p.Wait(ctx, StepTopic)
	}()
	clock.BlockUntil(1)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Wait ignored cancellation")
	}
	assert.Zero(t, p.Slept())
}
