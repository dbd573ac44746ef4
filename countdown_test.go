package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCue struct {
	plays, stops int
}

func (c *countingCue) Play() { c.plays++ }
func (c *countingCue) Stop() { c.stops++ }

func TestCountdownBeginTwiceDoesNotExtend(t *testing.T) {
	cue := &countingCue{}
	c := NewCountdown(cue)

	require.True(t, c.Begin())
	assert.Equal(t, CountdownCounting, c.Phase)
	assert.Equal(t, countdownDuration, c.Remaining)

	c.Advance(1)
	assert.False(t, c.Begin())
	assert.Equal(t, countdownDuration-1, c.Remaining)
	assert.Equal(t, 1, cue.plays)
}

func TestCountdownCancel(t *testing.T) {
	cue := &countingCue{}
	c := NewCountdown(cue)

	assert.False(t, c.Cancel(), "nothing to cancel while idle")
	c.Begin()
	assert.True(t, c.Cancel())
	assert.Equal(t, CountdownIdle, c.Phase)
	assert.Zero(t, c.Remaining)
	assert.Equal(t, 1, cue.stops)

	// Can start again after a cancel
	assert.True(t, c.Begin())
	assert.Equal(t, 2, cue.plays)
}

func TestCountdownCompletesOnce(t *testing.T) {
	c := NewCountdown(nil)
	c.Begin()

	assert.False(t, c.Advance(countdownDuration-0.1))
	assert.True(t, c.Advance(0.2))
	assert.Equal(t, CountdownComplete, c.Phase)
	assert.Zero(t, c.Remaining)

	assert.False(t, c.Advance(1), "completion fires once")
	assert.False(t, c.Begin(), "must be reset before a new countdown")

	c.Reset()
	assert.Equal(t, CountdownIdle, c.Phase)
	assert.True(t, c.Begin())
}

func TestCountdownAdvanceWhileIdle(t *testing.T) {
	c := NewCountdown(nil)
	assert.False(t, c.Advance(10))
	assert.Equal(t, CountdownIdle, c.Phase)
}

func TestCountdownSeconds(t *testing.T) {
	c := NewCountdown(nil)
	assert.Equal(t, 0, c.Seconds())
	c.Begin()
	assert.Equal(t, 5, c.Seconds())
	c.Advance(0.8)
	assert.Equal(t, 5, c.Seconds())
	c.Advance(1.0)
	assert.Equal(t, 4, c.Seconds())
}

func TestCountdownPhaseString(t *testing.T) {
	assert.Equal(t, "idle", CountdownIdle.String())
	assert.Equal(t, "counting", CountdownCounting.String())
	assert.Equal(t, "complete", CountdownComplete.String())
}
