package main

// CountdownPhase is the lobby start-countdown state
type CountdownPhase int

const (
	CountdownIdle     CountdownPhase = 0
	CountdownCounting CountdownPhase = 1
	CountdownComplete CountdownPhase = 2
)

func (p CountdownPhase) String() string {
	switch p {
	case CountdownIdle:
		return "idle"
	case CountdownCounting:
		return "counting"
	case CountdownComplete:
		return "complete"
	}
	return "unknown"
}

// countdownDuration is how long the host's start countdown runs, in seconds
const countdownDuration = 5.0

// AudioCue plays the countdown sound
type AudioCue interface {
	Play()
	Stop()
}

// Countdown gates the transition from lobby to game
type Countdown struct {
	Phase     CountdownPhase
	Remaining float64
	cue       AudioCue
}

// NewCountdown creates an idle countdown. cue may be nil.
func NewCountdown(cue AudioCue) *Countdown {
	return &Countdown{cue: cue}
}

// Begin starts counting from Idle. Calling it again while counting does not
// restart or extend the countdown. Returns whether it started.
func (c *Countdown) Begin() bool {
	if c.Phase != CountdownIdle {
		return false
	}
	c.Phase = CountdownCounting
	c.Remaining = countdownDuration
	if c.cue != nil {
		c.cue.Play()
	}
	return true
}

// Cancel stops a running countdown. Returns whether one was running.
func (c *Countdown) Cancel() bool {
	if c.Phase != CountdownCounting {
		return false
	}
	c.Phase = CountdownIdle
	c.Remaining = 0
	if c.cue != nil {
		c.cue.Stop()
	}
	return true
}

// Advance runs the countdown for dt seconds. It returns true on the tick the
// countdown reaches zero; the phase is then Complete until Reset.
func (c *Countdown) Advance(dt float64) bool {
	if c.Phase != CountdownCounting {
		return false
	}
	c.Remaining -= dt
	if c.Remaining > 0 {
		return false
	}
	c.Remaining = 0
	c.Phase = CountdownComplete
	return true
}

// Reset returns to Idle without touching the audio cue
func (c *Countdown) Reset() {
	c.Phase = CountdownIdle
	c.Remaining = 0
}

// Seconds returns the remaining time rounded up to whole seconds for display
func (c *Countdown) Seconds() int {
	if c.Phase != CountdownCounting {
		return 0
	}
	s := int(c.Remaining)
	if float64(s) < c.Remaining {
		s++
	}
	return s
}
