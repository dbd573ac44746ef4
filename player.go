package main

import "math"

const (
	PlayerRadius = 24.0  // world units, collision circle
	PlayerSpeed  = 200.0 // world units/s
	maxNameLen   = 16
	defaultName  = "Player"
)

// Control tells whether a player is driven by this process or mirrored from the network.
// It is one of *LocalControl or RemoteControl.
type Control interface {
	isControl()
}

// LocalControl carries the input state of the player this process owns
type LocalControl struct {
	Input MoveInput
}

func (*LocalControl) isControl() {}

// RemoteControl marks a player whose state arrives from the network
type RemoteControl struct{}

func (RemoteControl) isControl() {}

// Player is a participant standing in the lobby
type Player struct {
	ID         string
	Name       string
	X, Y       float64
	VX, VY     float64 // unit intent, zero when idle
	Color      int
	Control    Control
	FacingLeft bool
	Moving     bool
	Anim       Animator
	Dead       bool
	InVent     bool
	HasTask    bool
	SpawnID    int
}

// IsLocal reports whether this process controls the player
func (p *Player) IsLocal() bool {
	_, ok := p.Control.(*LocalControl)
	return ok
}

// Radius is the collision radius in world units
func (p *Player) Radius() float64 {
	return PlayerRadius
}

// ToState converts to protocol state
func (p *Player) ToState() PlayerState {
	return PlayerState{
		ID:         p.ID,
		Name:       p.Name,
		X:          round1(p.X),
		Y:          round1(p.Y),
		Color:      p.Color,
		Moving:     p.Moving,
		FacingLeft: p.FacingLeft,
		Anim:       p.Anim.State.String(),
	}
}

// positionUpdate is what the local player sends after a tick
func (p *Player) positionUpdate() PositionUpdate {
	return PositionUpdate{
		ID:         p.ID,
		X:          p.X,
		Y:          p.Y,
		VX:         p.VX,
		VY:         p.VY,
		Moving:     p.Moving,
		FacingLeft: p.FacingLeft,
	}
}

func sanitizeName(name string) string {
	if name == "" {
		return defaultName
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	return name
}

func validPosition(x, y *float64) bool {
	return x != nil && y != nil && isFinite(*x) && isFinite(*y) && math.Abs(*x) < 1e7 && math.Abs(*y) < 1e7
}
