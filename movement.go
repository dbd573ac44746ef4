package main

import "math"

// boundsMargin keeps players this far inside the map edge
const boundsMargin = 10.0

// MoveInput is the state of the four direction keys
type MoveInput struct {
	Up    bool `json:"up"`
	Down  bool `json:"down"`
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

// Direction returns the unit intent vector; diagonals are normalized and
// opposite keys cancel out.
func (in MoveInput) Direction() (float64, float64) {
	var dx, dy float64
	if in.Left {
		dx--
	}
	if in.Right {
		dx++
	}
	if in.Up {
		dy--
	}
	if in.Down {
		dy++
	}
	if dx != 0 && dy != 0 {
		dx *= math.Sqrt2 / 2
		dy *= math.Sqrt2 / 2
	}
	return dx, dy
}

// MovementController integrates local input against a map's obstacles
type MovementController struct {
	grid   *CollisionGrid
	speed  float64
	radius float64
	minX   float64
	minY   float64
	maxX   float64
	maxY   float64
}

// NewMovementController creates a controller for a worldW x worldH map.
// grid may be nil for an empty room.
func NewMovementController(grid *CollisionGrid, worldW, worldH float64) *MovementController {
	return &MovementController{
		grid:   grid,
		speed:  PlayerSpeed,
		radius: PlayerRadius,
		minX:   boundsMargin,
		minY:   boundsMargin,
		maxX:   worldW - boundsMargin,
		maxY:   worldH - boundsMargin,
	}
}

func (m *MovementController) blocked(x, y float64) bool {
	return m.grid != nil && m.grid.Overlaps(x, y, m.radius)
}

// Placeable reports whether a player may stand at (x, y): inside the
// movement bounds and clear of every obstacle.
func (m *MovementController) Placeable(x, y float64) bool {
	return x >= m.minX && x <= m.maxX && y >= m.minY && y <= m.maxY && !m.blocked(x, y)
}

// Step moves p by one tick of input. Each axis is resolved on its own so a
// player pushing diagonally into a wall slides along it. Returns whether the
// committed position changed.
func (m *MovementController) Step(p *Player, in MoveInput, dt float64) bool {
	dx, dy := in.Direction()
	p.VX, p.VY = dx, dy
	p.Moving = dx != 0 || dy != 0
	if dx < 0 {
		p.FacingLeft = true
	} else if dx > 0 {
		p.FacingLeft = false
	}
	if !p.Moving || dt <= 0 {
		return false
	}

	oldX, oldY := p.X, p.Y
	newX := oldX + dx*m.speed*dt
	newY := oldY + dy*m.speed*dt

	x := oldX
	if dx != 0 && !m.blocked(newX, oldY) {
		x = newX
	}
	y := oldY
	if dy != 0 && !m.blocked(x, newY) {
		y = newY
	}

	cx := Clamp(x, m.minX, m.maxX)
	cy := Clamp(y, m.minY, m.maxY)
	if (cx != x || cy != y) && m.blocked(cx, cy) {
		// the clamp pushed us into something; stay put this tick
		cx, cy = oldX, oldY
	}

	p.X, p.Y = cx, cy
	return cx != oldX || cy != oldY
}
