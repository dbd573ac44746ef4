package main

// Obstacle is an axis-aligned rectangle in map-native units
type Obstacle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CollisionGrid answers circle-vs-obstacle queries for one map. Obstacles
// keep their native coordinates; the map scale is applied per query.
type CollisionGrid struct {
	obstacles []Obstacle
	scale     float64
	index     *SpatialGrid
}

// NewCollisionGrid indexes the obstacles of a map. The grid is immutable
// afterwards and safe for concurrent readers.
func NewCollisionGrid(obstacles []Obstacle, scale, worldW, worldH float64) *CollisionGrid {
	if scale <= 0 {
		scale = 1
	}
	g := &CollisionGrid{
		obstacles: append([]Obstacle(nil), obstacles...),
		scale:     scale,
		index:     NewSpatialGrid(worldW, worldH, SpatialCellSize),
	}
	for i, o := range g.obstacles {
		g.index.InsertRect(o.X*scale, o.Y*scale, (o.X+o.Width)*scale, (o.Y+o.Height)*scale, i)
	}
	return g
}

// NewCollisionGridForMap builds the grid for a lobby map
func NewCollisionGridForMap(m *LobbyMap) *CollisionGrid {
	w, h := m.WorldSize()
	return NewCollisionGrid(m.Obstacles, m.Scale, w, h)
}

// Overlaps reports whether a circle at (cx, cy) touches the interior of any obstacle
func (g *CollisionGrid) Overlaps(cx, cy, radius float64) bool {
	var stack [32]int
	for _, i := range g.index.QueryBuf(cx, cy, radius, stack[:0]) {
		o := g.obstacles[i]
		if circleRectOverlap(cx, cy, radius, o.X*g.scale, o.Y*g.scale, o.Width*g.scale, o.Height*g.scale) {
			return true
		}
	}
	return false
}

// circleRectOverlap is the closest-point circle vs AABB test. Touching edges
// do not count, which lets a circle slide flush along a wall.
func circleRectOverlap(cx, cy, radius, x, y, w, h float64) bool {
	closestX := Clamp(cx, x, x+w)
	closestY := Clamp(cy, y, y+h)
	dx := cx - closestX
	dy := cy - closestY
	return dx*dx+dy*dy < radius*radius
}
