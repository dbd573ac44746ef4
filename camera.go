package main

// Camera keeps the local player centered in a viewport, without showing
// anything past the map edges.
type Camera struct {
	ViewW, ViewH   float64
	WorldW, WorldH float64
	OffsetX        float64
	OffsetY        float64
}

// NewCamera creates a camera for a viewport over a world
func NewCamera(viewW, viewH, worldW, worldH float64) *Camera {
	return &Camera{ViewW: viewW, ViewH: viewH, WorldW: worldW, WorldH: worldH}
}

// Follow recenters the view on (x, y). On an axis where the world is smaller
// than the viewport the world is centered instead.
func (c *Camera) Follow(x, y float64) {
	c.OffsetX = followAxis(x, c.ViewW, c.WorldW)
	c.OffsetY = followAxis(y, c.ViewH, c.WorldH)
}

func followAxis(pos, view, world float64) float64 {
	if world <= view {
		return (world - view) / 2
	}
	return Clamp(pos-view/2, 0, world-view)
}

// ToScreen converts world coordinates into viewport coordinates
func (c *Camera) ToScreen(x, y float64) (float64, float64) {
	return x - c.OffsetX, y - c.OffsetY
}
