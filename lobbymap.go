package main

// LobbyMap describes the static pre-game room: its obstacles in map-native
// units, the uniform scale to world units, and the spawn pool in world units.
type LobbyMap struct {
	Name        string
	Width       float64 // native units
	Height      float64 // native units
	Scale       float64
	Obstacles   []Obstacle
	SpawnPoints []SpawnPoint
}

// WorldSize returns the map extent in world units
func (m *LobbyMap) WorldSize() (float64, float64) {
	return m.Width * m.Scale, m.Height * m.Scale
}

// DropshipMap is the default lobby: a hull with walls along the edges and a
// few crates and benches in the middle of the floor.
var DropshipMap = LobbyMap{
	Name:   "dropship",
	Width:  600,
	Height: 350,
	Scale:  2,
	Obstacles: []Obstacle{
		{X: 0, Y: 0, Width: 600, Height: 40},    // upper hull
		{X: 0, Y: 320, Width: 600, Height: 30},  // lower hull
		{X: 0, Y: 40, Width: 40, Height: 280},   // engines
		{X: 560, Y: 40, Width: 40, Height: 280}, // cockpit
		{X: 150, Y: 90, Width: 40, Height: 30},  // crate
		{X: 400, Y: 220, Width: 50, Height: 30}, // crate
		{X: 260, Y: 270, Width: 80, Height: 20}, // bench
	},
	SpawnPoints: []SpawnPoint{
		{ID: 1, X: 250, Y: 330},
		{ID: 2, X: 400, Y: 330},
		{ID: 3, X: 550, Y: 330},
		{ID: 4, X: 700, Y: 330},
		{ID: 5, X: 850, Y: 330},
		{ID: 6, X: 250, Y: 420},
		{ID: 7, X: 400, Y: 420},
		{ID: 8, X: 550, Y: 420},
		{ID: 9, X: 700, Y: 420},
		{ID: 10, X: 950, Y: 420},
	},
}
