package main

import "math/rand/v2"

// SpawnPoint is one of a map's fixed starting coordinates, in world units.
type SpawnPoint struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// SpawnAllocator hands out colors and spawn points that are not in use yet.
// When a pool is exhausted it falls back to a uniformly random entry from the
// full pool, so a full room degrades to duplicates instead of rejecting a join.
type SpawnAllocator struct {
	points []SpawnPoint
	intn   func(n int) int
}

// NewSpawnAllocator creates an allocator over the given spawn pool
func NewSpawnAllocator(points []SpawnPoint) *SpawnAllocator {
	return &SpawnAllocator{points: points, intn: rand.IntN}
}

// WithRand replaces the random source (tests use a seeded one)
func (a *SpawnAllocator) WithRand(intn func(n int) int) *SpawnAllocator {
	a.intn = intn
	return a
}

// AssignColor returns a palette index not present in used
func (a *SpawnAllocator) AssignColor(used map[int]bool) int {
	free := make([]int, 0, PaletteSize)
	for c := 0; c < PaletteSize; c++ {
		if !used[c] {
			free = append(free, c)
		}
	}
	if len(free) == 0 {
		return a.intn(PaletteSize)
	}
	return free[a.intn(len(free))]
}

// AssignSpawnPoint returns a spawn point whose ID is not present in used
func (a *SpawnAllocator) AssignSpawnPoint(used map[int]bool) SpawnPoint {
	if len(a.points) == 0 {
		return SpawnPoint{}
	}
	free := make([]SpawnPoint, 0, len(a.points))
	for _, sp := range a.points {
		if !used[sp.ID] {
			free = append(free, sp)
		}
	}
	if len(free) == 0 {
		return a.points[a.intn(len(a.points))]
	}
	return free[a.intn(len(free))]
}

// SpawnPoint returns the pool entry with the given id
func (a *SpawnAllocator) SpawnPoint(id int) (SpawnPoint, bool) {
	for _, sp := range a.points {
		if sp.ID == id {
			return sp, true
		}
	}
	return SpawnPoint{}, false
}
