package main

import "testing"

func TestCircleRectOverlap(t *testing.T) {
	// Center inside the rectangle
	if !circleRectOverlap(15, 15, 1, 10, 10, 10, 10) {
		t.Error("circle inside rect should overlap")
	}

	// Partially overlapping an edge
	if !circleRectOverlap(5, 15, 6, 10, 10, 10, 10) {
		t.Error("circle crossing left edge should overlap")
	}

	// Exactly touching does not count
	if circleRectOverlap(5, 15, 5, 10, 10, 10, 10) {
		t.Error("touching circle should not overlap")
	}

	// Near a corner but outside it
	if circleRectOverlap(5, 5, 5, 10, 10, 10, 10) {
		t.Error("circle outside the corner should not overlap")
	}
}

func TestCollisionGridDropship(t *testing.T) {
	g := NewCollisionGridForMap(&DropshipMap)

	// Crate at native (150,90) 40x30 is world (300,180)-(380,240)
	if !g.Overlaps(340, 210, PlayerRadius) {
		t.Error("expected overlap inside crate")
	}
	if g.Overlaps(276, 210, PlayerRadius) {
		t.Error("circle flush against crate should not overlap")
	}
	if !g.Overlaps(277, 210, PlayerRadius) {
		t.Error("circle 1 unit into crate should overlap")
	}
	if g.Overlaps(600, 400, PlayerRadius) {
		t.Error("open floor should be clear")
	}
	// Hull walls
	if !g.Overlaps(600, 20, PlayerRadius) {
		t.Error("upper hull should block")
	}
}

func TestCollisionGridScale(t *testing.T) {
	g := NewCollisionGrid([]Obstacle{{X: 10, Y: 10, Width: 10, Height: 10}}, 3, 100, 100)

	if !g.Overlaps(45, 45, 1) {
		t.Error("expected overlap at scaled rect center")
	}
	if g.Overlaps(15, 15, 1) {
		t.Error("native coordinates must be scaled before testing")
	}
}

func TestSpawnPointsAreClear(t *testing.T) {
	g := NewCollisionGridForMap(&DropshipMap)
	for _, sp := range DropshipMap.SpawnPoints {
		if g.Overlaps(sp.X, sp.Y, PlayerRadius) {
			t.Errorf("spawn point %d at (%v,%v) overlaps an obstacle", sp.ID, sp.X, sp.Y)
		}
	}
}
