package main

import "testing"

func TestCameraFollowClamps(t *testing.T) {
	cam := NewCamera(1000, 500, 4000, 3000)

	cam.Follow(100, 100)
	if cam.OffsetX != 0 || cam.OffsetY != 0 {
		t.Errorf("expected offset clamped to (0,0), got (%v,%v)", cam.OffsetX, cam.OffsetY)
	}

	cam.Follow(2000, 1500)
	if cam.OffsetX != 1500 || cam.OffsetY != 1250 {
		t.Errorf("expected centered offset (1500,1250), got (%v,%v)", cam.OffsetX, cam.OffsetY)
	}

	cam.Follow(3990, 2990)
	if cam.OffsetX != 3000 || cam.OffsetY != 2500 {
		t.Errorf("expected offset clamped to (3000,2500), got (%v,%v)", cam.OffsetX, cam.OffsetY)
	}
}

func TestCameraSmallWorldIsCentered(t *testing.T) {
	w, h := DropshipMap.WorldSize()
	cam := NewCamera(1280, 720, w, h)

	cam.Follow(100, 600)
	wantX, wantY := (w-1280)/2, (h-720)/2
	if cam.OffsetX != wantX || cam.OffsetY != wantY {
		t.Errorf("expected (%v,%v), got (%v,%v)", wantX, wantY, cam.OffsetX, cam.OffsetY)
	}
}

func TestCameraToScreen(t *testing.T) {
	cam := NewCamera(1000, 500, 4000, 3000)
	cam.Follow(2000, 1500)

	sx, sy := cam.ToScreen(2000, 1500)
	if sx != 500 || sy != 250 {
		t.Errorf("followed point should be at view center, got (%v,%v)", sx, sy)
	}
}
