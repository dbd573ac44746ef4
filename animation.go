package main

// AnimState is the per-player animation state
type AnimState int

const (
	AnimSpawning AnimState = iota
	AnimIdle
	AnimWalking
)

func (s AnimState) String() string {
	switch s {
	case AnimSpawning:
		return "spawning"
	case AnimIdle:
		return "idle"
	case AnimWalking:
		return "walking"
	}
	return "unknown"
}

const (
	spawnFrameCount    = 10
	spawnFrameDelay    = 0.07 // seconds per spawn frame
	walkFrameDelay     = 0.1  // seconds per walk frame
	remoteTickDuration = 1.0 / 60.0
)

// walkFrames is the order the walk sheet is played in
var walkFrames = [...]int{0, 1, 2, 3}

// Animator drives the frame index of one player
type Animator struct {
	State   AnimState
	Frame   int
	Elapsed float64
	step    int // position in walkFrames
}

// Spawn restarts the spawn cycle
func (a *Animator) Spawn() {
	*a = Animator{State: AnimSpawning}
}

// Spawning reports whether the spawn cycle is still playing
func (a *Animator) Spawning() bool {
	return a.State == AnimSpawning
}

// Tick advances the animation by dt seconds. moving is ignored while spawning.
func (a *Animator) Tick(dt float64, moving bool) {
	if dt < 0 {
		dt = 0
	}
	switch a.State {
	case AnimSpawning:
		a.Elapsed += dt
		for a.Elapsed >= spawnFrameDelay {
			a.Elapsed -= spawnFrameDelay
			a.Frame++
			if a.Frame >= spawnFrameCount {
				*a = Animator{State: AnimIdle}
				return
			}
		}
	case AnimIdle, AnimWalking:
		if !moving {
			*a = Animator{State: AnimIdle}
			return
		}
		if a.State != AnimWalking {
			*a = Animator{State: AnimWalking, Frame: walkFrames[0]}
		}
		a.Elapsed += dt
		for a.Elapsed >= walkFrameDelay {
			a.Elapsed -= walkFrameDelay
			a.step = (a.step + 1) % len(walkFrames)
			a.Frame = walkFrames[a.step]
		}
	}
}
