package main

import (
	"errors"
	"sort"
)

var (
	// ErrLocalOverride is returned when a network update targets the player this process controls
	ErrLocalOverride = errors.New("roster: update targets the local player")
	// ErrUnknownPlayer is returned for updates about players not in the roster
	ErrUnknownPlayer = errors.New("roster: unknown player")
	// ErrBadPosition is returned for non-finite coordinates
	ErrBadPosition = errors.New("roster: invalid position")
)

// Roster owns the players of one lobby. It is not safe for concurrent use;
// Lobby serializes access.
type Roster struct {
	players   map[string]*Player
	localID   string
	alloc     *SpawnAllocator
	countdown *Countdown
	placement *MovementController
}

// NewRoster creates an empty roster. Any join into a non-empty roster cancels countdown.
func NewRoster(alloc *SpawnAllocator, countdown *Countdown) *Roster {
	return &Roster{
		players:   make(map[string]*Player),
		alloc:     alloc,
		countdown: countdown,
	}
}

// WithPlacement makes Add reject seed coordinates that m would not let a
// player stand on.
func (r *Roster) WithPlacement(m *MovementController) *Roster {
	r.placement = m
	return r
}

func (r *Roster) usableSeed(x, y *float64) bool {
	if !validPosition(x, y) {
		return false
	}
	return r.placement == nil || r.placement.Placeable(*x, *y)
}

func (r *Roster) usedColors() map[int]bool {
	used := make(map[int]bool, len(r.players))
	for _, p := range r.players {
		used[p.Color] = true
	}
	return used
}

func (r *Roster) usedSpawns() map[int]bool {
	used := make(map[int]bool, len(r.players))
	for _, p := range r.players {
		used[p.SpawnID] = true
	}
	return used
}

// Add inserts a player. Adding an id that is already present does nothing and
// returns the existing player with added=false. A new player gets the color
// from desc if it is valid and not taken (or the palette is exhausted),
// otherwise a free one, and always reserves a free spawn point; it stands on
// that spawn point unless desc carries coordinates it can stand on. Only one player can be local: a second local add is demoted to remote.
func (r *Roster) Add(desc PlayerJoined, local bool) (p *Player, added bool) {
	if existing, ok := r.players[desc.ID]; ok {
		return existing, false
	}
	nonEmpty := len(r.players) > 0

	used := r.usedColors()
	c := 0
	if desc.Color != nil && ValidColor(*desc.Color) && (!used[*desc.Color] || len(used) >= PaletteSize) {
		c = *desc.Color
	} else {
		c = r.alloc.AssignColor(used)
	}
	sp := r.alloc.AssignSpawnPoint(r.usedSpawns())

	p = &Player{
		ID:      desc.ID,
		Name:    sanitizeName(desc.Name),
		X:       sp.X,
		Y:       sp.Y,
		Color:   c,
		SpawnID: sp.ID,
		Control: RemoteControl{},
	}
	if r.usableSeed(desc.X, desc.Y) {
		p.X, p.Y = *desc.X, *desc.Y
	}
	if local && r.localID == "" {
		p.Control = &LocalControl{}
		r.localID = p.ID
	}
	p.Anim.Spawn()
	r.players[p.ID] = p

	if nonEmpty && r.countdown != nil {
		r.countdown.Cancel()
	}
	return p, true
}

// Remove deletes a player; unknown ids are ignored
func (r *Roster) Remove(id string) bool {
	if _, ok := r.players[id]; !ok {
		return false
	}
	delete(r.players, id)
	if id == r.localID {
		r.localID = ""
	}
	return true
}

// UpdateRemote mirrors a network position onto a remote player and advances
// its animation by one nominal tick.
func (r *Roster) UpdateRemote(upd PositionUpdate) error {
	p, ok := r.players[upd.ID]
	if !ok {
		return ErrUnknownPlayer
	}
	if p.IsLocal() {
		return ErrLocalOverride
	}
	if !isFinite(upd.X) || !isFinite(upd.Y) {
		return ErrBadPosition
	}
	p.X, p.Y = upd.X, upd.Y
	p.VX, p.VY = upd.VX, upd.VY
	p.Moving = upd.Moving
	p.FacingLeft = upd.FacingLeft
	if !p.Anim.Spawning() {
		p.Anim.Tick(remoteTickDuration, p.Moving)
	}
	return nil
}

// Get returns a player by id
func (r *Roster) Get(id string) *Player {
	return r.players[id]
}

// Local returns the player this process controls, or nil
func (r *Roster) Local() *Player {
	if r.localID == "" {
		return nil
	}
	return r.players[r.localID]
}

// Len returns the number of players
func (r *Roster) Len() int {
	return len(r.players)
}

// Players returns all players ordered by id
func (r *Roster) Players() []*Player {
	list := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// Clear removes every player
func (r *Roster) Clear() {
	clear(r.players)
	r.localID = ""
}
