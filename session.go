package main

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

const maxRooms = 100

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	ErrRoomStarted  = errors.New("game already started")
	ErrBadPassword  = errors.New("wrong room password")
	ErrTooManyRooms = errors.New("too many active rooms")
)

// Sender is the outbound side of a connected client
type Sender interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

type member struct {
	id         string
	name       string
	color      int
	spawnID    int
	x, y       float64
	moving     bool
	facingLeft bool
	client     Sender
}

func (m *member) descriptor() PlayerJoined {
	c, x, y := m.color, m.x, m.y
	return PlayerJoined{ID: m.id, Name: m.name, Color: &c, X: &x, Y: &y}
}

// Room relays lobby traffic between the players waiting in it. Colors and
// spawn points are allocated here so every client agrees on them.
type Room struct {
	Code string

	mu       sync.Mutex
	hostID   string
	passHash []byte
	members  map[string]*member
	order    []string // join order, used for host hand-over
	settings LobbySettings
	alloc    *SpawnAllocator
	started  bool
}

func newRoom(code string, passHash []byte, m *LobbyMap) *Room {
	return &Room{
		Code:     code,
		passHash: passHash,
		members:  make(map[string]*member),
		settings: DefaultSettings(),
		alloc:    NewSpawnAllocator(m.SpawnPoints),
	}
}

// Private reports whether joining needs a password
func (r *Room) Private() bool {
	return len(r.passHash) > 0
}

// CheckPassword verifies a join attempt
func (r *Room) CheckPassword(password string) error {
	return CheckRoomPassword(r.passHash, password)
}

// Join adds a player and tells everyone else. It returns the welcome payload
// (without the host token, which the caller adds).
func (r *Room) Join(id, name string, client Sender) (WelcomeMsg, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return WelcomeMsg{}, ErrRoomStarted
	}
	if len(r.members) >= r.settings.MaxPlayers {
		return WelcomeMsg{}, ErrRoomFull
	}

	usedColors := make(map[int]bool, len(r.members))
	usedSpawns := make(map[int]bool, len(r.members))
	for _, m := range r.members {
		usedColors[m.color] = true
		usedSpawns[m.spawnID] = true
	}
	sp := r.alloc.AssignSpawnPoint(usedSpawns)
	m := &member{
		id:      id,
		name:    sanitizeName(name),
		color:   r.alloc.AssignColor(usedColors),
		spawnID: sp.ID,
		x:       sp.X,
		y:       sp.Y,
		client:  client,
	}

	announce := Envelope{T: MsgPlayerJoined, Data: m.descriptor()}
	for _, other := range r.members {
		other.client.SendJSON(announce)
	}

	r.members[id] = m
	r.order = append(r.order, id)
	if r.hostID == "" {
		r.hostID = id
	}

	return WelcomeMsg{
		Code:     r.Code,
		ID:       id,
		Host:     r.hostID == id,
		Players:  r.descriptorsLocked(),
		Settings: r.settings,
	}, nil
}

func (r *Room) descriptorsLocked() []PlayerJoined {
	list := make([]PlayerJoined, 0, len(r.order))
	for _, id := range r.order {
		if m, ok := r.members[id]; ok {
			list = append(list, m.descriptor())
		}
	}
	return list
}

// Leave removes a player. When the host leaves, the longest-waiting player
// becomes host; newHost is that player's id ("" when unchanged or empty).
func (r *Room) Leave(id string) (newHost string, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[id]; !ok {
		return "", len(r.members) == 0
	}
	delete(r.members, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	left := Envelope{T: MsgPlayerLeft, Data: PlayerLeft{ID: id}}
	for _, m := range r.members {
		m.client.SendJSON(left)
	}

	if r.hostID == id {
		r.hostID = ""
		if len(r.order) > 0 {
			r.hostID = r.order[0]
			newHost = r.hostID
		}
	}
	return newHost, len(r.members) == 0
}

// Relay records the sender's position and forwards it to everyone else as a
// msgpack frame. The id in upd is replaced with the sender's.
func (r *Room) Relay(from string, upd PositionUpdate) error {
	if !isFinite(upd.X) || !isFinite(upd.Y) {
		return ErrBadPosition
	}
	upd.ID = from
	data, err := msgpack.Marshal(&upd)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[from]
	if !ok {
		return ErrUnknownPlayer
	}
	m.x, m.y = upd.X, upd.Y
	m.moving, m.facingLeft = upd.Moving, upd.FacingLeft
	for id, other := range r.members {
		if id != from {
			other.client.SendBinary(data)
		}
	}
	return nil
}

// IsHost reports whether id holds the host role
func (r *Room) IsHost(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return id != "" && r.hostID == id
}

// UpdateSettings merges a host patch and forwards it to the other players
func (r *Room) UpdateSettings(from string, patch json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.settings.Merge(patch); err != nil {
		return err
	}
	env := Envelope{T: MsgSettingsChanged, Data: patch}
	for id, m := range r.members {
		if id != from {
			m.client.SendJSON(env)
		}
	}
	return nil
}

// Start closes the room to new joins and tells everyone the game begins
func (r *Room) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return ErrRoomStarted
	}
	r.started = true
	env := Envelope{T: MsgGameStart, Data: GameStartMsg{Code: r.Code}}
	for _, m := range r.members {
		m.client.SendJSON(env)
	}
	return nil
}

// Settings returns the current settings
func (r *Room) Settings() LobbySettings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings
}

// PlayerCount returns the number of players
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Info summarizes the room
func (r *Room) Info() RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomInfo{
		Code:       r.Code,
		Players:    len(r.members),
		MaxPlayers: r.settings.MaxPlayers,
		Private:    len(r.passHash) > 0,
	}
}

// RoomManager handles creation and lookup of rooms
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	m     *LobbyMap
}

// NewRoomManager creates a RoomManager whose rooms use map m
func NewRoomManager(m *LobbyMap) *RoomManager {
	if m == nil {
		m = &DropshipMap
	}
	return &RoomManager{
		rooms: make(map[string]*Room),
		m:     m,
	}
}

// CreateRoom creates an empty room with a fresh code
func (rm *RoomManager) CreateRoom(passHash []byte) (*Room, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if len(rm.rooms) >= maxRooms {
		return nil, ErrTooManyRooms
	}
	var code string
	for code == "" || rm.rooms[code] != nil {
		var err error
		if code, err = GenerateRoomCode(); err != nil {
			return nil, err
		}
	}
	room := newRoom(code, passHash, rm.m)
	rm.rooms[code] = room
	return room, nil
}

// GetRoom returns a room by code, or nil
func (rm *RoomManager) GetRoom(code string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[code]
}

// RemovePlayer takes a player out of a room and drops the room once empty
func (rm *RoomManager) RemovePlayer(code, playerID string) (newHost string) {
	room := rm.GetRoom(code)
	if room == nil {
		return ""
	}
	newHost, empty := room.Leave(playerID)
	if empty {
		rm.mu.Lock()
		if room.PlayerCount() == 0 {
			delete(rm.rooms, code)
		}
		rm.mu.Unlock()
	}
	return newHost
}

// ListRooms returns info about all public rooms, ordered by code
func (rm *RoomManager) ListRooms() []RoomInfo {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	list := make([]RoomInfo, 0, len(rm.rooms))
	for _, room := range rm.rooms {
		if room.Private() {
			continue
		}
		list = append(list, room.Info())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list
}

// RoomCount returns the number of live rooms
func (rm *RoomManager) RoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}
