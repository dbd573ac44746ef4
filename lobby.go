package main

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrLobbyHidden      = errors.New("lobby: not shown")
	ErrNotHost          = errors.New("lobby: only the host can do that")
	ErrNotEnoughPlayers = errors.New("lobby: not enough players to start")
)

const (
	defaultMinPlayers = 4
	defaultViewW      = 1280.0
	defaultViewH      = 720.0
)

// LobbyConfig wires a Lobby to its map and collaborators. Everything but Map
// is optional.
type LobbyConfig struct {
	Map        *LobbyMap
	ViewW      float64
	ViewH      float64
	MinPlayers int // players needed before the host can start
	Transport  Transport
	Cue        AudioCue
	Sprites    SpriteProvider
	Renderer   Renderer
	// OnStart runs after the tick in which the host's countdown completes
	OnStart func(roomCode string)
	// Rand overrides the allocator's random source
	Rand func(n int) int
}

// ShowOptions are the inputs to Lobby.Show
type ShowOptions struct {
	IsHost   bool
	RoomCode string
	SelfID   string // id of the local player; generated when empty
	SelfName string
	Players  []PlayerJoined // everyone already in the room, self included
	Settings *LobbySettings
}

// Lobby is one pre-game waiting room as seen by this process. Network
// callbacks, input and the tick may come from different goroutines; a single
// mutex serializes them.
type Lobby struct {
	mu sync.Mutex

	cfg       LobbyConfig
	movement  *MovementController
	roster    *Roster
	countdown *Countdown
	camera    *Camera
	recolor   *Recolorer
	settings  LobbySettings

	active      bool
	isHost      bool
	hostToken   string
	roomCode    string
	selfID      string
	unsubscribe func()
	lastSent    *PositionUpdate
	log         zerolog.Logger
}

// NewLobby creates a hidden lobby for cfg.Map
func NewLobby(cfg LobbyConfig) *Lobby {
	if cfg.Map == nil {
		cfg.Map = &DropshipMap
	}
	if cfg.ViewW <= 0 {
		cfg.ViewW = defaultViewW
	}
	if cfg.ViewH <= 0 {
		cfg.ViewH = defaultViewH
	}
	if cfg.MinPlayers <= 0 {
		cfg.MinPlayers = defaultMinPlayers
	}
	worldW, worldH := cfg.Map.WorldSize()
	grid := NewCollisionGridForMap(cfg.Map)

	alloc := NewSpawnAllocator(cfg.Map.SpawnPoints)
	if cfg.Rand != nil {
		alloc.WithRand(cfg.Rand)
	}
	countdown := NewCountdown(cfg.Cue)
	movement := NewMovementController(grid, worldW, worldH)

	return &Lobby{
		cfg:       cfg,
		movement:  movement,
		roster:    NewRoster(alloc, countdown).WithPlacement(movement),
		countdown: countdown,
		camera:    NewCamera(cfg.ViewW, cfg.ViewH, worldW, worldH),
		recolor:   NewRecolorer(),
		settings:  DefaultSettings(),
		log:       log.Logger,
	}
}

// Show (re)opens the lobby: the countdown is reset, the roster is rebuilt
// from opts.Players, or from a single local player when that list is empty,
// and the transport subscription is (re)attached.
func (l *Lobby) Show(opts ShowOptions) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.detach()
	l.countdown.Cancel()
	l.countdown.Reset()
	l.roster.Clear()
	l.lastSent = nil

	l.isHost = opts.IsHost
	l.roomCode = opts.RoomCode
	l.selfID = opts.SelfID
	if l.selfID == "" {
		l.selfID = uuid.NewString()
	}
	if opts.Settings != nil {
		l.settings = *opts.Settings
	}
	l.log = log.With().Str("room", l.roomCode).Str("self", l.selfID).Logger()

	selfSeen := false
	for _, p := range opts.Players {
		if p.ID == "" {
			continue
		}
		local := p.ID == l.selfID
		selfSeen = selfSeen || local
		l.roster.Add(p, local)
	}
	if !selfSeen {
		l.roster.Add(PlayerJoined{ID: l.selfID, Name: opts.SelfName}, true)
	}

	if local := l.roster.Local(); local != nil {
		l.camera.Follow(local.X, local.Y)
	}
	if l.cfg.Transport != nil {
		l.unsubscribe = l.cfg.Transport.Subscribe(l)
	}
	l.active = true
	l.log.Info().Int("players", l.roster.Len()).Bool("host", l.isHost).Msg("lobby shown")
}

// Hide tears the lobby down: roster cleared, countdown stopped, transport
// detached. Events that arrive afterwards are dropped.
func (l *Lobby) Hide() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.active {
		return
	}
	l.active = false
	l.detach()
	l.countdown.Cancel()
	l.countdown.Reset()
	l.roster.Clear()
	l.lastSent = nil
	l.log.Info().Msg("lobby hidden")
}

func (l *Lobby) detach() {
	if l.unsubscribe != nil {
		l.unsubscribe()
		l.unsubscribe = nil
	}
}

// SetInput records the local player's key state for the next tick
func (l *Lobby) SetInput(in MoveInput) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.active {
		return
	}
	if p := l.roster.Local(); p != nil {
		if lc, ok := p.Control.(*LocalControl); ok {
			lc.Input = in
		}
	}
}

// Update runs one tick: local movement, animation, countdown, camera, then
// drawing when a renderer is configured.
func (l *Lobby) Update(dt float64) {
	l.mu.Lock()
	if !l.active {
		l.mu.Unlock()
		return
	}

	local := l.roster.Local()
	var outbound *PositionUpdate
	if local != nil && !local.Anim.Spawning() {
		lc := local.Control.(*LocalControl)
		l.movement.Step(local, lc.Input, dt)
		upd := local.positionUpdate()
		if l.lastSent == nil || *l.lastSent != upd {
			outbound = &upd
			l.lastSent = &upd
		}
	}

	for _, p := range l.roster.Players() {
		switch p.Control.(type) {
		case *LocalControl:
			p.Anim.Tick(dt, p.Moving)
		case RemoteControl:
			// remote walk cycles advance per received update
			if p.Anim.Spawning() {
				p.Anim.Tick(dt, false)
			}
		}
	}

	started := false
	if l.countdown.Advance(dt) {
		l.countdown.Reset()
		started = l.isHost
		l.log.Info().Msg("countdown complete")
	}

	if local != nil {
		l.camera.Follow(local.X, local.Y)
	}

	var cmds []DrawCommand
	if l.cfg.Renderer != nil {
		cmds = buildDrawList(l.roster.Players(), l.camera, l.cfg.Sprites, l.recolor)
	}
	transport, renderer, code, lg := l.cfg.Transport, l.cfg.Renderer, l.roomCode, l.log
	l.mu.Unlock()

	if outbound != nil && transport != nil {
		if err := transport.SendPosition(*outbound); err != nil {
			lg.Debug().Err(err).Msg("send position")
		}
	}
	if renderer != nil {
		renderer.Draw(cmds)
	}
	if started && l.cfg.OnStart != nil {
		l.cfg.OnStart(code)
	}
}

// BeginCountdown starts the host's start countdown
func (l *Lobby) BeginCountdown() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch {
	case !l.active:
		return ErrLobbyHidden
	case !l.isHost:
		return ErrNotHost
	case l.roster.Len() < l.cfg.MinPlayers:
		return ErrNotEnoughPlayers
	}
	if l.countdown.Begin() {
		l.log.Info().Msg("countdown started")
	}
	return nil
}

// CancelCountdown stops a running countdown
func (l *Lobby) CancelCountdown() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.countdown.Cancel()
}

// UpdateSettings shallow-merges patch into the current settings
func (l *Lobby) UpdateSettings(patch json.RawMessage) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.settings.Merge(patch)
}

// OnPlayerJoined adds a remote player. Duplicate joins are ignored.
func (l *Lobby) OnPlayerJoined(msg PlayerJoined) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.active || msg.ID == "" {
		return
	}
	before := l.countdown.Phase
	p, added := l.roster.Add(msg, false)
	if !added {
		l.log.Info().Str("player", msg.ID).Msg("duplicate join ignored")
		return
	}
	ev := l.log.Info().Str("player", p.ID).Int("color", p.Color).Int("spawn", p.SpawnID)
	if before == CountdownCounting && l.countdown.Phase == CountdownIdle {
		ev = ev.Bool("countdown_cancelled", true)
	}
	ev.Msg("player joined")
}

// OnPlayerLeft removes a player
func (l *Lobby) OnPlayerLeft(msg PlayerLeft) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.active {
		return
	}
	if l.roster.Remove(msg.ID) {
		l.log.Info().Str("player", msg.ID).Msg("player left")
	}
}

// OnPositionUpdate mirrors a remote player's movement
func (l *Lobby) OnPositionUpdate(upd PositionUpdate) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.active {
		return
	}
	err := l.roster.UpdateRemote(upd)
	switch {
	case err == nil:
	case errors.Is(err, ErrLocalOverride):
		l.log.Warn().Str("player", upd.ID).Msg("ignored network update for local player")
	default:
		l.log.Debug().Err(err).Str("player", upd.ID).Msg("position update dropped")
	}
}

// OnSettingsChanged merges settings pushed by the host
func (l *Lobby) OnSettingsChanged(patch json.RawMessage) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.active {
		return
	}
	if err := l.settings.Merge(patch); err != nil {
		l.log.Warn().Err(err).Msg("bad settings patch")
	}
}

// OnHostGranted makes this process the host
func (l *Lobby) OnHostGranted(token string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.active {
		return
	}
	l.isHost = true
	l.hostToken = token
	l.log.Info().Msg("host role granted")
}

// LobbySnapshot is a read-only view of the lobby for status output
type LobbySnapshot struct {
	Code      string         `json:"code"`
	Host      bool           `json:"host"`
	Players   []PlayerState  `json:"players"`
	Countdown CountdownPhase `json:"countdown"`
	Seconds   int            `json:"seconds"`
	CameraX   float64        `json:"cameraX"`
	CameraY   float64        `json:"cameraY"`
}

// Snapshot copies the current state
func (l *Lobby) Snapshot() LobbySnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	players := l.roster.Players()
	snap := LobbySnapshot{
		Code:      l.roomCode,
		Host:      l.isHost,
		Players:   make([]PlayerState, 0, len(players)),
		Countdown: l.countdown.Phase,
		Seconds:   l.countdown.Seconds(),
		CameraX:   l.camera.OffsetX,
		CameraY:   l.camera.OffsetY,
	}
	for _, p := range players {
		snap.Players = append(snap.Players, p.ToState())
	}
	return snap
}

// Player returns a copy of a player
func (l *Lobby) Player(id string) (Player, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := l.roster.Get(id)
	if p == nil {
		return Player{}, false
	}
	return *p, true
}

// SelfID returns the local player's id
func (l *Lobby) SelfID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.selfID
}

// Settings returns the current settings
func (l *Lobby) Settings() LobbySettings {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.settings
}

// HostToken returns the token granted with the host role, if any
func (l *Lobby) HostToken() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hostToken
}

// SetHostToken stores the host token received in the welcome message
func (l *Lobby) SetHostToken(token string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hostToken = token
}
