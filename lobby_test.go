package main

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openFloor is a map with no obstacles and well separated spawn points
var openFloor = LobbyMap{
	Name:   "test",
	Width:  2000,
	Height: 2000,
	Scale:  1,
	SpawnPoints: []SpawnPoint{
		{ID: 1, X: 500, Y: 500},
		{ID: 2, X: 800, Y: 500},
		{ID: 3, X: 500, Y: 800},
		{ID: 4, X: 800, Y: 800},
	},
}

type fakeTransport struct {
	mu        sync.Mutex
	handler   EventHandler
	sent      []PositionUpdate
	cancelled int
}

func (f *fakeTransport) SendPosition(upd PositionUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, upd)
	return nil
}

func (f *fakeTransport) Subscribe(h EventHandler) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = h
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.handler = nil
		f.cancelled++
	}
}

func (f *fakeTransport) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type captureRenderer struct {
	frames [][]DrawCommand
}

func (r *captureRenderer) Draw(cmds []DrawCommand) {
	r.frames = append(r.frames, cmds)
}

// finishSpawn ticks until the local spawn animation is over
func finishSpawn(l *Lobby) {
	for i := 0; i < spawnFrameCount; i++ {
		l.Update(spawnFrameDelay)
	}
}

func newTestLobby(t *testing.T, cfg LobbyConfig) (*Lobby, *fakeTransport) {
	t.Helper()
	tr := &fakeTransport{}
	if cfg.Map == nil {
		cfg.Map = &openFloor
	}
	cfg.Transport = tr
	return NewLobby(cfg), tr
}

func TestLobbyOfflineShow(t *testing.T) {
	l := NewLobby(LobbyConfig{Map: &openFloor})
	l.Show(ShowOptions{SelfName: "Solo"})

	snap := l.Snapshot()
	require.Len(t, snap.Players, 1)
	assert.Equal(t, l.SelfID(), snap.Players[0].ID)
	assert.Equal(t, "Solo", snap.Players[0].Name)
	assert.Equal(t, "spawning", snap.Players[0].Anim)

	// Ticks without a transport are fine
	finishSpawn(l)
	l.SetInput(MoveInput{Right: true})
	l.Update(0.5)
	p, ok := l.Player(l.SelfID())
	require.True(t, ok)
	assert.True(t, p.Moving)
}

func TestLobbyScenario(t *testing.T) {
	l, tr := newTestLobby(t, LobbyConfig{MinPlayers: 2})
	l.Show(ShowOptions{IsHost: true, RoomCode: "ABCDEF", SelfID: "p1"})
	require.NotNil(t, tr.handler)

	tr.handler.OnPlayerJoined(PlayerJoined{ID: "p2"})
	require.NoError(t, l.BeginCountdown())
	assert.Equal(t, CountdownCounting, l.Snapshot().Countdown)

	tr.handler.OnPlayerJoined(PlayerJoined{ID: "p3"})
	snap := l.Snapshot()
	assert.Equal(t, CountdownIdle, snap.Countdown, "a join resets the countdown")
	require.Len(t, snap.Players, 3)
	colors := map[int]bool{}
	for _, ps := range snap.Players {
		colors[ps.Color] = true
	}
	assert.Len(t, colors, 3, "colors are distinct")

	finishSpawn(l)
	assert.Zero(t, tr.sentCount(), "nothing is sent while spawning")

	start, _ := l.Player("p1")
	l.SetInput(MoveInput{Right: true})
	for i := 0; i < 60; i++ {
		l.Update(1.0 / 60)
	}
	p, _ := l.Player("p1")
	assert.InDelta(t, start.X+PlayerSpeed, p.X, 1e-6)
	assert.True(t, p.Moving)
	assert.Equal(t, AnimWalking, p.Anim.State)
	assert.Equal(t, 60, tr.sentCount(), "one update per tick while moving")

	l.SetInput(MoveInput{})
	l.Update(1.0 / 60)
	l.Update(1.0 / 60)
	l.Update(1.0 / 60)
	assert.Equal(t, 61, tr.sentCount(), "an idle player sends only the stop")
}

func TestLobbyRemoteUpdates(t *testing.T) {
	l, tr := newTestLobby(t, LobbyConfig{})
	l.Show(ShowOptions{SelfID: "me", Players: []PlayerJoined{{ID: "me"}, {ID: "them"}}})
	require.Len(t, l.Snapshot().Players, 2)

	me, _ := l.Player("me")
	tr.handler.OnPositionUpdate(PositionUpdate{ID: "me", X: 1, Y: 1})
	after, _ := l.Player("me")
	assert.Equal(t, me.X, after.X, "network echo cannot move the local player")

	tr.handler.OnPositionUpdate(PositionUpdate{ID: "them", X: 900, Y: 900, Moving: true})
	them, _ := l.Player("them")
	assert.Equal(t, 900.0, them.X)

	tr.handler.OnPlayerLeft(PlayerLeft{ID: "them"})
	_, ok := l.Player("them")
	assert.False(t, ok)
}

func TestLobbyHideDetaches(t *testing.T) {
	l, tr := newTestLobby(t, LobbyConfig{})
	l.Show(ShowOptions{SelfID: "me"})
	h := tr.handler
	require.NotNil(t, h)

	l.Hide()
	assert.Equal(t, 1, tr.cancelled)
	assert.Nil(t, tr.handler)

	// Stale callbacks are dropped
	h.OnPlayerJoined(PlayerJoined{ID: "late"})
	assert.Empty(t, l.Snapshot().Players)
	l.Update(1)
	assert.Zero(t, tr.sentCount())

	// Showing again resubscribes with a fresh roster
	l.Show(ShowOptions{SelfID: "me"})
	assert.NotNil(t, tr.handler)
	assert.Len(t, l.Snapshot().Players, 1)
}

func TestLobbyCountdownGates(t *testing.T) {
	l, tr := newTestLobby(t, LobbyConfig{MinPlayers: 2})
	l.Show(ShowOptions{SelfID: "me"})
	assert.ErrorIs(t, l.BeginCountdown(), ErrNotHost)

	tr.handler.OnHostGranted("tok")
	assert.Equal(t, "tok", l.HostToken())
	assert.True(t, l.Snapshot().Host)
	assert.ErrorIs(t, l.BeginCountdown(), ErrNotEnoughPlayers)

	tr.handler.OnPlayerJoined(PlayerJoined{ID: "other"})
	assert.NoError(t, l.BeginCountdown())
	l.CancelCountdown()
	assert.Equal(t, CountdownIdle, l.Snapshot().Countdown)

	l.Hide()
	assert.ErrorIs(t, l.BeginCountdown(), ErrLobbyHidden)
}

func TestLobbyOnStart(t *testing.T) {
	var started []string
	l, _ := newTestLobby(t, LobbyConfig{
		MinPlayers: 1,
		OnStart:    func(code string) { started = append(started, code) },
	})
	l.Show(ShowOptions{IsHost: true, RoomCode: "QWERTY", SelfID: "me"})

	require.NoError(t, l.BeginCountdown())
	l.Update(countdownDuration / 2)
	assert.Empty(t, started)
	l.Update(countdownDuration / 2)
	assert.Equal(t, []string{"QWERTY"}, started)
	assert.Equal(t, CountdownIdle, l.Snapshot().Countdown)

	l.Update(1)
	assert.Len(t, started, 1, "start fires once")
}

func TestLobbySettings(t *testing.T) {
	l, tr := newTestLobby(t, LobbyConfig{})
	custom := DefaultSettings()
	custom.Impostors = 1
	l.Show(ShowOptions{SelfID: "me", Settings: &custom})
	assert.Equal(t, 1, l.Settings().Impostors)

	require.NoError(t, l.UpdateSettings(json.RawMessage(`{"votingTime":30}`)))
	tr.handler.OnSettingsChanged(json.RawMessage(`{"confirmEjects":false}`))
	tr.handler.OnSettingsChanged(json.RawMessage(`not json`))

	s := l.Settings()
	assert.Equal(t, 1, s.Impostors)
	assert.Equal(t, 30, s.VotingTime)
	assert.False(t, s.ConfirmEjects)
}

func TestLobbyRendersEachTick(t *testing.T) {
	r := &captureRenderer{}
	l, _ := newTestLobby(t, LobbyConfig{Renderer: r, Sprites: fullSprites()})
	l.Show(ShowOptions{SelfID: "me", Players: []PlayerJoined{{ID: "me"}, {ID: "them"}}})

	l.Update(1.0 / 60)
	require.Len(t, r.frames, 1)
	assert.Len(t, r.frames[0], 2)
}
