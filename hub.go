package main

import (
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	maxConnsPerIP = 8
	maxTotalConns = 1000
)

// Hub tracks connected clients and routes them into rooms
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	rooms      *RoomManager
	auth       *Auth
	analytics  *Analytics
	// Connection limiting (mutex-protected, accessed from HTTP handlers)
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int
}

// NewHub creates a Hub. analytics may be nil.
func NewHub(rooms *RoomManager, auth *Auth, analytics *Analytics) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		rooms:      rooms,
		auth:       auth,
		analytics:  analytics,
		ipConns:    make(map[string]int),
	}
}

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= maxTotalConns {
		return false
	}
	if h.ipConns[ip] >= maxConnsPerIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Run processes register/unregister events
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			client.leaveRoom()
		}
	}
}

// leave takes a player out of its room, handing the host role on if needed
func (h *Hub) leave(code, playerID string) {
	newHost := h.rooms.RemovePlayer(code, playerID)
	h.analytics.Track(EvtPlayerLeft, playerID, code, "")
	if newHost == "" {
		return
	}
	room := h.rooms.GetRoom(code)
	if room == nil {
		return
	}
	token, err := h.auth.IssueHostToken(code, newHost)
	if err != nil {
		log.Error().Err(err).Str("room", code).Msg("issue host token")
		return
	}
	if c := h.clientFor(code, newHost); c != nil {
		c.SendJSON(Envelope{T: MsgHost, Data: HostMsg{Token: token}})
	}
	h.analytics.Track(EvtHostChanged, newHost, code, "")
	log.Info().Str("room", code).Str("player", newHost).Msg("host handed over")
}

func (h *Hub) clientFor(code, playerID string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.room() == code && c.player() == playerID {
			return c
		}
	}
	return nil
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}
