package main

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufSize    = 256
	// position frames arrive at up to 60/s; leave headroom for control messages
	msgRateLimit = 90
	msgRateBurst = 120
)

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string
	limiter    *rate.Limiter

	mu       sync.Mutex
	roomCode string
	playerID string
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
		limiter:    rate.NewLimiter(msgRateLimit, msgRateBurst),
	}
}

func (c *Client) room() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomCode
}

func (c *Client) player() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playerID
}

func (c *Client) seat() (code, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomCode, c.playerID
}

func (c *Client) setSeat(code, id string) {
	c.mu.Lock()
	c.roomCode, c.playerID = code, id
	c.mu.Unlock()
}

// takeSeat clears the seat and returns what it held. Only one caller gets a
// non-empty code for a given seat.
func (c *Client) takeSeat() (code, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	code, id = c.roomCode, c.playerID
	c.roomCode, c.playerID = "", ""
	return code, id
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("addr", c.remoteAddr).Msg("ws read")
			}
			break
		}

		if !c.limiter.Allow() {
			log.Warn().Str("addr", c.remoteAddr).Msg("rate limit exceeded, disconnecting")
			break
		}

		if msgType == websocket.BinaryMessage {
			c.handleBinary(message)
		} else {
			c.handleMessage(message)
		}
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			var err error
			if len(message) > 0 && message[0] == binaryMarker {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("marshal")
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message to the client
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendBinary queues data as a binary WebSocket message
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = binaryMarker
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) sendError(msg string) {
	c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: msg}})
}

// handleMessage routes incoming messages (single-pass decode via InEnvelope)
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Debug().Err(err).Str("addr", c.remoteAddr).Msg("unmarshal")
		return
	}

	switch env.T {
	case MsgCreate:
		c.handleCreate(env.D)
	case MsgJoin:
		c.handleJoin(env.D)
	case MsgLeave:
		c.leaveRoom()
	case MsgSettings:
		c.handleSettings(env.D)
	case MsgStart:
		c.handleStart(env.D)
	case MsgCheck:
		c.handleCheck(env.D)
	}
}

func (c *Client) handleCreate(data json.RawMessage) {
	var msg CreateMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	c.leaveRoom()

	hash, err := HashRoomPassword(msg.Password)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	room, err := c.hub.rooms.CreateRoom(hash)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.hub.analytics.Track(EvtRoomCreated, "", room.Code, "")
	log.Info().Str("room", room.Code).Bool("private", room.Private()).Msg("room created")
	c.enter(room, msg.Name)
}

func (c *Client) handleJoin(data json.RawMessage) {
	var msg JoinMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	room := c.hub.rooms.GetRoom(strings.ToUpper(msg.Code))
	if room == nil {
		c.sendError(ErrRoomNotFound.Error())
		return
	}
	if err := room.CheckPassword(msg.Password); err != nil {
		c.sendError(err.Error())
		return
	}
	c.leaveRoom()
	c.enter(room, msg.Name)
}

// enter seats the client in room and sends the welcome
func (c *Client) enter(room *Room, name string) {
	id := uuid.NewString()
	welcome, err := room.Join(id, name, c)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	if welcome.Host {
		token, err := c.hub.auth.IssueHostToken(room.Code, id)
		if err != nil {
			log.Error().Err(err).Str("room", room.Code).Msg("issue host token")
		}
		welcome.Token = token
	}
	c.setSeat(room.Code, id)
	c.hub.analytics.Track(EvtPlayerJoined, id, room.Code, "")
	c.SendJSON(Envelope{T: MsgWelcome, Data: welcome})
}

// leaveRoom removes the client from its room, if any
func (c *Client) leaveRoom() {
	code, id := c.takeSeat()
	if code == "" {
		return
	}
	c.hub.leave(code, id)
}

// hostRoom returns the client's room if token proves it is the host
func (c *Client) hostRoom(token string) (*Room, string, error) {
	code, id := c.seat()
	room := c.hub.rooms.GetRoom(code)
	if room == nil {
		return nil, "", ErrRoomNotFound
	}
	pid, err := c.hub.auth.ValidateHostToken(token, code)
	if err != nil || pid != id || !room.IsHost(id) {
		return nil, "", ErrNotHost
	}
	return room, id, nil
}

func (c *Client) handleSettings(data json.RawMessage) {
	var msg SettingsMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	room, id, err := c.hostRoom(msg.Token)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	if err := room.UpdateSettings(id, msg.Settings); err != nil {
		c.sendError(err.Error())
		return
	}
	c.hub.analytics.Track(EvtSettingsChanged, id, room.Code, string(msg.Settings))
}

func (c *Client) handleStart(data json.RawMessage) {
	var msg StartMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	room, id, err := c.hostRoom(msg.Token)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	if err := room.Start(); err != nil {
		c.sendError(err.Error())
		return
	}
	c.hub.analytics.Track(EvtGameStarted, id, room.Code, "")
	log.Info().Str("room", room.Code).Int("players", room.PlayerCount()).Msg("game started")
}

func (c *Client) handleCheck(data json.RawMessage) {
	var msg CheckMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	room := c.hub.rooms.GetRoom(strings.ToUpper(msg.Code))
	if room == nil {
		c.SendJSON(Envelope{T: MsgChecked, Data: CheckedMsg{Code: msg.Code, Exists: false}})
		return
	}
	info := room.Info()
	c.SendJSON(Envelope{T: MsgChecked, Data: CheckedMsg{Code: msg.Code, Exists: true, Room: &info}})
}

// handleBinary decodes a msgpack position frame and relays it
func (c *Client) handleBinary(data []byte) {
	code, id := c.seat()
	if code == "" {
		return
	}
	var upd PositionUpdate
	if err := msgpack.Unmarshal(data, &upd); err != nil {
		log.Debug().Err(err).Str("addr", c.remoteAddr).Msg("bad position frame")
		return
	}
	room := c.hub.rooms.GetRoom(code)
	if room == nil {
		return
	}
	if err := room.Relay(id, upd); err != nil && !errors.Is(err, ErrBadPosition) {
		log.Debug().Err(err).Str("room", code).Msg("relay")
	}
}
