package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	dialTimeout  = 10 * time.Second
	replyTimeout = 10 * time.Second
	eventBuffer  = 256
)

var ErrTransportClosed = errors.New("transport closed")

// WSTransport is a Transport backed by a relay server connection. Events are
// delivered to subscribers from a single dispatch goroutine, in arrival
// order; events that arrive while nobody is subscribed are held until the
// next Subscribe.
type WSTransport struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	mu       sync.Mutex
	handlers map[int]EventHandler
	nextSub  int

	events  chan func(EventHandler)
	kick    chan struct{}
	replies chan InEnvelope
	started chan struct{}
	done    chan struct{}
	once    sync.Once
}

// DialTransport connects to a relay server's /ws endpoint
func DialTransport(ctx context.Context, url string) (*WSTransport, error) {
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	t := &WSTransport{
		conn:     conn,
		handlers: make(map[int]EventHandler),
		events:   make(chan func(EventHandler), eventBuffer),
		kick:     make(chan struct{}, 1),
		replies:  make(chan InEnvelope, 4),
		started:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	go t.readLoop()
	go t.dispatch()
	return t, nil
}

// Subscribe registers h for lobby events
func (t *WSTransport) Subscribe(h EventHandler) (cancel func()) {
	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.handlers[id] = h
	t.mu.Unlock()

	select {
	case t.kick <- struct{}{}:
	default:
	}
	return func() {
		t.mu.Lock()
		delete(t.handlers, id)
		t.mu.Unlock()
	}
}

func (t *WSTransport) subscribers() []EventHandler {
	t.mu.Lock()
	defer t.mu.Unlock()
	list := make([]EventHandler, 0, len(t.handlers))
	for _, h := range t.handlers {
		list = append(list, h)
	}
	return list
}

func (t *WSTransport) dispatch() {
	var backlog []func(EventHandler)
	deliver := func() {
		hs := t.subscribers()
		if len(hs) == 0 {
			return
		}
		for _, ev := range backlog {
			for _, h := range hs {
				ev(h)
			}
		}
		backlog = backlog[:0]
	}
	for {
		select {
		case ev := <-t.events:
			backlog = append(backlog, ev)
			deliver()
		case <-t.kick:
			deliver()
		case <-t.done:
			return
		}
	}
}

func (t *WSTransport) emit(ev func(EventHandler)) {
	select {
	case t.events <- ev:
	case <-t.done:
	}
}

func (t *WSTransport) readLoop() {
	defer t.Close()
	for {
		msgType, data, err := t.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("transport read")
			}
			return
		}
		if msgType == websocket.BinaryMessage {
			var upd PositionUpdate
			if err := msgpack.Unmarshal(data, &upd); err != nil {
				log.Debug().Err(err).Msg("bad position frame")
				continue
			}
			t.emit(func(h EventHandler) { h.OnPositionUpdate(upd) })
			continue
		}

		var env InEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Debug().Err(err).Msg("bad envelope")
			continue
		}
		t.route(env)
	}
}

func (t *WSTransport) route(env InEnvelope) {
	switch env.T {
	case MsgWelcome, MsgError, MsgChecked:
		select {
		case t.replies <- env:
		default:
			log.Debug().Str("type", env.T).Msg("unclaimed reply dropped")
		}
	case MsgPlayerJoined:
		var msg PlayerJoined
		if json.Unmarshal(env.D, &msg) == nil {
			t.emit(func(h EventHandler) { h.OnPlayerJoined(msg) })
		}
	case MsgPlayerLeft:
		var msg PlayerLeft
		if json.Unmarshal(env.D, &msg) == nil {
			t.emit(func(h EventHandler) { h.OnPlayerLeft(msg) })
		}
	case MsgSettingsChanged:
		patch := append(json.RawMessage(nil), env.D...)
		t.emit(func(h EventHandler) { h.OnSettingsChanged(patch) })
	case MsgHost:
		var msg HostMsg
		if json.Unmarshal(env.D, &msg) == nil {
			t.emit(func(h EventHandler) { h.OnHostGranted(msg.Token) })
		}
	case MsgGameStart:
		select {
		case <-t.started:
		default:
			close(t.started)
		}
	}
}

func (t *WSTransport) writeJSON(v interface{}) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	select {
	case <-t.done:
		return ErrTransportClosed
	default:
	}
	t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return t.conn.WriteJSON(v)
}

// SendPosition sends the local player's state as a msgpack frame
func (t *WSTransport) SendPosition(upd PositionUpdate) error {
	data, err := msgpack.Marshal(&upd)
	if err != nil {
		return err
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	select {
	case <-t.done:
		return ErrTransportClosed
	default:
	}
	t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return t.conn.WriteMessage(websocket.BinaryMessage, data)
}

// SendSettings pushes a host settings patch
func (t *WSTransport) SendSettings(token string, patch json.RawMessage) error {
	return t.writeJSON(Envelope{T: MsgSettings, Data: SettingsMsg{Token: token, Settings: patch}})
}

// SendStart tells the server the host's countdown finished
func (t *WSTransport) SendStart(token string) error {
	return t.writeJSON(Envelope{T: MsgStart, Data: StartMsg{Token: token}})
}

// Create opens a new room and waits for the welcome
func (t *WSTransport) Create(ctx context.Context, name, password string) (WelcomeMsg, error) {
	if err := t.writeJSON(Envelope{T: MsgCreate, Data: CreateMsg{Name: name, Password: password}}); err != nil {
		return WelcomeMsg{}, err
	}
	return t.awaitWelcome(ctx)
}

// Join enters an existing room and waits for the welcome
func (t *WSTransport) Join(ctx context.Context, code, name, password string) (WelcomeMsg, error) {
	if err := t.writeJSON(Envelope{T: MsgJoin, Data: JoinMsg{Name: name, Code: code, Password: password}}); err != nil {
		return WelcomeMsg{}, err
	}
	return t.awaitWelcome(ctx)
}

func (t *WSTransport) awaitWelcome(ctx context.Context) (WelcomeMsg, error) {
	ctx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()
	for {
		select {
		case env := <-t.replies:
			switch env.T {
			case MsgWelcome:
				var w WelcomeMsg
				if err := json.Unmarshal(env.D, &w); err != nil {
					return WelcomeMsg{}, fmt.Errorf("decode welcome: %w", err)
				}
				return w, nil
			case MsgError:
				var e ErrorMsg
				json.Unmarshal(env.D, &e)
				return WelcomeMsg{}, fmt.Errorf("server: %s", e.Msg)
			}
		case <-t.done:
			return WelcomeMsg{}, ErrTransportClosed
		case <-ctx.Done():
			return WelcomeMsg{}, ctx.Err()
		}
	}
}

// Started is closed when the server announces the game start
func (t *WSTransport) Started() <-chan struct{} {
	return t.started
}

// Done is closed once the connection is gone
func (t *WSTransport) Done() <-chan struct{} {
	return t.done
}

// Close shuts the connection down
func (t *WSTransport) Close() error {
	var err error
	t.once.Do(func() {
		close(t.done)
		t.writeMu.Lock()
		t.conn.SetWriteDeadline(time.Now().Add(time.Second))
		t.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		t.writeMu.Unlock()
		err = t.conn.Close()
	})
	return err
}
