package main

import "encoding/json"

// Client -> Server message types
const (
	MsgCreate   = "create"   // create a room and become its host
	MsgJoin     = "join"     // join a room by code
	MsgLeave    = "leave"    // leave the current room
	MsgSettings = "settings" // host-only settings patch
	MsgStart    = "start"    // host-only, sent when the countdown completes
	MsgCheck    = "check"    // check if a room exists
)

// Server -> Client message types
const (
	MsgWelcome         = "welcome" // you are in a room
	MsgPlayerJoined    = "player_joined"
	MsgPlayerLeft      = "player_left"
	MsgSettingsChanged = "settings_changed"
	MsgGameStart       = "game_start"
	MsgHost            = "host" // you are the host now
	MsgChecked         = "checked"
	MsgError           = "error"
)

// binaryMarker prefixes queued binary frames so WritePump can tell them from text
const binaryMarker = 0xFF

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; D is decoded per message type
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// CreateMsg asks for a new room
type CreateMsg struct {
	Name     string `json:"name"`
	Password string `json:"password,omitempty"`
}

// JoinMsg asks to join an existing room
type JoinMsg struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	Password string `json:"password,omitempty"`
}

// SettingsMsg carries a partial settings object and the host token
type SettingsMsg struct {
	Token    string          `json:"token"`
	Settings json.RawMessage `json:"settings"`
}

// StartMsg is sent by the host when its countdown completes
type StartMsg struct {
	Token string `json:"token"`
}

// CheckMsg is sent by client to check if a room exists
type CheckMsg struct {
	Code string `json:"code"`
}

// PlayerJoined announces a player. Color and coordinates are optional; a
// receiver allocates its own when they are missing.
type PlayerJoined struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Color *int     `json:"color,omitempty"`
	X     *float64 `json:"x,omitempty"`
	Y     *float64 `json:"y,omitempty"`
}

// PlayerLeft announces a departure
type PlayerLeft struct {
	ID string `json:"id"`
}

// PositionUpdate is the per-tick state of one player. It travels as a
// msgpack binary frame.
type PositionUpdate struct {
	ID         string  `json:"id" msgpack:"id"`
	X          float64 `json:"x" msgpack:"x"`
	Y          float64 `json:"y" msgpack:"y"`
	VX         float64 `json:"vx" msgpack:"vx"`
	VY         float64 `json:"vy" msgpack:"vy"`
	Moving     bool    `json:"moving" msgpack:"m"`
	FacingLeft bool    `json:"facingLeft" msgpack:"f"`
}

// WelcomeMsg is sent to a player once they are in a room
type WelcomeMsg struct {
	Code     string         `json:"code"`
	ID       string         `json:"id"`
	Host     bool           `json:"host"`
	Token    string         `json:"token,omitempty"` // host token, host only
	Players  []PlayerJoined `json:"players"`
	Settings LobbySettings  `json:"settings"`
}

// HostMsg hands the host role (and its token) to a player
type HostMsg struct {
	Token string `json:"token"`
}

// GameStartMsg tells everyone the lobby is over
type GameStartMsg struct {
	Code string `json:"code"`
}

// PlayerState is a display snapshot of one player
type PlayerState struct {
	ID         string  `json:"id"`
	Name       string  `json:"n"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Color      int     `json:"c"`
	Moving     bool    `json:"m"`
	FacingLeft bool    `json:"f"`
	Anim       string  `json:"a"`
}

// RoomInfo describes a room for /rooms/{code} and check responses
type RoomInfo struct {
	Code       string `json:"code"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
	Private    bool   `json:"private"`
}

// CheckedMsg is the response to a room check
type CheckedMsg struct {
	Code   string    `json:"code"`
	Exists bool      `json:"exists"`
	Room   *RoomInfo `json:"room,omitempty"`
}

// ErrorMsg sends error to client
type ErrorMsg struct {
	Msg string `json:"msg"`
}
