package main

import "encoding/json"

// Transport carries lobby events between this process and the other players.
type Transport interface {
	// SendPosition publishes the local player's state
	SendPosition(upd PositionUpdate) error
	// Subscribe registers h for inbound events until cancel is called
	Subscribe(h EventHandler) (cancel func())
}

// EventHandler receives inbound lobby events. Calls may arrive on any goroutine.
type EventHandler interface {
	OnPlayerJoined(msg PlayerJoined)
	OnPlayerLeft(msg PlayerLeft)
	OnPositionUpdate(upd PositionUpdate)
	OnSettingsChanged(patch json.RawMessage)
	OnHostGranted(token string)
}
