package main

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaveRoomReleasesSeatOnce(t *testing.T) {
	db := openTestDB(t)
	analytics := NewAnalytics(db)
	rooms := NewRoomManager(&DropshipMap)
	hub := NewHub(rooms, NewAuth(nil, []byte("test-secret")), analytics)

	room, err := rooms.CreateRoom(nil)
	require.NoError(t, err)
	_, err = room.Join("p1", "Ada", &recordingSender{})
	require.NoError(t, err)
	_, err = room.Join("p2", "Bob", &recordingSender{})
	require.NoError(t, err)

	c := &Client{hub: hub}
	c.setSeat(room.Code, "p1")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.leaveRoom()
		}()
	}
	wg.Wait()
	analytics.Stop()

	code, id := c.seat()
	assert.Empty(t, code)
	assert.Empty(t, id)
	assert.Equal(t, 1, room.PlayerCount())

	counts, err := analytics.EventCounts(1)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[EvtPlayerLeft])
	assert.Equal(t, 1, counts[EvtHostChanged])
}
