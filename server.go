package main

import (
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

const (
	qrSize       = 256
	statsMaxDays = 90
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("write response")
	}
}

// SetupRoutes configures HTTP routes. publicURL is the base used in QR join
// links; clientDir, when set, is served as static files.
func SetupRoutes(hub *Hub, publicURL, clientDir string) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{
			"rooms":   hub.rooms.RoomCount(),
			"clients": hub.ClientCount(),
			"conns":   hub.TotalConns(),
		})
	})
	r.Get("/ws", serveWS(hub))
	r.Get("/rooms", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, hub.rooms.ListRooms())
	})
	r.Get("/rooms/{code}", roomInfo(hub))
	r.Get("/qr/{code}.png", roomQR(hub, publicURL))
	r.Get("/stats", stats(hub))
	r.Get("/stats/rooms/{code}", roomHistory(hub))

	if clientDir != "" {
		fs := http.FileServer(http.Dir(clientDir))
		r.Get("/join/{code}", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, filepath.Join(clientDir, "index.html"))
		})
		r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-cache")
			fs.ServeHTTP(w, r)
		}))
	}
	return r
}

func serveWS(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		if !hub.CanAccept(ip) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Str("addr", ip).Msg("upgrade")
			return
		}

		hub.TrackConnect(ip)

		client := NewClient(hub, conn, ip)
		hub.register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}

func roomInfo(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := hub.rooms.GetRoom(strings.ToUpper(chi.URLParam(r, "code")))
		if room == nil {
			writeJSON(w, http.StatusNotFound, ErrorMsg{Msg: ErrRoomNotFound.Error()})
			return
		}
		writeJSON(w, http.StatusOK, room.Info())
	}
}

func roomQR(hub *Hub, publicURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := strings.ToUpper(chi.URLParam(r, "code"))
		if hub.rooms.GetRoom(code) == nil {
			http.Error(w, ErrRoomNotFound.Error(), http.StatusNotFound)
			return
		}
		png, err := qrcode.Encode(joinURL(publicURL, code), qrcode.Medium, qrSize)
		if err != nil {
			log.Error().Err(err).Str("room", code).Msg("qr encode")
			http.Error(w, "qr encode failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(png)
	}
}

func joinURL(publicURL, code string) string {
	return strings.TrimRight(publicURL, "/") + "/join/" + code
}

func stats(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days := 7
		if v := r.URL.Query().Get("days"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > statsMaxDays {
				writeJSON(w, http.StatusBadRequest, ErrorMsg{Msg: "days must be 1-90"})
				return
			}
			days = n
		}
		counts, err := hub.analytics.EventCounts(days)
		if err != nil {
			log.Error().Err(err).Msg("stats query")
			writeJSON(w, http.StatusInternalServerError, ErrorMsg{Msg: "stats unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"days":   days,
			"events": counts,
			"rooms":  hub.rooms.RoomCount(),
		})
	}
}

type historyEntry struct {
	Type     string `json:"type"`
	PlayerID string `json:"player,omitempty"`
	Data     string `json:"data,omitempty"`
	At       string `json:"at"`
}

func roomHistory(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := strings.ToUpper(chi.URLParam(r, "code"))
		events, err := hub.analytics.RoomHistory(code)
		if err != nil {
			log.Error().Err(err).Str("room", code).Msg("room history query")
			writeJSON(w, http.StatusInternalServerError, ErrorMsg{Msg: "stats unavailable"})
			return
		}
		out := make([]historyEntry, 0, len(events))
		for _, e := range events {
			out = append(out, historyEntry{
				Type:     e.Type,
				PlayerID: e.PlayerID,
				Data:     e.Data,
				At:       e.Timestamp.Format(time.RFC3339),
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}
