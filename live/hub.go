// Package live pushes standings refreshes to websocket subscribers. Clients
// join a room per season and receive the full recomputed table after every
// import or season close.
package live

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/leagueforge/league-engine/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

const MessageStandingsUpdated = "STANDINGS_UPDATED"

type Message struct {
	Type     string      `json:"type"`
	SeasonID string      `json:"season_id"`
	Payload  interface{} `json:"payload"`
}

type Client struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	season string

	mu     sync.Mutex
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, seasonID string) *Client {
	return &Client{
		id:     uuid.NewString(),
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 16),
		season: seasonID,
	}
}

type Hub struct {
	register   chan *Client
	unregister chan *Client

	mu     sync.RWMutex
	rooms  map[string]map[*Client]bool
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger.With(slog.String("component", "live_hub")),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.season]; !ok {
				h.rooms[client.season] = make(map[*Client]bool)
			}
			h.rooms[client.season][client] = true
			h.logger.Debug("client joined",
				slog.String("client_id", client.id),
				slog.String("season_id", client.season),
				slog.Int("room_size", len(h.rooms[client.season])),
			)
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.season]; ok {
				if _, okClient := room[client]; okClient {
					client.close()
					delete(room, client)
					if len(room) == 0 {
						delete(h.rooms, client.season)
					}
					h.logger.Debug("client left",
						slog.String("client_id", client.id),
						slog.String("season_id", client.season),
					)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register hands the client to the hub loop. Call ReadPump and WritePump in
// their own goroutines afterwards.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// BroadcastStandings implements services.StandingsBroadcaster.
func (h *Hub) BroadcastStandings(seasonID string, standings []models.SeasonalStanding) {
	h.broadcast(seasonID, Message{
		Type:     MessageStandingsUpdated,
		SeasonID: seasonID,
		Payload:  standings,
	})
}

func (h *Hub) broadcast(seasonID string, message Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, ok := h.rooms[seasonID]
	if !ok {
		return
	}
	payload, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("marshal broadcast", slog.Any("error", err))
		return
	}
	for client := range room {
		client.mu.Lock()
		if client.closed {
			client.mu.Unlock()
			continue
		}
		select {
		case client.send <- payload:
		default:
			// slow consumer, drop the frame rather than block the hub
		}
		client.mu.Unlock()
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		close(c.send)
		c.closed = true
	}
}

// ReadPump discards inbound frames; the stream is broadcast-only. It exists
// to service pongs and to detect disconnects.
func (c *Client) ReadPump() {
	defer func() {
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
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

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
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
