package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/leagueforge/league-engine/live"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The admin UI is served from another origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub    *live.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *live.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// Subscribe upgrades the connection and joins the client to the season's
// room. The client receives the full standings table after every recompute.
func (h *WebSocketHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	seasonID := chi.URLParam(r, "seasonID")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			slog.String("season_id", seasonID), slog.Any("error", err))
		return
	}

	client := live.NewClient(h.hub, conn, seasonID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
