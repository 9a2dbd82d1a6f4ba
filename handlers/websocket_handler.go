package handlers

import (
	"log/slog"
	"net/http"

	"github.com/clubops/session-system/live"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS для WebSocket настраивается на уровне роутера.
		return true
	},
}

type WebSocketHandler struct {
	hub    *live.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *live.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// ServeEvent подключает клиента к комнате события: он будет получать
// рассылки об обновлении составов команд.
func (h *WebSocketHandler) ServeEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade websocket connection",
			slog.Int("event_id", eventID),
			slog.Any("error", err),
		)
		return
	}

	client := live.NewClient(h.hub, conn, live.EventRoom(eventID))
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
