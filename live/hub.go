// Package live транслирует обновления события (новая генерация команд)
// подключённым по WebSocket клиентам, сгруппированным по комнатам событий.
package live

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/clubops/session-system/models"
)

// Message — конверт всех сообщений хаба.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

// Hub ведёт комнаты и рассылает сообщения их клиентам.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	rooms  map[string]map[*Client]bool
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

// EventRoom возвращает идентификатор комнаты события.
func EventRoom(eventID int) string {
	return fmt.Sprintf("event_%d", eventID)
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			h.logger.Debug("live client registered",
				slog.String("room", client.Room),
				slog.Int("clients", len(h.rooms[client.Room])),
			)
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.Room]; ok {
				if _, registered := clients[client]; registered {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.Room)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastTeamsGenerated реализует services.TeamsBroadcaster: клиенты
// комнаты события получают свежий список команд.
func (h *Hub) BroadcastTeamsGenerated(eventID int, generated []*models.Team) {
	h.BroadcastToRoom(EventRoom(eventID), Message{
		Type:    "TEAMS_UPDATED",
		Payload: generated,
		RoomID:  EventRoom(eventID),
	})
}

// BroadcastToRoom отправляет сообщение всем клиентам комнаты. Клиент с
// переполненным каналом пропускается, а не блокирует рассылку.
func (h *Hub) BroadcastToRoom(roomID string, message Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.rooms[roomID]
	if !ok {
		return
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal live message",
			slog.String("room", roomID),
			slog.Any("error", err),
		)
		return
	}

	for client := range clients {
		client.enqueue(messageBytes)
	}
}
