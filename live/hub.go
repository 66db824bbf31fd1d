package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/Dosada05/blackjack-arena/models"
)

const broadcastBuffer = 256

type roomMessage struct {
	room    int64
	payload []byte
}

// Hub fans tournament events out to the websocket clients of each tournament room.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan roomMessage
	done       chan struct{}

	mu    sync.RWMutex
	rooms map[int64]map[*Client]bool

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan roomMessage, broadcastBuffer),
		done:       make(chan struct{}),
		rooms:      make(map[int64]map[*Client]bool),
		logger:     logger,
	}
}

// Run processes registrations and broadcasts until ctx is done, then closes
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.room]; !ok {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			size := len(h.rooms[client.room])
			h.mu.Unlock()
			h.logger.Debug("live client registered", slog.Int64("tournament_id", client.room), slog.Int("room_size", size))

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.rooms[msg.room] {
				select {
				case client.send <- msg.payload:
				default:
					h.logger.Warn("live client too slow, dropping", slog.Int64("tournament_id", msg.room))
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for _, clients := range h.rooms {
				for client := range clients {
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

// removeLocked drops client from its room and closes its send channel. h.mu must be held.
func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.rooms[client.room]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.room)
	}
}

// Publish queues event for the event's tournament room. It never blocks: when
// the queue is full the event is dropped.
func (h *Hub) Publish(event models.TournamentEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal live event", slog.String("type", string(event.Type)), slog.Any("error", err))
		return
	}
	select {
	case h.broadcast <- roomMessage{room: event.TournamentID, payload: payload}:
	default:
		h.logger.Warn("live broadcast queue full, event dropped",
			slog.Int64("tournament_id", event.TournamentID), slog.String("type", string(event.Type)))
	}
}

// RoomSize returns how many clients follow a tournament.
func (h *Hub) RoomSize(tournamentID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[tournamentID])
}
