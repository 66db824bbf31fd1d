package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/blackjack-arena/live"
	"github.com/Dosada05/blackjack-arena/services"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub               *live.Hub
	tournamentService *services.TournamentService
	upgrader          websocket.Upgrader
}

// NewWebSocketHandler builds the live events endpoint. An empty allowedOrigins
// accepts every origin.
func NewWebSocketHandler(hub *live.Hub, ts *services.TournamentService, allowedOrigins []string) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &WebSocketHandler{
		hub:               hub,
		tournamentService: ts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin] || allowed["*"]
			},
		},
	}
}

// ServeWs обрабатывает WebSocket запросы для конкретного турнира.
// Клиент должен подключаться к /ws/tournaments/{tournamentID}
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if _, err := h.tournamentService.GetTournament(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		slog.WarnContext(r.Context(), "websocket upgrade failed",
			slog.Int64("tournament_id", tournamentID), slog.Any("error", err))
		return
	}
	h.hub.Serve(conn, tournamentID)
}
