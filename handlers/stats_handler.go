package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Dosada05/blackjack-arena/services"
	"github.com/go-chi/chi/v5"
)

type StatsHandler struct {
	statsService *services.StatsService
}

func NewStatsHandler(ss *services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: ss}
}

// GlobalLeaderboardHandler обрабатывает GET /api/leaderboard?limit=
func (h *StatsHandler) GlobalLeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n <= 0 {
			badRequestResponse(w, r, errors.New("invalid limit query parameter"))
			return
		}
		limit = n
	}

	rows, err := h.statsService.GlobalLeaderboard(r.Context(), limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": rows}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MyStatsHandler обрабатывает GET /api/stats/me
func (h *StatsHandler) MyStatsHandler(w http.ResponseWriter, r *http.Request) {
	playerID, ok := currentPlayer(w, r)
	if !ok {
		return
	}
	h.writeStats(w, r, playerID)
}

// PlayerStatsHandler обрабатывает GET /api/players/{playerID}/stats
func (h *StatsHandler) PlayerStatsHandler(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	if playerID == "" {
		badRequestResponse(w, r, errors.New("missing playerID in URL path"))
		return
	}
	h.writeStats(w, r, playerID)
}

func (h *StatsHandler) writeStats(w http.ResponseWriter, r *http.Request, playerID string) {
	stats, err := h.statsService.PlayerStats(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"stats": stats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
