package handlers

import (
	"net/http"

	"github.com/Dosada05/blackjack-arena/services"
)

type SessionHandler struct {
	sessionService *services.SessionService
}

func NewSessionHandler(ss *services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: ss}
}

// StartHandler обрабатывает POST /api/sessions
func (h *SessionHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	playerID, ok := currentPlayer(w, r)
	if !ok {
		return
	}

	var input services.StartSessionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.sessionService.StartSession(r.Context(), playerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHandler обрабатывает GET /api/sessions/{sessionID}
func (h *SessionHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	playerID, ok := currentPlayer(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.sessionService.GetSession(r.Context(), id, playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordHandHandler обрабатывает POST /api/sessions/{sessionID}/hands
func (h *SessionHandler) RecordHandHandler(w http.ResponseWriter, r *http.Request) {
	playerID, ok := currentPlayer(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.RecordHandInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	hand, err := h.sessionService.RecordHand(r.Context(), id, playerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"hand": hand}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CompleteHandler обрабатывает POST /api/sessions/{sessionID}/complete
func (h *SessionHandler) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	playerID, ok := currentPlayer(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		FinalBalance *int `json:"final_balance"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.sessionService.CompleteSession(r.Context(), id, playerID, input.FinalBalance)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
