package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/blackjack-arena/handlers"
	"github.com/Dosada05/blackjack-arena/live"
	"github.com/Dosada05/blackjack-arena/middleware"
	"github.com/Dosada05/blackjack-arena/repositories"
	"github.com/Dosada05/blackjack-arena/routes"
	"github.com/Dosada05/blackjack-arena/services"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/websocket"
)

var secret = []byte("api-test-secret")

type api struct {
	t      *testing.T
	server *httptest.Server
	hub    *live.Hub
}

func newAPI(t *testing.T) *api {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := repositories.NewBoltStore(filepath.Join(t.TempDir(), "arena.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	hub := live.NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	opts := services.TournamentServiceOptions{Retry: services.RetryOptions{Min: time.Millisecond, Max: time.Millisecond}}
	ts := services.NewTournamentService(store, hub, nil, opts, logger)

	router := chi.NewRouter()
	routes.SetupRoutes(router, routes.Deps{
		Tournaments:  handlers.NewTournamentHandler(ts),
		Stats:        handlers.NewStatsHandler(services.NewStatsService(store, services.StatsServiceOptions{}, logger)),
		Sessions:     handlers.NewSessionHandler(services.NewSessionService(store, opts, logger)),
		WebSocket:    handlers.NewWebSocketHandler(hub, ts, nil),
		Authenticate: middleware.Authenticate(secret, services.NewPlayerService(store), logger),
		RateLimit:    middleware.NewRateLimiter(1000, 1000).Middleware,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &api{t: t, server: server, hub: hub}
}

func token(t *testing.T, playerID, name string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"player_id":    playerID,
		"display_name": name,
		"exp":          time.Now().Add(time.Hour).Unix(),
	}).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

// do sends body as JSON and decodes the JSON response into a generic map.
func (a *api) do(method, path, playerID string, body interface{}) (int, map[string]interface{}) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	if err != nil {
		a.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if playerID != "" {
		req.Header.Set("Authorization", "Bearer "+token(a.t, playerID, "Player "+playerID))
	}

	resp, err := a.server.Client().Do(req)
	if err != nil {
		a.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	out := map[string]interface{}{}
	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			a.t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
	return resp.StatusCode, out
}

func (a *api) expect(method, path, playerID string, body interface{}, wantStatus int, wantCode string) map[string]interface{} {
	a.t.Helper()
	status, out := a.do(method, path, playerID, body)
	if status != wantStatus {
		a.t.Fatalf("%s %s: expected status %d, got %d: %v", method, path, wantStatus, status, out)
	}
	if wantCode != "" && out["code"] != wantCode {
		a.t.Fatalf("%s %s: expected code %q, got %v", method, path, wantCode, out["code"])
	}
	return out
}

func (a *api) createTournament(host string, maxPlayers int) int64 {
	a.t.Helper()
	out := a.expect(http.MethodPost, "/api/tournaments", host, map[string]interface{}{
		"name":        "API Cup",
		"format":      "bankroll_challenge",
		"max_players": maxPlayers,
		"start_time":  time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
	}, http.StatusCreated, "")
	tournament := out["tournament"].(map[string]interface{})
	return int64(tournament["id"].(float64))
}

func TestTournamentFlowOverHTTP(t *testing.T) {
	a := newAPI(t)
	id := a.createTournament("host", 2)
	base := fmt.Sprintf("/api/tournaments/%d", id)

	a.expect(http.MethodPost, base+"/join", "", nil, http.StatusUnauthorized, "unauthenticated")

	joined := a.expect(http.MethodPost, base+"/join", "alice", nil, http.StatusCreated, "")
	entry := joined["entry"].(map[string]interface{})
	if entry["display_name"] != "Player alice" || entry["rank"] != nil {
		t.Fatalf("unexpected entry: %v", entry)
	}
	a.expect(http.MethodPost, base+"/join", "bob", nil, http.StatusCreated, "")
	a.expect(http.MethodPost, base+"/join", "carol", nil, http.StatusConflict, services.CodeFull)
	a.expect(http.MethodPost, base+"/join", "alice", nil, http.StatusConflict, services.CodeAlreadyJoined)

	a.expect(http.MethodPost, base+"/submit", "alice", map[string]interface{}{"final_balance": -5}, http.StatusUnprocessableEntity, services.CodeValidation)
	a.expect(http.MethodPost, base+"/submit", "alice", map[string]interface{}{"final_balance": 1500, "hands_played": 40, "extra": 1}, http.StatusBadRequest, "bad_request")

	submitted := a.expect(http.MethodPost, base+"/submit", "alice", map[string]interface{}{"final_balance": 1500, "hands_played": 40}, http.StatusOK, "")
	if rank := submitted["entry"].(map[string]interface{})["rank"]; rank != float64(1) {
		t.Fatalf("expected rank 1, got %v", rank)
	}
	a.expect(http.MethodPost, base+"/submit", "alice", map[string]interface{}{"final_balance": 1, "hands_played": 1}, http.StatusConflict, services.CodeAlreadySubmitted)
	a.expect(http.MethodPost, base+"/submit", "bob", map[string]interface{}{"final_balance": 1200, "hands_played": 35}, http.StatusOK, "")

	board := a.expect(http.MethodGet, base+"/leaderboard", "", nil, http.StatusOK, "")
	rows := board["leaderboard"].([]interface{})
	if len(rows) != 2 || rows[0].(map[string]interface{})["player_id"] != "alice" || rows[1].(map[string]interface{})["rank"] != float64(2) {
		t.Fatalf("unexpected leaderboard: %v", rows)
	}

	detail := a.expect(http.MethodGet, base, "", nil, http.StatusOK, "")
	if status := detail["tournament"].(map[string]interface{})["status"]; status != "completed" {
		t.Fatalf("expected completed, got %v", status)
	}
	a.expect(http.MethodPost, base+"/join", "dave", nil, http.StatusConflict, services.CodeClosed)

	a.expect(http.MethodDelete, base, "alice", nil, http.StatusForbidden, services.CodeForbidden)
	a.expect(http.MethodDelete, base, "host", nil, http.StatusNoContent, "")
	a.expect(http.MethodGet, base, "", nil, http.StatusNotFound, services.CodeNotFound)
}

func TestRequestErrors(t *testing.T) {
	a := newAPI(t)

	a.expect(http.MethodGet, "/api/tournaments/abc", "", nil, http.StatusBadRequest, "bad_request")
	a.expect(http.MethodGet, "/api/tournaments/0", "", nil, http.StatusBadRequest, "bad_request")
	a.expect(http.MethodGet, "/api/tournaments?status=paused", "", nil, http.StatusUnprocessableEntity, services.CodeValidation)
	a.expect(http.MethodPost, "/api/tournaments/77/join", "alice", nil, http.StatusNotFound, services.CodeNotFound)
	a.expect(http.MethodGet, "/api/leaderboard?limit=-1", "", nil, http.StatusBadRequest, "bad_request")

	out := a.expect(http.MethodPost, "/api/tournaments", "host", map[string]interface{}{"format": "bankroll_challenge"}, http.StatusUnprocessableEntity, services.CodeValidation)
	fields := out["fields"].(map[string]interface{})
	if _, ok := fields["name"]; !ok {
		t.Fatalf("expected a name problem, got %v", fields)
	}
}

func TestSessionsAndStatsOverHTTP(t *testing.T) {
	a := newAPI(t)

	out := a.expect(http.MethodPost, "/api/sessions", "alice", map[string]interface{}{}, http.StatusCreated, "")
	sessionID := int64(out["session"].(map[string]interface{})["id"].(float64))
	path := fmt.Sprintf("/api/sessions/%d", sessionID)

	a.expect(http.MethodPost, path+"/hands", "alice", map[string]interface{}{"bet": 100, "payout": 250, "outcome": "blackjack"}, http.StatusCreated, "")
	a.expect(http.MethodPost, path+"/hands", "alice", map[string]interface{}{"bet": 100, "outcome": "loss"}, http.StatusCreated, "")
	a.expect(http.MethodPost, path+"/hands", "alice", map[string]interface{}{"hand_number": 1, "bet": 100, "outcome": "win"}, http.StatusConflict, services.CodeConflict)
	a.expect(http.MethodGet, path, "bob", nil, http.StatusNotFound, services.CodeNotFound)

	a.expect(http.MethodPost, path+"/complete", "alice", map[string]interface{}{"final_balance": 1150}, http.StatusOK, "")
	a.expect(http.MethodPost, path+"/complete", "alice", map[string]interface{}{"final_balance": 1150}, http.StatusConflict, services.CodeConflict)

	session := a.expect(http.MethodGet, path, "alice", nil, http.StatusOK, "")["session"].(map[string]interface{})
	if hands := session["hands"].([]interface{}); len(hands) != 2 {
		t.Fatalf("expected 2 hands, got %d", len(hands))
	}

	mine := a.expect(http.MethodGet, "/api/stats/me", "alice", nil, http.StatusOK, "")["stats"].(map[string]interface{})
	if mine["total_hands"] != float64(2) || mine["win_rate"] != float64(50) || mine["total_profit"] != float64(150) || mine["blackjacks"] != float64(1) {
		t.Fatalf("unexpected stats: %v", mine)
	}

	public := a.expect(http.MethodGet, "/api/players/alice/stats", "", nil, http.StatusOK, "")["stats"].(map[string]interface{})
	if public["display_name"] != "Player alice" {
		t.Fatalf("expected display name from the token, got %v", public["display_name"])
	}

	board := a.expect(http.MethodGet, "/api/leaderboard?limit=10", "", nil, http.StatusOK, "")["leaderboard"].([]interface{})
	if len(board) != 1 || board[0].(map[string]interface{})["sessions_played"] != float64(1) {
		t.Fatalf("unexpected leaderboard: %v", board)
	}
}

func TestLiveEventsOverWebSocket(t *testing.T) {
	a := newAPI(t)
	id := a.createTournament("host", 4)
	wsURL := "ws" + strings.TrimPrefix(a.server.URL, "http") + fmt.Sprintf("/ws/tournaments/%d", id)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(a.server.URL, "http")+"/ws/tournaments/999", nil)
	if err == nil || resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown tournament, got err=%v resp=%v", err, resp)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for a.hub.RoomSize(id) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never joined the room")
		}
		time.Sleep(5 * time.Millisecond)
	}

	a.expect(http.MethodPost, fmt.Sprintf("/api/tournaments/%d/join", id), "alice", nil, http.StatusCreated, "")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event struct {
		ID           string `json:"id"`
		Type         string `json:"type"`
		TournamentID int64  `json:"tournament_id"`
		Entry        struct {
			PlayerID string `json:"player_id"`
		} `json:"entry"`
	}
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if event.Type != "entry_joined" || event.TournamentID != id || event.Entry.PlayerID != "alice" || event.ID == "" {
		t.Fatalf("unexpected event: %+v", event)
	}
}
