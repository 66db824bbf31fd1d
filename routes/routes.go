package routes

import (
	"net/http"
	"time"

	_ "github.com/Dosada05/blackjack-arena/docs" // registers the swagger document
	"github.com/Dosada05/blackjack-arena/handlers"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Deps struct {
	Tournaments *handlers.TournamentHandler
	Stats       *handlers.StatsHandler
	Sessions    *handlers.SessionHandler
	WebSocket   *handlers.WebSocketHandler

	// Authenticate rejects anonymous requests; RateLimit throttles them.
	Authenticate func(http.Handler) http.Handler
	RateLimit    func(http.Handler) http.Handler

	AllowedOrigins []string
}

func SetupRoutes(router chi.Router, d Deps) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	router.Get("/ws/tournaments/{tournamentID}", d.WebSocket.ServeWs)

	router.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Retry-After"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
		r.Use(chiMiddleware.Timeout(15 * time.Second))

		// Публичные маршруты
		r.Get("/tournaments", d.Tournaments.ListHandler)
		r.Get("/tournaments/{tournamentID}", d.Tournaments.GetByIDHandler)
		r.Get("/tournaments/{tournamentID}/leaderboard", d.Tournaments.LeaderboardHandler)
		r.Get("/leaderboard", d.Stats.GlobalLeaderboardHandler)
		r.Get("/players/{playerID}/stats", d.Stats.PlayerStatsHandler)

		// Маршруты, требующие аутентификации
		r.Group(func(r chi.Router) {
			r.Use(d.Authenticate)
			r.Use(d.RateLimit)

			r.Post("/tournaments", d.Tournaments.CreateHandler)
			r.Delete("/tournaments/{tournamentID}", d.Tournaments.DeleteHandler)
			r.Post("/tournaments/{tournamentID}/join", d.Tournaments.JoinHandler)
			r.Post("/tournaments/{tournamentID}/submit", d.Tournaments.SubmitHandler)

			r.Get("/stats/me", d.Stats.MyStatsHandler)

			r.Post("/sessions", d.Sessions.StartHandler)
			r.Get("/sessions/{sessionID}", d.Sessions.GetHandler)
			r.Post("/sessions/{sessionID}/hands", d.Sessions.RecordHandHandler)
			r.Post("/sessions/{sessionID}/complete", d.Sessions.CompleteHandler)
		})
	})
}
