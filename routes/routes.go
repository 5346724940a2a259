package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/leagueforge/league-engine/handlers"
	"github.com/leagueforge/league-engine/middleware"
)

// SetupRoutes wires the admin API. Reads are public; everything that
// mutates (seasons, imports) requires an admin token.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret []byte,
	authHandler *handlers.AuthHandler,
	seasonHandler *handlers.SeasonHandler,
	importHandler *handlers.ImportHandler,
	standingsHandler *handlers.StandingsHandler,
	statsHandler *handlers.StatsHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Post("/auth/login", authHandler.Login)

	router.Route("/seasons", func(r chi.Router) {
		r.Get("/", seasonHandler.List)
		r.Get("/suggest-id", seasonHandler.SuggestNextID)
		r.Get("/{seasonID}", seasonHandler.Get)
		r.Get("/{seasonID}/standings", standingsHandler.GetSeasonStandings)
		r.Get("/{seasonID}/standings/{playerID}", standingsHandler.GetPlayerStanding)
		r.Get("/{seasonID}/tournaments", importHandler.ListTournaments)
		r.Get("/{seasonID}/live", webSocketHandler.Subscribe)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.Authorize("admin"))

			r.Post("/", seasonHandler.Create)
			r.Post("/{seasonID}/close", seasonHandler.Close)
			r.Post("/{seasonID}/archive", seasonHandler.Archive)
			r.Post("/{seasonID}/imports", importHandler.Import)
		})
	})

	router.Get("/tournaments/{tournamentID}", importHandler.GetTournament)

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Use(middleware.Authorize("admin"))

		r.Delete("/tournaments/{tournamentID}", importHandler.DeleteTournament)
	})

	router.Get("/players/{playerID}/dashboard", statsHandler.PlayerDashboard)
	router.Get("/leaderboard", statsHandler.Leaderboard)
}
