package routes

import (
	"github.com/foosleague/ladder-system/handlers"
	"github.com/foosleague/ladder-system/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Player     *handlers.PlayerHandler
	Match      *handlers.MatchHandler
	Tournament *handlers.TournamentHandler
	WebSocket  *handlers.WebSocketHandler
}

// Setup builds the full router: public reads, token-guarded writes,
// the websocket feed, and the API docs.
func Setup(h Handlers, jwtSecret string) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)

	router.Post("/auth/register", h.Auth.Register)
	router.Post("/auth/login", h.Auth.Login)

	router.Route("/players", func(r chi.Router) {
		r.Get("/", h.Player.List)
		r.Get("/{playerID}", h.Player.Get)
		r.Get("/{playerID}/stats", h.Player.Stats)
		r.Get("/{playerID}/head-to-head/{opponentID}", h.Player.HeadToHead)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{playerID}/avatar", h.Player.UploadAvatar)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/", h.Match.List)
		r.Get("/{matchID}", h.Match.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", h.Match.Create)
			r.Put("/{matchID}", h.Match.Update)
			r.Delete("/{matchID}", h.Match.Delete)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/{tournamentID}", h.Tournament.Get)
		r.Get("/{tournamentID}/standings", h.Tournament.Standings)
		r.Get("/{tournamentID}/matches", h.Tournament.Matches)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/", h.Tournament.List)
			r.Post("/", h.Tournament.Create)
			r.Put("/{tournamentID}", h.Tournament.Update)
			r.Delete("/{tournamentID}", h.Tournament.Delete)
			r.Post("/{tournamentID}/players", h.Tournament.AddPlayer)
			r.Delete("/{tournamentID}/players/{playerID}", h.Tournament.RemovePlayer)
			r.Post("/{tournamentID}/end", h.Tournament.End)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	router.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	return router
}
