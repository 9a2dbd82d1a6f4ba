package routes

import (
	"net/http"

	"github.com/clubops/session-system/handlers"
	"github.com/clubops/session-system/metrics"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes собирает HTTP-роутер приложения.
func SetupRoutes(
	eventHandler *handlers.EventHandler,
	adminHandler *handlers.AdminHandler,
	subscriptionHandler *handlers.SubscriptionHandler,
	wsHandler *handlers.WebSocketHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Get("/", eventHandler.ListEvents)
			r.Post("/", eventHandler.CreateEvent)

			r.Route("/{eventID}", func(r chi.Router) {
				r.Get("/", eventHandler.GetEvent)
				r.Post("/rsvp", eventHandler.Rsvp)
				r.Get("/attendees", eventHandler.ListAttendees)
				r.Get("/teams", eventHandler.ListTeams)
				r.Post("/teams/generate", eventHandler.GenerateTeams)
				r.Post("/results", adminHandler.ApplyMatchResults)
				r.Patch("/teams/{teamIndex}/skill", adminHandler.AdjustTeamSkill)
			})
		})

		r.Route("/players", func(r chi.Router) {
			r.Get("/", adminHandler.ListPlayers)
			r.Put("/{playerID}/skill", adminHandler.SetPlayerSkill)
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Get("/", subscriptionHandler.List)
			r.Post("/", subscriptionHandler.Register)
			r.Delete("/", subscriptionHandler.Unregister)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/templates", adminHandler.ListTemplates)
			r.Post("/events/now", adminHandler.CreateEventNow)
			r.Post("/schedule/run", adminHandler.RunScheduleCycle)
			r.Post("/dispatch/run", adminHandler.RunDispatchCycle)
		})
	})

	r.Get("/ws/events/{eventID}", wsHandler.ServeEvent)

	return r
}
