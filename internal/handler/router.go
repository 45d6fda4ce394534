package handler

import (
	"log/slog"
	"net/http"

	"github.com/Shivanand-hulikatti/event-reservations/internal/auth"
	"github.com/Shivanand-hulikatti/event-reservations/internal/model"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RouterDeps carries everything NewRouter wires together.
type RouterDeps struct {
	Events       EventService
	Reservations ReservationService
	Auth         *auth.Authenticator
	Logger       *slog.Logger
	CORSOrigins  []string
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
}

// NewRouter builds the chi router for the whole API.
func NewRouter(d RouterDeps) http.Handler {
	events := NewEventHandler(d.Events, d.Logger)
	reservations := NewReservationHandler(d.Reservations, d.Logger)
	authn := auth.NewMiddleware(d.Auth, WriteServiceError)
	adminOnly := authn.RequireRole(model.RoleAdmin)

	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(d.Logger))        // structured access log
	r.Use(CORS(d.CORSOrigins))
	r.Use(Metrics)

	r.Get("/health", HealthCheck)
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(authn.Authenticate)

		r.Route("/events", func(r chi.Router) {
			r.Get("/", events.ListEvents)
			r.Get("/{id}", events.GetEvent)
			r.With(adminOnly).Post("/", events.CreateEvent)
			r.With(adminOnly).Patch("/{id}/status", events.UpdateStatus)
		})

		r.Route("/reservations", func(r chi.Router) {
			r.Post("/", reservations.Reserve)
			r.Get("/", reservations.List)
			r.Get("/{id}", reservations.Get)
			r.Patch("/{id}/cancel", reservations.Cancel)
			r.With(adminOnly).Patch("/{id}/status", reservations.UpdateStatus)
		})
	})

	return r
}
