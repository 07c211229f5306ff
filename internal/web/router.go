package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/jmadden/clubhouse/internal/metrics"
	"github.com/jmadden/clubhouse/internal/service"
)

// RouterDeps carries everything the router needs wired in.
type RouterDeps struct {
	Handlers *Handlers
	Auth     *service.AuthService
}

// NewRouter assembles the full middleware chain and route table.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(RequestIDTracing())
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(HTTPLogger())
	r.Use(Metrics())

	h := deps.Handlers

	r.Get("/healthz", h.Healthz)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(CurrentUser(deps.Auth))

		// Public pages
		r.Get("/", h.HomePage)
		r.Get("/users/register", h.RegistrationForm)
		r.Post("/users/register", h.Register)
		r.Get("/login", h.LoginForm)
		r.Post("/login", h.Login)

		// Members
		r.Group(func(r chi.Router) {
			r.Use(RequireAuthenticated)

			r.Get("/dashboard", h.Dashboard)
			r.Get("/messages/new", h.NewMessageForm)
			r.Post("/messages/new", h.PostMessage)
			r.Get("/logout", h.Logout)
		})

		// Admin
		r.With(RequireAdmin).Delete("/messages/{messageID}", h.DeleteMessage)
	})

	return r
}
