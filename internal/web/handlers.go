package web

import (
	"database/sql"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jmadden/clubhouse/internal/domain"
	"github.com/jmadden/clubhouse/internal/logger"
	"github.com/jmadden/clubhouse/internal/metrics"
	"github.com/jmadden/clubhouse/internal/service"
	"github.com/jmadden/clubhouse/internal/validate"
)

// Handlers holds the HTTP handlers for every page and action.
type Handlers struct {
	auth       *service.AuthService
	messages   *service.MessageService
	render     Renderer
	db         *sql.DB
	sessionTTL time.Duration
}

func NewHandlers(auth *service.AuthService, messages *service.MessageService, render Renderer, db *sql.DB, sessionTTL time.Duration) *Handlers {
	return &Handlers{
		auth:       auth,
		messages:   messages,
		render:     render,
		db:         db,
		sessionTTL: sessionTTL,
	}
}

// Healthz reports liveness, including database reachability.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			logger.WithCtx(r.Context()).Error().Err(err).Msg("healthz db ping failed")
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// HomePage renders the public landing page.
func (h *Handlers) HomePage(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	h.render.Render(w, http.StatusOK, "index", map[string]any{
		"Title": "Club House",
		"User":  user,
	})
}

// RegistrationForm renders the registration page. Logged-in users have
// no business registering again and land on the dashboard instead.
func (h *Handlers) RegistrationForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := UserFromContext(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	h.render.Render(w, http.StatusOK, "registerUser", map[string]any{
		"Title": "User Registration",
		"Form":  map[string]string{},
	})
}

// Register validates the submitted form and creates the account. Any
// failure re-renders the form with the submitted values echoed back
// exactly as typed.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	echo := formEcho(r.PostForm)

	form, fieldErrs := validate.Register(r.PostForm)
	if len(fieldErrs) > 0 {
		h.render.Render(w, http.StatusBadRequest, "registerUser", map[string]any{
			"Title":  "Register New User",
			"Errors": fieldErrs,
			"Form":   echo,
		})
		return
	}

	_, err := h.auth.Register(r.Context(), service.RegisterInput{
		FullName:         form.FullName,
		Username:         form.Username,
		Password:         form.Password,
		Member:           form.Member(),
		Admin:            form.Admin(),
		MembershipSecret: form.MembershipSecret,
	})
	if err != nil {
		if domain.KindOf(err) == domain.KindValidation {
			var de *domain.Error
			msg := "Registration failed."
			if errors.As(err, &de) {
				msg = de.Message
			}
			h.render.Render(w, http.StatusBadRequest, "registerUser", map[string]any{
				"Title":  "Register New User",
				"Errors": []validate.FieldError{{Message: msg}},
				"Form":   echo,
			})
			return
		}
		logger.WithCtx(r.Context()).Error().Err(err).Msg("registering user")
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	metrics.RecordRegistration()
	http.Redirect(w, r, "/login", http.StatusFound)
}

// LoginForm renders the login page with any pending flash message.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := UserFromContext(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	h.render.Render(w, http.StatusOK, "login", map[string]any{
		"Title": "Login",
		"Flash": popFlash(w, r),
		"Form":  map[string]string{},
	})
}

// Login authenticates the submitted credentials and opens a session.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	echo := formEcho(r.PostForm)

	form, fieldErrs := validate.Login(r.PostForm)
	if len(fieldErrs) > 0 {
		h.render.Render(w, http.StatusBadRequest, "login", map[string]any{
			"Title":  "Login",
			"Errors": fieldErrs,
			"Form":   echo,
		})
		return
	}

	token, _, err := h.auth.Login(r.Context(), form.Username, form.Password)
	if err != nil {
		if domain.KindOf(err) == domain.KindAuth {
			metrics.RecordLoginFailed()
			var de *domain.Error
			msg := "Incorrect username or password."
			if errors.As(err, &de) {
				msg = de.Message
			}
			setFlash(w, msg)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		logger.WithCtx(r.Context()).Error().Err(err).Msg("logging in")
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	metrics.RecordLogin()
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// Dashboard lists every message with its author's name.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	msgs, err := h.messages.List(r.Context())
	if err != nil {
		logger.WithCtx(r.Context()).Error().Err(err).Msg("listing messages")
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	h.render.Render(w, http.StatusOK, "dashboard", map[string]any{
		"Title":    "Dashboard",
		"User":     user,
		"Messages": msgs,
	})
}

// NewMessageForm renders the message composer.
func (h *Handlers) NewMessageForm(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	h.render.Render(w, http.StatusOK, "createMessage", map[string]any{
		"Title": "New Message",
		"User":  user,
		"Form":  map[string]string{},
	})
}

// PostMessage validates and stores a new message from the current user.
func (h *Handlers) PostMessage(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	echo := formEcho(r.PostForm)

	form, fieldErrs := validate.Message(r.PostForm)
	if len(fieldErrs) > 0 {
		h.render.Render(w, http.StatusBadRequest, "createMessage", map[string]any{
			"Title":  "New Message",
			"User":   user,
			"Errors": fieldErrs,
			"Form":   echo,
		})
		return
	}

	if _, err := h.messages.Post(r.Context(), user.ID, form.Title, form.Content); err != nil {
		logger.WithCtx(r.Context()).Error().Err(err).Msg("posting message")
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	metrics.RecordMessagePosted()
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// DeleteMessage removes a message by id. Admin-only; the gate runs
// before this handler.
func (h *Handlers) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "messageID"), 10, 64)
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if err := h.messages.Delete(r.Context(), id); err != nil {
		logger.WithCtx(r.Context()).Error().Err(err).Msg("deleting message")
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	metrics.RecordMessageDeleted()
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// Logout destroys the session server-side before redirecting. If the
// store cannot confirm destruction the user stays logged in and sees a
// 500; redirecting anyway would leave a live token behind.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(SessionCookieName)
	if err == nil && c.Value != "" {
		if err := h.auth.Logout(r.Context(), c.Value); err != nil {
			logger.WithCtx(r.Context()).Error().Err(err).Msg("destroying session")
			http.Error(w, "Server error", http.StatusInternalServerError)
			return
		}
	}

	clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// formEcho captures the submitted values exactly as typed, taking the
// last value of repeated fields (checkbox with hidden fallback).
func formEcho(values url.Values) map[string]string {
	echo := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			echo[key] = vals[len(vals)-1]
		}
	}
	return echo
}
