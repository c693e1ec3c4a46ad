// Package handler exposes the session lifecycle and game data over HTTP.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/marathonfantasy/internal/athlete"
	"github.com/dmitrymomot/marathonfantasy/internal/game"
	"github.com/dmitrymomot/marathonfantasy/internal/session"
	"github.com/dmitrymomot/marathonfantasy/pkg/binder"
	"github.com/dmitrymomot/marathonfantasy/pkg/clientip"
	"github.com/dmitrymomot/marathonfantasy/pkg/environment"
	"github.com/dmitrymomot/marathonfantasy/pkg/ratelimit"
)

// Handler wires the API endpoints to their services.
type Handler struct {
	sessions *session.Manager
	games    game.Store
	athletes athlete.Store
	log      *slog.Logger
	env      environment.Environment
}

// Options configures the router.
type Options struct {
	Sessions *session.Manager
	Games    game.Store
	Athletes athlete.Store
	Logger   *slog.Logger
	Env      environment.Environment

	// CreateLimiter caps session creation per client IP; nil disables.
	CreateLimiter *ratelimit.Limiter

	// Healthchecks run under /healthz.
	Healthchecks []Healthcheck
}

// Router builds the chi router with all API routes mounted.
func Router(opts Options) http.Handler {
	h := &Handler{
		sessions: opts.Sessions,
		games:    opts.Games,
		athletes: opts.Athletes,
		log:      opts.Logger,
		env:      opts.Env,
	}
	if h.log == nil {
		h.log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthHandler(opts.Healthchecks))

	r.Route("/api", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			if opts.CreateLimiter != nil {
				limited := ratelimit.Middleware(opts.CreateLimiter, clientip.GetIP)
				r.With(limited).Post("/", h.createSession)
			} else {
				r.Post("/", h.createSession)
			}
			r.Get("/validate", h.validateSession)
			r.Get("/verify", h.verifySession)
			r.Post("/extend", h.extendSession)
			r.Post("/toggle", h.toggleSession)
			r.Delete("/", h.deleteSession)
			r.Post("/logout", h.logout)
		})

		r.Get("/games/{gameID}", h.getGame)
		r.Get("/athletes", h.listAthletes)
	})

	return r
}

type createSessionRequest struct {
	SessionType string `json:"session_type"`
	DisplayName string `json:"display_name,omitempty"`
	GameID      string `json:"game_id,omitempty"`
	PlayerCode  string `json:"player_code,omitempty"`
	ExpiryDays  int    `json:"expiry_days,omitempty"`
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := binder.JSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	result, err := h.sessions.Create(r.Context(), w, session.CreateRequest{
		Type:        session.Type(req.SessionType),
		DisplayName: req.DisplayName,
		GameID:      req.GameID,
		PlayerCode:  req.PlayerCode,
		ExpiryDays:  req.ExpiryDays,
	}, session.ClientMeta{
		IP:        clientip.GetIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respond(w, http.StatusCreated, result)
}

func (h *Handler) validateSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Validate(r.Context(), w, r.URL.Query().Get("token"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, s)
}

func (h *Handler) verifySession(w http.ResponseWriter, r *http.Request) {
	result, err := h.sessions.Verify(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	// Present-but-invalid is a value-shaped failure: 401 with the payload
	// so the client can offer renewal
	if !result.IsValid {
		h.respond(w, http.StatusUnauthorized, result)
		return
	}
	h.respond(w, http.StatusOK, result)
}

type extendSessionRequest struct {
	Token          string `json:"token"`
	AdditionalDays int    `json:"additional_days,omitempty"`
}

func (h *Handler) extendSession(w http.ResponseWriter, r *http.Request) {
	var req extendSessionRequest
	if err := binder.JSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	expiresAt, err := h.sessions.Extend(r.Context(), req.Token, req.AdditionalDays)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respond(w, http.StatusOK, map[string]any{"expires_at": expiresAt})
}

type identifierRequest struct {
	Token      string `json:"token,omitempty"`
	GameID     string `json:"game_id,omitempty"`
	PlayerCode string `json:"player_code,omitempty"`
	Legacy     bool   `json:"legacy,omitempty"`
}

func (r identifierRequest) identifier() session.Identifier {
	return session.Identifier{
		Token:      r.Token,
		GameID:     r.GameID,
		PlayerCode: r.PlayerCode,
		Legacy:     r.Legacy,
	}
}

func (h *Handler) toggleSession(w http.ResponseWriter, r *http.Request) {
	var req identifierRequest
	if err := binder.JSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	result, err := h.sessions.ToggleActive(r.Context(), req.identifier())
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respond(w, http.StatusOK, result)
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	var req identifierRequest
	if err := binder.JSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	result, err := h.sessions.HardDelete(r.Context(), w, req.identifier())
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respond(w, http.StatusOK, result)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(w)
	h.respond(w, http.StatusOK, map[string]any{"logged_out": true})
}

func (h *Handler) getGame(w http.ResponseWriter, r *http.Request) {
	g, err := h.games.Get(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, g)
}

func (h *Handler) listAthletes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		// Bad limits fall back to the default rather than erroring; the
		// gender filter is the meaningful input
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	gender, limit, err := athlete.NormalizeQuery(q.Get("gender"), limit)
	if err != nil {
		h.respondError(w, err)
		return
	}

	athletes, err := h.athletes.List(r.Context(), gender, limit)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respond(w, http.StatusOK, athletes)
}
