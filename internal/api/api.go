// Package api implements the REST surface: authentication flows and account
// resources under /api/v1, plus the unauthenticated health endpoints.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/playstudy/playstudy-api/internal/googleauth"
	"github.com/playstudy/playstudy-api/internal/httperr"
	"github.com/playstudy/playstudy-api/internal/service"
	"github.com/playstudy/playstudy-api/internal/token"
)

// Handler carries the dependencies shared by every route.
type Handler struct {
	users     *service.UserService
	codec     *token.Codec
	verifier  googleauth.Verifier
	logger    *slog.Logger
	startTime time.Time
}

func NewHandler(users *service.UserService, codec *token.Codec, verifier googleauth.Verifier, logger *slog.Logger) *Handler {
	return &Handler{
		users:     users,
		codec:     codec,
		verifier:  verifier,
		logger:    logger,
		startTime: time.Now(),
	}
}

// Mount attaches all routes to the router.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/", h.handleRoot)
	r.Get("/health", h.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/google-login", h.handleGoogleLogin)
			r.Post("/login", h.handleLogin)
			r.Post("/refresh", h.handleRefresh)
			r.Post("/register", h.handleRegister)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.handleCreateUser)
			r.Get("/", h.handleListUsers)
			r.Get("/me", h.handleMe)
			r.Get("/email/{email}", h.handleGetUserByEmail)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.handleGetUser)
				r.Put("/", h.handleUpdateUser)
				r.Delete("/", h.handleDeleteUser)
				r.Put("/xp", h.handleAddXP)
				r.Put("/game-played", h.handleGamePlayed)
			})
		})
	})
}

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "PlayStudy API"})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "healthy",
		Uptime: time.Since(h.startTime).String(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the request body into v, answering a validation error on
// malformed input.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return httperr.Validation("invalid request body")
	}
	return nil
}
