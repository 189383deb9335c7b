package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/playstudy/playstudy-api/internal/httperr"
	"github.com/playstudy/playstudy-api/internal/storage"
)

type createUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

type updateUserRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

type addXPRequest struct {
	Points int64 `json:"points"`
}

const defaultListLimit = 50

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.requireUser(r)
	if err != nil {
		httperr.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireUser(r); err != nil {
		httperr.Write(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httperr.Write(w, httperr.NotFound("user", id))
			return
		}
		h.logger.Error("user lookup failed", "user_id", id, "error", err)
		httperr.Write(w, httperr.Server(""))
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) handleGetUserByEmail(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireUser(r); err != nil {
		httperr.Write(w, err)
		return
	}

	email := chi.URLParam(r, "email")
	u, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httperr.Write(w, httperr.NotFound("user", email))
			return
		}
		h.logger.Error("user lookup failed", "email", email, "error", err)
		httperr.Write(w, httperr.Server(""))
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// handleCreateUser is create-or-update by email and deliberately does not
// require authentication; it backs first-contact clients that have not yet
// obtained a token.
func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		httperr.Write(w, err)
		return
	}
	if req.Email == "" {
		httperr.Write(w, httperr.Validation("email is required"))
		return
	}

	u, err := h.users.CreateOrUpdate(r.Context(), req.Email, req.Name, req.Image)
	if err != nil {
		h.logger.Error("user create failed", "email", req.Email, "error", err)
		httperr.Write(w, httperr.Server(""))
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	caller, err := h.requireUser(r)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	if caller.ID != id {
		httperr.Write(w, httperr.Authorization("cannot modify another user's profile"))
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		httperr.Write(w, err)
		return
	}

	u, err := h.users.UpdateProfile(r.Context(), id, req.Name, req.Image)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httperr.Write(w, httperr.NotFound("user", id))
			return
		}
		h.logger.Error("user update failed", "user_id", id, "error", err)
		httperr.Write(w, httperr.Server(""))
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	caller, err := h.requireUser(r)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	if caller.ID != id {
		httperr.Write(w, httperr.Authorization("cannot delete another user's account"))
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httperr.Write(w, httperr.NotFound("user", id))
			return
		}
		h.logger.Error("user delete failed", "user_id", id, "error", err)
		httperr.Write(w, httperr.Server(""))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddXP(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireUser(r); err != nil {
		httperr.Write(w, err)
		return
	}

	var req addXPRequest
	if err := decodeJSON(r, &req); err != nil {
		httperr.Write(w, err)
		return
	}
	if req.Points < 0 {
		httperr.Write(w, httperr.Validation("points must not be negative"))
		return
	}

	id := chi.URLParam(r, "id")
	u, err := h.users.AddXP(r.Context(), id, req.Points)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httperr.Write(w, httperr.NotFound("user", id))
			return
		}
		h.logger.Error("xp grant failed", "user_id", id, "error", err)
		httperr.Write(w, httperr.Server(""))
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) handleGamePlayed(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireUser(r); err != nil {
		httperr.Write(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	u, err := h.users.RecordGamePlayed(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httperr.Write(w, httperr.NotFound("user", id))
			return
		}
		h.logger.Error("game-played update failed", "user_id", id, "error", err)
		httperr.Write(w, httperr.Server(""))
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireUser(r); err != nil {
		httperr.Write(w, err)
		return
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httperr.Write(w, httperr.Validation("limit must be a positive integer"))
			return
		}
		limit = n
	}

	page, err := h.users.List(r.Context(), limit, r.URL.Query().Get("last_key"))
	if err != nil {
		h.logger.Error("user list failed", "error", err)
		httperr.Write(w, httperr.Server(""))
		return
	}
	writeJSON(w, http.StatusOK, page)
}
