package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/playstudy/playstudy-api/internal/httperr"
	"github.com/playstudy/playstudy-api/internal/storage"
	"github.com/playstudy/playstudy-api/internal/token"
	"github.com/playstudy/playstudy-api/internal/user"
)

type googleLoginRequest struct {
	IDToken string `json:"id_token"`
}

type loginRequest struct {
	Email string `json:"email"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type registerRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

type tokenResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	TokenType    string     `json:"token_type"`
	User         *user.User `json:"user"`
}

// handleGoogleLogin verifies a Google ID token against the configured client
// id and creates the account on first sight, or refreshes the profile and
// last-login timestamp on a returning one.
func (h *Handler) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		httperr.Write(w, err)
		return
	}
	if req.IDToken == "" {
		httperr.Write(w, httperr.Validation("id_token is required"))
		return
	}

	profile, err := h.verifier.Verify(r.Context(), req.IDToken)
	if err != nil {
		h.logger.Warn("google id token rejected", "error", err)
		httperr.Write(w, httperr.Authentication("invalid Google ID token"))
		return
	}

	u, err := h.users.CreateOrUpdate(r.Context(), profile.Email, profile.Name, profile.Image)
	if err != nil {
		h.logger.Error("google login failed", "email", profile.Email, "error", err)
		httperr.Write(w, httperr.Server(""))
		return
	}

	h.writeTokenPair(w, u)
}

// handleLogin signs in by email alone. Password checks are intentionally
// absent; Google is the only credentialed path.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		httperr.Write(w, err)
		return
	}
	if req.Email == "" {
		httperr.Write(w, httperr.Validation("email is required"))
		return
	}

	u, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httperr.Write(w, httperr.Authentication("unknown account"))
			return
		}
		h.logger.Error("login lookup failed", "email", req.Email, "error", err)
		httperr.Write(w, httperr.Server(""))
		return
	}

	h.writeTokenPair(w, u)
}

// handleRefresh exchanges a valid refresh token for a fresh token pair. Both
// tokens rotate; the presented refresh token is not reusable in practice
// because the response replaces it.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		httperr.Write(w, err)
		return
	}
	if req.RefreshToken == "" {
		httperr.Write(w, httperr.Validation("refresh_token is required"))
		return
	}

	claims, err := h.codec.Verify(req.RefreshToken)
	if err != nil {
		httperr.Write(w, httperr.Authentication("invalid refresh token"))
		return
	}
	if claims.TokenType != token.TypeRefresh {
		httperr.Write(w, httperr.Authentication("not a refresh token"))
		return
	}

	u, err := h.users.Get(r.Context(), claims.UserID())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httperr.Write(w, httperr.Authentication("unknown account"))
			return
		}
		h.logger.Error("refresh lookup failed", "user_id", claims.UserID(), "error", err)
		httperr.Write(w, httperr.Server(""))
		return
	}

	h.writeTokenPair(w, u)
}

// handleRegister creates a brand new account; an existing email is a
// conflict, not an update.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		httperr.Write(w, err)
		return
	}
	if req.Email == "" {
		httperr.Write(w, httperr.Validation("email is required"))
		return
	}

	_, err := h.users.GetByEmail(r.Context(), req.Email)
	if err == nil {
		httperr.Write(w, httperr.Conflict("email already registered"))
		return
	}
	if !errors.Is(err, storage.ErrNotFound) {
		h.logger.Error("register lookup failed", "email", req.Email, "error", err)
		httperr.Write(w, httperr.Server(""))
		return
	}

	u, err := h.users.CreateOrUpdate(r.Context(), req.Email, req.Name, req.Image)
	if err != nil {
		h.logger.Error("register failed", "email", req.Email, "error", err)
		httperr.Write(w, httperr.Server(""))
		return
	}

	h.writeTokenPair(w, u)
}

func (h *Handler) writeTokenPair(w http.ResponseWriter, u *user.User) {
	access, err := h.codec.SignAccess(u.ID)
	if err != nil {
		h.logger.Error("failed to sign access token", "user_id", u.ID, "error", err)
		httperr.Write(w, httperr.Server(""))
		return
	}
	refresh, err := h.codec.SignRefresh(u.ID)
	if err != nil {
		h.logger.Error("failed to sign refresh token", "user_id", u.ID, "error", err)
		httperr.Write(w, httperr.Server(""))
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		User:         u,
	})
}

// requireUser is the hard authentication check: a valid, unexpired,
// access-type bearer token whose subject still resolves to a stored account.
// Anything less is a 401 with the Bearer challenge.
func (h *Handler) requireUser(r *http.Request) (*user.User, error) {
	auth := r.Header.Get("Authorization")
	scheme, tok, found := strings.Cut(auth, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || tok == "" {
		return nil, httperr.Authentication("missing bearer token")
	}

	claims, err := h.codec.Verify(tok)
	if err != nil {
		return nil, httperr.Authentication("")
	}
	if claims.TokenType != token.TypeAccess {
		return nil, httperr.Authentication("access token required")
	}

	u, err := h.users.Get(r.Context(), claims.UserID())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, httperr.Authentication("unknown account")
		}
		return nil, err
	}
	return u, nil
}
