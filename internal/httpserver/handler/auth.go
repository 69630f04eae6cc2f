// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Bookclub Contributors

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/bookclub/bookclub/pkg/errutil"
)

// registerRequest is the POST /register body.
type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// loginRequest is the POST /login body.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// deactivateRequest is the POST /deactivate body.
type deactivateRequest struct {
	AccessToken string `json:"access_token"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeText(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	grant, err := h.auth.Register(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	// The default profile is part of registration, but the account and
	// token already exist; a profile write failure must not fail the
	// request.
	if h.profiles != nil {
		if _, err := h.profiles.CreateDefault(r.Context(), grant.UserID, grant.Username); err != nil {
			errutil.LogError(h.logger, "default profile creation failed", err)
		}
	}

	h.writeJSON(w, http.StatusOK, grant)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeText(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	grant, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if h.metrics != nil {
			h.metrics.AuthFailuresTotal.WithLabelValues(errutil.Code(err)).Inc()
		}
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, grant)
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	var req deactivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeText(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.auth.Logout(r.Context(), req.AccessToken); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeText(w, http.StatusOK, "Successfully deleted token")
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	info, err := h.auth.GetUserByUsername(r.Context(), r.PathValue("username"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, info)
}

// handleProtectedDemo is the guarded placeholder route; the guard has
// already verified the token by the time it runs.
func (h *Handler) handleProtectedDemo(w http.ResponseWriter, _ *http.Request) {
	h.writeText(w, http.StatusOK, "Successfully accessed data using correct credentials")
}
