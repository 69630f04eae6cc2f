// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Bookclub Contributors

package handler

import (
	"encoding/json"
	"net/http"
)

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get(r.Context(), r.PathValue("user_id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeText(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	p, err := h.profiles.UpdateFields(r.Context(), r.PathValue("user_id"), body)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, p)
}
