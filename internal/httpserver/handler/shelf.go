// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Bookclub Contributors

package handler

import (
	"encoding/json"
	"net/http"
)

// modifyShelvesRequest is the PATCH /shelves/exclusive body.
type modifyShelvesRequest struct {
	Op           string `json:"op"`
	VolumeID     string `json:"volume_id"`
	ToShelf      string `json:"to_shelf"`
	SetCompleted *bool  `json:"set_completed"`
}

func (h *Handler) handleGetShelves(w http.ResponseWriter, r *http.Request) {
	us, err := h.shelves.GetUserShelf(r.Context(), r.PathValue("user_id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, us)
}

func (h *Handler) handleModifyShelves(w http.ResponseWriter, r *http.Request) {
	var req modifyShelvesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeText(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	entry, err := h.shelves.ModifyExclusive(
		r.Context(),
		r.PathValue("user_id"),
		req.Op,
		req.VolumeID,
		req.ToShelf,
		req.SetCompleted,
	)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if entry == nil {
		// Remove has no entry to return.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, http.StatusOK, entry)
}
