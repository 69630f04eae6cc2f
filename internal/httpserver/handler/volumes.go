// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Bookclub Contributors

package handler

import (
	"net/http"
	"strconv"

	"github.com/bookclub/bookclub/internal/volumes"
)

func (h *Handler) handleSearchVolumes(w http.ResponseWriter, r *http.Request) {
	result, err := h.volumes.Search(r.Context(), r.URL.Query().Get("q"))
	h.writeVolumesResult(w, "search", result, err)
}

func (h *Handler) handleGetVolume(w http.ResponseWriter, r *http.Request) {
	result, err := h.volumes.Get(r.Context(), r.PathValue("volume_id"))
	h.writeVolumesResult(w, "get", result, err)
}

func (h *Handler) handleTopTen(w http.ResponseWriter, r *http.Request) {
	result, err := h.volumes.TopTen(r.Context())
	h.writeVolumesResult(w, "top_ten", result, err)
}

// writeVolumesResult forwards the upstream body and status verbatim and
// records the upstream outcome.
func (h *Handler) writeVolumesResult(w http.ResponseWriter, operation string, result *volumes.Result, err error) {
	if err != nil {
		if h.metrics != nil {
			h.metrics.BooksAPIRequests.WithLabelValues(operation, "error").Inc()
		}
		h.writeServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.BooksAPIRequests.
			WithLabelValues(operation, strconv.Itoa(result.Status)).Inc()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(result.Status)
	//nolint:errcheck // nothing useful to do when the client is gone
	w.Write(result.Body)
}
