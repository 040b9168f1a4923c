// internal/api/stats_handler.go
package api

import (
	"net/http"
	"strconv"
)

// GET /results?limit=20
func (h *Handler) listResults(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	results, err := h.store.ListResults(limit)
	if err != nil {
		h.logger.Error("failed to load results", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load results")
		return
	}

	payload := make([]ResultPayload, len(results))
	for i, res := range results {
		payload[i] = resultPayload(res)
	}
	respondJSON(w, http.StatusOK, payload)
}

// GET /stats
func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	agg, err := h.store.GetAggregate()
	if err != nil {
		h.logger.Error("failed to load aggregate", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load statistics")
		return
	}
	respondJSON(w, http.StatusOK, agg)
}
