// internal/api/config_handler.go
package api

import (
	"net/http"

	"github.com/denken-cbt/backend/internal/domain/examconfig"
)

type ConfigPayload struct {
	WeightingEnabled bool            `json:"weighting_enabled"`
	SelectedWeights  []int           `json:"selected_weights"`
	WeightRatios     map[int]float64 `json:"weight_ratios"`
	Mode             string          `json:"mode" example:"filter"`
}

func configPayload(cfg examconfig.ExamConfig) ConfigPayload {
	weights := make([]int, 0, len(cfg.SelectedWeights))
	for w := 1; w <= 10; w++ {
		if cfg.SelectedWeights[w] {
			weights = append(weights, w)
		}
	}
	return ConfigPayload{
		WeightingEnabled: cfg.WeightingEnabled,
		SelectedWeights:  weights,
		WeightRatios:     cfg.WeightRatios,
		Mode:             string(cfg.Mode),
	}
}

func (p ConfigPayload) toDomain() examconfig.ExamConfig {
	selected := make(map[int]bool, len(p.SelectedWeights))
	for _, w := range p.SelectedWeights {
		selected[w] = true
	}
	return examconfig.ExamConfig{
		WeightingEnabled: p.WeightingEnabled,
		SelectedWeights:  selected,
		WeightRatios:     p.WeightRatios,
		Mode:             examconfig.WeightMode(p.Mode),
	}.Normalize()
}

// GET /config
func (h *Handler) getConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.store.GetExamConfig()
	if err != nil {
		h.logger.Error("failed to load config", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load config")
		return
	}
	respondJSON(w, http.StatusOK, configPayload(cfg))
}

// PUT /config
func (h *Handler) updateConfig(w http.ResponseWriter, r *http.Request) {
	var req ConfigPayload
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Mode != "" && req.Mode != string(examconfig.ModeFilter) && req.Mode != string(examconfig.ModeRatio) {
		respondError(w, http.StatusBadRequest, "mode must be filter or ratio")
		return
	}
	for _, ratio := range req.WeightRatios {
		if ratio < 0 {
			respondError(w, http.StatusBadRequest, "ratios must be non-negative")
			return
		}
	}

	cfg := req.toDomain()
	if err := h.store.SaveExamConfig(cfg); err != nil {
		h.logger.Error("failed to save config", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save config")
		return
	}
	respondJSON(w, http.StatusOK, configPayload(cfg))
}

// POST /config/reset
func (h *Handler) resetConfig(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ResetExamConfig(); err != nil {
		h.logger.Error("failed to reset config", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to reset config")
		return
	}
	respondJSON(w, http.StatusOK, configPayload(examconfig.Default()))
}
