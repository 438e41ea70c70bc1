package handlers

import (
	"net/http"
)

// GetModelStatus reports the currently cached model artifact
// @Summary Get Model Status
// @Tags Models
// @Accept json
// @Produce json
// @Success 200 {object} models.ModelStatus
// @Router /model/status [get]
func (h *Handler) GetModelStatus(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, h.models.Status())
}

// ReloadModel drops the cached model and force-fetches the published one
// @Summary Reload Model
// @Tags Models
// @Accept json
// @Produce json
// @Security AdminToken
// @Success 200 {object} models.ModelStatus
// @Failure 502 {object} map[string]string "Fetch Failed"
// @Router /model/reload [post]
func (h *Handler) ReloadModel(w http.ResponseWriter, r *http.Request) {
	h.models.Invalidate()

	if _, err := h.models.Load(r.Context(), true); err != nil {
		h.logger.Errorw("Failed to reload model", "error", err)
		h.errorResponse(w, http.StatusBadGateway, "Failed to fetch model artifact")
		return
	}

	h.jsonResponse(w, http.StatusOK, h.models.Status())
}
