package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/skipio-league/portal-api/internal/models"
)

// IngestMapStats handles POST /api/v1/ingest/map-stats
// @Summary Ingest Player Map Stats
// @Description Accepts a JSON array of per-player per-map stat lines
// @Tags Ingestion
// @Accept json
// @Produce json
// @Security AdminToken
// @Param body body []models.PlayerMapStat true "Stat lines"
// @Success 202 {object} map[string]int "Accepted"
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /ingest/map-stats [post]
func (h *Handler) IngestMapStats(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	defer r.Body.Close()

	var stats []models.PlayerMapStat
	if err := json.NewDecoder(r.Body).Decode(&stats); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if len(stats) == 0 {
		h.errorResponse(w, http.StatusBadRequest, "Empty stat batch")
		return
	}

	accepted, rejected, dropped := 0, 0, 0
	for i := range stats {
		if err := h.validator.Struct(&stats[i]); err != nil {
			h.logger.Warnw("Rejecting invalid stat line", "index", i, "error", err)
			rejected++
			continue
		}
		if h.pool.Enqueue(&stats[i]) {
			accepted++
		} else {
			dropped++
		}
	}

	h.jsonResponse(w, http.StatusAccepted, map[string]int{
		"accepted": accepted,
		"rejected": rejected,
		"dropped":  dropped,
	})
}
