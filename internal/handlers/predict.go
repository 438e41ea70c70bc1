package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// GetMatchPrediction returns the win probability for a pairing
// @Summary Predict Match Outcome
// @Tags Predictions
// @Accept json
// @Produce json
// @Param team1Id path int true "Team 1 ID"
// @Param team2Id path int true "Team 2 ID"
// @Success 200 {object} models.MatchPrediction
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /predict/{team1Id}/{team2Id} [get]
func (h *Handler) GetMatchPrediction(w http.ResponseWriter, r *http.Request) {
	team1ID, err1 := strconv.ParseInt(chi.URLParam(r, "team1Id"), 10, 64)
	team2ID, err2 := strconv.ParseInt(chi.URLParam(r, "team2Id"), 10, 64)
	if err1 != nil || err2 != nil {
		h.errorResponse(w, http.StatusBadRequest, "Team IDs must be integers")
		return
	}
	if team1ID == team2ID {
		h.errorResponse(w, http.StatusBadRequest, "Team IDs must differ")
		return
	}

	pred, err := h.predictions.PredictMatch(r.Context(), team1ID, team2ID)
	if err != nil {
		h.logger.Errorw("Failed to predict match", "error", err, "team1", team1ID, "team2", team2ID)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to compute prediction")
		return
	}

	h.jsonResponse(w, http.StatusOK, pred)
}

// GetUpcomingPredictions lists win probabilities for all unfinished matches
// @Summary Get Upcoming Predictions
// @Tags Predictions
// @Accept json
// @Produce json
// @Success 200 {array} models.UpcomingPrediction
// @Router /predictions/upcoming [get]
func (h *Handler) GetUpcomingPredictions(w http.ResponseWriter, r *http.Request) {
	preds, err := h.predictions.UpcomingPredictions(r.Context())
	if err != nil {
		h.logger.Errorw("Failed to list upcoming predictions", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to compute predictions")
		return
	}

	h.jsonResponse(w, http.StatusOK, preds)
}
