package handlers

import (
	"net/http"
)

// GetBracketAdvancements previews the currently implied bracket actions
// @Summary Preview Bracket Advancements
// @Tags Bracket
// @Accept json
// @Produce json
// @Success 200 {array} models.BracketAction
// @Router /bracket/advancements [get]
func (h *Handler) GetBracketAdvancements(w http.ResponseWriter, r *http.Request) {
	actions, err := h.bracket.ComputeAdvancements(r.Context())
	if err != nil {
		h.logger.Errorw("Failed to compute bracket advancements", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to compute advancements")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"actions": actions,
		"count":   len(actions),
	})
}

// ApplyBracketAdvancements recomputes and applies the bracket actions
// @Summary Apply Bracket Advancements
// @Tags Bracket
// @Accept json
// @Produce json
// @Security AdminToken
// @Success 200 {object} map[string]interface{}
// @Router /bracket/advance [post]
func (h *Handler) ApplyBracketAdvancements(w http.ResponseWriter, r *http.Request) {
	// Recompute rather than trusting a client-supplied plan: the snapshot may
	// have moved since any preview the caller looked at.
	actions, err := h.bracket.ComputeAdvancements(r.Context())
	if err != nil {
		h.logger.Errorw("Failed to compute bracket advancements", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to compute advancements")
		return
	}

	success := true
	if len(actions) > 0 {
		success = h.bracket.ApplyAdvancements(r.Context(), actions)
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"actions": actions,
		"count":   len(actions),
		"success": success,
	})
}
