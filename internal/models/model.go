package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ModelTypeRatingBlend is the tag the training pipeline writes into the
// legacy rating-blend artifact. A model JSON without it is a linear scorer.
const ModelTypeRatingBlend = "b_ratings"

// LinearModel is a trained logistic regression: standardized features in,
// logit out. Coefficients are index-aligned with FeatureOrder.
type LinearModel struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
	FeatureOrder []string  `json:"feature_order"`
}

// TeamRating is one team's entry in the rating-blend model.
type TeamRating struct {
	RatingB   float64 `json:"rating_b"`
	StrengthS float64 `json:"strength_s,omitempty"`
}

// RatingBlendModel is the legacy heuristic scorer: a blended per-team rating,
// a calibration alpha and a fixed standardization width. It ignores the
// feature vector entirely and only needs the two team ids.
type RatingBlendModel struct {
	Teams map[int64]TeamRating `json:"teams"`
	Alpha float64              `json:"alpha"`
	StdX  float64              `json:"std_x"`
}

// Scalers carries the standardization constants saved at training time,
// index-aligned with LinearModel.Coefficients.
type Scalers struct {
	Means        []float64 `json:"means"`
	Stds         []float64 `json:"stds"`
	FeatureOrder []string  `json:"feature_order"`
}

// ModelArtifact is the loaded model+scalers pair. Exactly one of Linear or
// Blend is set; the scorer dispatches on which.
type ModelArtifact struct {
	Linear    *LinearModel
	Blend     *RatingBlendModel
	Scalers   *Scalers
	FetchedAt time.Time
}

// Kind names the loaded model family for status reporting.
func (a *ModelArtifact) Kind() string {
	switch {
	case a == nil:
		return "none"
	case a.Blend != nil:
		return ModelTypeRatingBlend
	case a.Linear != nil:
		return "linear"
	default:
		return "none"
	}
}

// FeatureOrder returns the feature order the model was trained with, or nil
// for models that do not consume features.
func (a *ModelArtifact) FeatureOrder() []string {
	if a == nil || a.Linear == nil {
		return nil
	}
	return a.Linear.FeatureOrder
}

// DecodeModel parses a raw model.json body into its tagged shape.
func DecodeModel(data []byte) (*LinearModel, *RatingBlendModel, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, nil, fmt.Errorf("malformed model artifact: %w", err)
	}
	if probe.Type == ModelTypeRatingBlend {
		var blend RatingBlendModel
		if err := json.Unmarshal(data, &blend); err != nil {
			return nil, nil, fmt.Errorf("malformed rating-blend model: %w", err)
		}
		return nil, &blend, nil
	}
	var linear LinearModel
	if err := json.Unmarshal(data, &linear); err != nil {
		return nil, nil, fmt.Errorf("malformed linear model: %w", err)
	}
	if len(linear.Coefficients) == 0 {
		return nil, nil, fmt.Errorf("linear model has no coefficients")
	}
	return &linear, nil, nil
}
