package models

import "time"

// MatchPrediction is the response shape of the single-match predict endpoint.
// Probability is always populated; when no model is available it falls back
// to the neutral 0.5 and ModelLoaded is false.
type MatchPrediction struct {
	Team1ID     int64              `json:"team1_id"`
	Team2ID     int64              `json:"team2_id"`
	Probability float64            `json:"probability_team1_win"`
	Features    map[string]float64 `json:"features"`
	ModelLoaded bool               `json:"model_loaded"`
}

// UpcomingPrediction is one row of the batch prediction listing over
// not-yet-completed matches.
type UpcomingPrediction struct {
	MatchID     int64       `json:"id"`
	Week        int         `json:"week"`
	GroupName   string      `json:"group"`
	Status      MatchStatus `json:"status"`
	Team1       Team        `json:"team1"`
	Team2       Team        `json:"team2"`
	Probability float64     `json:"probability_team1_win"`
}

// ModelStatus describes the currently cached model artifact for the admin
// surface.
type ModelStatus struct {
	Loaded       bool      `json:"loaded"`
	Kind         string    `json:"kind,omitempty"`
	FeatureOrder []string  `json:"feature_order,omitempty"`
	FetchedAt    time.Time `json:"fetched_at,omitempty"`
}
