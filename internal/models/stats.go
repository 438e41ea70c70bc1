package models

import (
	"time"

	"github.com/google/uuid"
)

// PlayerMapStat is one player's line on one map of one match. Rows are
// ingested from tracker exports and stored in ClickHouse; the feature builder
// aggregates them per (match, team) before building team history.
type PlayerMapStat struct {
	EventID    uuid.UUID `json:"event_id,omitempty"`
	MatchID    int64     `json:"match_id" validate:"required,gt=0"`
	TeamID     int64     `json:"team_id" validate:"required,gt=0"`
	PlayerID   int64     `json:"player_id" validate:"required,gt=0"`
	MapName    string    `json:"map_name"`
	ACS        float64   `json:"acs" validate:"gte=0"`
	Kills      int       `json:"kills" validate:"gte=0"`
	Deaths     int       `json:"deaths" validate:"gte=0"`
	Assists    int       `json:"assists" validate:"gte=0"`
	ADR        float64   `json:"adr" validate:"gte=0"`
	KAST       float64   `json:"kast" validate:"gte=0,lte=100"`
	IngestedAt time.Time `json:"ingested_at,omitempty"`
}

// TeamMatchLine is the per-(match, team) aggregate over that team's
// PlayerMapStat rows: mean ACS/ADR/KAST across the roster, summed kills and
// deaths for the team K/D, and the raw player ACS samples kept for the
// carry/consistency signals.
type TeamMatchLine struct {
	MatchID   int64
	TeamID    int64
	Week      int
	ACS       float64
	Kills     int
	Deaths    int
	ADR       float64
	KAST      float64
	PlayerACS []float64
}

// KD returns the team kill/death ratio for the line, with the usual
// divide-by-zero guard of treating zero deaths as one.
func (l TeamMatchLine) KD() float64 {
	if l.Deaths == 0 {
		return float64(l.Kills)
	}
	return float64(l.Kills) / float64(l.Deaths)
}
