package models

// MatchStatus is the lifecycle state of a match.
type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchLive      MatchStatus = "live"
	MatchCompleted MatchStatus = "completed"
)

// Completed reports whether the status is terminal.
func (s MatchStatus) Completed() bool {
	return s == MatchCompleted
}

// MatchType distinguishes regular-season matches from playoff bracket matches.
type MatchType string

const (
	MatchRegular MatchType = "regular"
	MatchPlayoff MatchType = "playoff"
)

// Match is one scheduled or played series between two teams. For playoff
// matches, PlayoffRound and BracketPos address the slot in the
// single-elimination tree; both are zero for regular-season matches.
type Match struct {
	ID           int64       `json:"id"`
	Week         int         `json:"week"`
	GroupName    string      `json:"group_name"`
	Team1ID      int64       `json:"team1_id"`
	Team2ID      int64       `json:"team2_id"`
	WinnerID     *int64      `json:"winner_id,omitempty"`
	ScoreT1      *int        `json:"score_t1,omitempty"`
	ScoreT2      *int        `json:"score_t2,omitempty"`
	Status       MatchStatus `json:"status"`
	Format       string      `json:"format"`
	MapsPlayed   int         `json:"maps_played"`
	MatchType    MatchType   `json:"match_type"`
	PlayoffRound int         `json:"playoff_round,omitempty"`
	BracketPos   int         `json:"bracket_pos,omitempty"`
	BracketLabel string      `json:"bracket_label,omitempty"`
}

// Completed reports whether the match has finished.
func (m *Match) Completed() bool {
	return m.Status.Completed()
}

// MapRounds holds the per-match round totals summed across all maps of a
// series. Used as the fallback winner signal when WinnerID and the map-score
// aggregates are inconclusive.
type MapRounds struct {
	Team1 int
	Team2 int
}

// Team is the minimal team record the core needs for display names.
type Team struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Tag       string `json:"tag"`
	GroupName string `json:"group_name,omitempty"`
}
