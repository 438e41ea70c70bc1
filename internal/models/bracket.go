package models

// Bracket geometry. Round 1 is the play-in round; half of the round-2 field
// is pre-seeded with byes, so round 2 keeps the same slot count and play-in
// winners join at the same bracket position.
const (
	BracketRoundPlayIns    = 1
	BracketRoundOf16       = 2
	BracketRoundQuarters   = 3
	BracketRoundSemis      = 4
	BracketRoundGrandFinal = 5

	BracketMaxSlotsPerRound = 16
)

// BracketActionKind distinguishes filling a slot of an existing next-round
// match from creating the next-round match row itself.
type BracketActionKind string

const (
	BracketFill   BracketActionKind = "fill"
	BracketCreate BracketActionKind = "create"
)

// BracketAction is a proposed, not yet applied, bracket mutation. Compute
// produces these without side effects; apply commits them. Title and Reason
// are human-readable so an operator can review the plan before confirming.
type BracketAction struct {
	Kind        BracketActionKind `json:"kind" validate:"required,oneof=fill create"`
	TargetRound int               `json:"target_round" validate:"required,gte=2"`
	BracketPos  int               `json:"bracket_pos" validate:"required,gte=1"`
	MatchID     int64             `json:"match_id,omitempty"`
	Team1ID     *int64            `json:"team1_id"`
	Team2ID     *int64            `json:"team2_id"`
	Title       string            `json:"title"`
	Reason      string            `json:"reason"`
}
