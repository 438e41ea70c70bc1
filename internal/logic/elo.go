package logic

import "math"

// Elo replay constants. Empirical calibration carried over from the trained
// pipeline; the values are not tunable at runtime.
const (
	eloSeed   = 1500.0
	eloK      = 24.0
	eloSpread = 400.0
)

// eloTable tracks per-team Elo ratings during a chronological replay of
// completed matches. Ratings live only for the duration of one feature build.
type eloTable struct {
	ratings map[int64]float64
}

func newEloTable() *eloTable {
	return &eloTable{ratings: make(map[int64]float64)}
}

// Rating returns the team's current rating, seeding unseen teams at 1500.
func (t *eloTable) Rating(teamID int64) float64 {
	if r, ok := t.ratings[teamID]; ok {
		return r
	}
	return eloSeed
}

// expectedScore is the standard logistic expectation of a beating b.
func expectedScore(ra, rb float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (rb-ra)/eloSpread))
}

// Observe applies one match result, updating both teams symmetrically.
func (t *eloTable) Observe(winnerID, loserID int64) {
	rw := t.Rating(winnerID)
	rl := t.Rating(loserID)
	delta := eloK * (1.0 - expectedScore(rw, rl))
	t.ratings[winnerID] = rw + delta
	t.ratings[loserID] = rl - delta
}
