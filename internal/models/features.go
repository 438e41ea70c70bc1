package models

// Feature names, in the exact order the trained model expects. The scorer
// zips values to coefficients by position, so this slice must never be
// reordered independently of the published model artifacts.
const (
	FeatACS         = "x_acs"
	FeatKD          = "x_kd"
	FeatADR         = "x_adr"
	FeatKAST        = "x_kast"
	FeatRecentACS   = "x_recent_acs"
	FeatConsistency = "x_consistency"
	FeatCarry       = "x_carry"
	FeatRecentWR    = "x_recent_wr"
	FeatElo         = "x_elo"
	FeatInteraction = "x_interaction_1"
	FeatRoundDiff   = "rd"          // reserved, always zero
	FeatMapsPlayed  = "maps_played" // reserved, always zero
)

// FeatureOrder is the canonical feature ordering shared by training and
// inference.
var FeatureOrder = []string{
	FeatACS,
	FeatKD,
	FeatADR,
	FeatKAST,
	FeatRecentACS,
	FeatConsistency,
	FeatCarry,
	FeatRecentWR,
	FeatElo,
	FeatInteraction,
	FeatRoundDiff,
	FeatMapsPlayed,
}

// FeatureVector pairs the feature names with their computed values,
// index-aligned.
type FeatureVector struct {
	Order  []string  `json:"order"`
	Values []float64 `json:"values"`
}

// ZeroFeatureVector returns the canonical order with every value zero. Used
// when there is no completed match history to build from.
func ZeroFeatureVector() FeatureVector {
	return FeatureVector{
		Order:  append([]string(nil), FeatureOrder...),
		Values: make([]float64, len(FeatureOrder)),
	}
}

// Named flattens the vector into a name → value map for API responses.
func (fv FeatureVector) Named() map[string]float64 {
	out := make(map[string]float64, len(fv.Order))
	for i, name := range fv.Order {
		if i < len(fv.Values) {
			out[name] = fv.Values[i]
		}
	}
	return out
}
