package logic

import (
	"math"

	"github.com/skipio-league/portal-api/internal/models"
)

// Rating-blend defaults, applied when the artifact omits the field.
const (
	defaultBlendAlpha = 1.5
	defaultBlendStdX  = 10.0
)

func Sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// Predict scores a feature vector with whichever model the artifact carries
// and returns P(team1 wins). A nil artifact, or one holding neither model,
// yields the neutral 0.5.
func Predict(values []float64, art *models.ModelArtifact, team1ID, team2ID int64) float64 {
	if art == nil {
		return 0.5
	}
	if art.Blend != nil {
		return predictBlend(art.Blend, team1ID, team2ID)
	}
	if art.Linear != nil {
		return predictLinear(values, art.Linear, art.Scalers)
	}
	return 0.5
}

// predictBlend ignores the feature vector entirely: the probability comes
// from the trained per-team blended ratings. Unseen teams sit at rating 0.
func predictBlend(m *models.RatingBlendModel, team1ID, team2ID int64) float64 {
	alpha := m.Alpha
	if alpha == 0 {
		alpha = defaultBlendAlpha
	}
	stdX := m.StdX
	if stdX == 0 {
		stdX = defaultBlendStdX
	}
	delta := m.Teams[team1ID].RatingB - m.Teams[team2ID].RatingB
	return Sigmoid(alpha * delta / stdX)
}

func predictLinear(values []float64, m *models.LinearModel, sc *models.Scalers) float64 {
	z := m.Intercept
	for i, coef := range m.Coefficients {
		if i >= len(values) {
			break
		}
		x := values[i]
		if sc != nil && i < len(sc.Means) && i < len(sc.Stds) {
			x -= sc.Means[i]
			if sc.Stds[i] != 0 {
				x /= sc.Stds[i]
			}
		}
		z += coef * x
	}
	return Sigmoid(z)
}
