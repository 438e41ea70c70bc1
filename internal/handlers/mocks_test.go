package handlers

import (
	"context"

	"github.com/skipio-league/portal-api/internal/models"
)

// MockIngestQueue
type MockIngestQueue struct {
	EnqueueFunc func(stat *models.PlayerMapStat) bool
	Enqueued    []*models.PlayerMapStat
}

func (m *MockIngestQueue) Enqueue(stat *models.PlayerMapStat) bool {
	m.Enqueued = append(m.Enqueued, stat)
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(stat)
	}
	return true
}
func (m *MockIngestQueue) QueueDepth() int { return len(m.Enqueued) }

// MockPredictionService
type MockPredictionService struct {
	PredictMatchFunc        func(ctx context.Context, team1ID, team2ID int64) (*models.MatchPrediction, error)
	UpcomingPredictionsFunc func(ctx context.Context) ([]models.UpcomingPrediction, error)
}

func (m *MockPredictionService) PredictMatch(ctx context.Context, team1ID, team2ID int64) (*models.MatchPrediction, error) {
	if m.PredictMatchFunc != nil {
		return m.PredictMatchFunc(ctx, team1ID, team2ID)
	}
	return &models.MatchPrediction{Team1ID: team1ID, Team2ID: team2ID, Probability: 0.5}, nil
}

func (m *MockPredictionService) UpcomingPredictions(ctx context.Context) ([]models.UpcomingPrediction, error) {
	if m.UpcomingPredictionsFunc != nil {
		return m.UpcomingPredictionsFunc(ctx)
	}
	return []models.UpcomingPrediction{}, nil
}

// MockBracketService
type MockBracketService struct {
	ComputeFunc func(ctx context.Context) ([]models.BracketAction, error)
	ApplyFunc   func(ctx context.Context, actions []models.BracketAction) bool
	ApplyCalls  int
}

func (m *MockBracketService) ComputeAdvancements(ctx context.Context) ([]models.BracketAction, error) {
	if m.ComputeFunc != nil {
		return m.ComputeFunc(ctx)
	}
	return nil, nil
}

func (m *MockBracketService) ApplyAdvancements(ctx context.Context, actions []models.BracketAction) bool {
	m.ApplyCalls++
	if m.ApplyFunc != nil {
		return m.ApplyFunc(ctx, actions)
	}
	return true
}

// MockModelProvider
type MockModelProvider struct {
	LoadFunc      func(ctx context.Context, force bool) (*models.ModelArtifact, error)
	Invalidations int
	CurrentStatus models.ModelStatus
}

func (m *MockModelProvider) Load(ctx context.Context, force bool) (*models.ModelArtifact, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, force)
	}
	return &models.ModelArtifact{}, nil
}

func (m *MockModelProvider) Invalidate() { m.Invalidations++ }

func (m *MockModelProvider) Status() models.ModelStatus { return m.CurrentStatus }
