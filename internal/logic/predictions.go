package logic

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/skipio-league/portal-api/internal/models"
)

const upcomingCacheKey = "predictions:upcoming"

type predictionService struct {
	features FeatureService
	registry ModelProvider
	pg       PgPool
	redis    RedisClient
	cacheTTL time.Duration
	logger   *zap.SugaredLogger
}

func NewPredictionService(features FeatureService, registry ModelProvider, pg PgPool, rdb RedisClient, cacheTTL time.Duration, logger *zap.SugaredLogger) PredictionService {
	return &predictionService{
		features: features,
		registry: registry,
		pg:       pg,
		redis:    rdb,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// PredictMatch scores a single pairing. Model and feature failures degrade
// to the neutral probability instead of erroring: a prediction is decorative
// and must never take a match page down with it.
func (s *predictionService) PredictMatch(ctx context.Context, team1ID, team2ID int64) (*models.MatchPrediction, error) {
	fv, err := s.features.BuildFeatures(ctx, team1ID, team2ID)
	if err != nil {
		s.logger.Warnw("feature build failed, using zero vector", "error", err)
		fv = models.ZeroFeatureVector()
	}

	art, err := s.registry.Load(ctx, false)
	if err != nil {
		s.logger.Warnw("model load failed, returning neutral prediction", "error", err)
		art = nil
	}

	return &models.MatchPrediction{
		Team1ID:     team1ID,
		Team2ID:     team2ID,
		Probability: Predict(fv.Values, art, team1ID, team2ID),
		Features:    fv.Named(),
		ModelLoaded: art != nil,
	}, nil
}

// UpcomingPredictions lists every non-completed match with a win probability,
// cached in Redis for a short TTL since the listing is the hottest read.
func (s *predictionService) UpcomingPredictions(ctx context.Context) ([]models.UpcomingPrediction, error) {
	if cached, err := s.redis.Get(ctx, upcomingCacheKey).Result(); err == nil {
		var out []models.UpcomingPrediction
		if err := json.Unmarshal([]byte(cached), &out); err == nil {
			return out, nil
		}
		s.logger.Warnw("discarding malformed upcoming-predictions cache entry")
	} else if err != redis.Nil {
		s.logger.Warnw("redis get failed", "key", upcomingCacheKey, "error", err)
	}

	rows, err := s.pg.Query(ctx, `
		SELECT m.id, m.week, m.group_name, m.status,
		       t1.id, t1.name, t1.tag,
		       t2.id, t2.name, t2.tag
		FROM matches m
		JOIN teams t1 ON t1.id = m.team1_id
		JOIN teams t2 ON t2.id = m.team2_id
		WHERE m.status != 'completed'
		ORDER BY m.week ASC, m.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("upcoming matches query failed: %w", err)
	}
	defer rows.Close()

	out := make([]models.UpcomingPrediction, 0)
	for rows.Next() {
		var p models.UpcomingPrediction
		if err := rows.Scan(&p.MatchID, &p.Week, &p.GroupName, &p.Status,
			&p.Team1.ID, &p.Team1.Name, &p.Team1.Tag,
			&p.Team2.ID, &p.Team2.Name, &p.Team2.Tag); err != nil {
			return nil, fmt.Errorf("failed to scan upcoming match: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("upcoming match iteration failed: %w", err)
	}

	for i := range out {
		pred, err := s.PredictMatch(ctx, out[i].Team1.ID, out[i].Team2.ID)
		if err != nil {
			out[i].Probability = 0.5
			continue
		}
		out[i].Probability = pred.Probability
	}

	if payload, err := json.Marshal(out); err == nil {
		if err := s.redis.Set(ctx, upcomingCacheKey, payload, s.cacheTTL).Err(); err != nil {
			s.logger.Warnw("redis set failed", "key", upcomingCacheKey, "error", err)
		}
	}
	return out, nil
}
