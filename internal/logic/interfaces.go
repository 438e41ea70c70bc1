package logic

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	"github.com/skipio-league/portal-api/internal/models"
)

// PgPool defines the interface for PostgreSQL connection pool
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// RedisClient defines the interface for Redis client
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// ArtifactFetcher fetches a raw artifact body from the external model store
// by object key.
type ArtifactFetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// FeatureService builds the model input vector from historical match and
// player statistics.
type FeatureService interface {
	BuildFeatures(ctx context.Context, team1ID, team2ID int64) (models.FeatureVector, error)
}

// ModelProvider supplies the currently active model+scalers artifact.
type ModelProvider interface {
	Load(ctx context.Context, force bool) (*models.ModelArtifact, error)
	Invalidate()
	Status() models.ModelStatus
}

// PredictionService exposes win-probability predictions to the HTTP layer.
type PredictionService interface {
	PredictMatch(ctx context.Context, team1ID, team2ID int64) (*models.MatchPrediction, error)
	UpcomingPredictions(ctx context.Context) ([]models.UpcomingPrediction, error)
}

// BracketService maintains the playoff bracket fill state. Compute is a pure
// scan; Apply commits the proposed actions and reports whether every action
// persisted without error (idempotent no-ops count as success).
type BracketService interface {
	ComputeAdvancements(ctx context.Context) ([]models.BracketAction, error)
	ApplyAdvancements(ctx context.Context, actions []models.BracketAction) bool
}
