package logic

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/skipio-league/portal-api/internal/models"
)

const (
	modelObjectKey   = "models/current/model.json"
	scalersObjectKey = "models/current/scalers.json"
)

// ModelRegistry caches the current model artifact for a TTL so that scoring
// does not hit object storage per request. Fetch failures propagate to the
// caller and are never cached; the next call retries.
type ModelRegistry struct {
	fetcher ArtifactFetcher
	ttl     time.Duration
	logger  *zap.SugaredLogger
	now     func() time.Time

	mu        sync.Mutex
	cached    *models.ModelArtifact
	fetchedAt time.Time
}

func NewModelRegistry(fetcher ArtifactFetcher, ttl time.Duration, logger *zap.SugaredLogger) *ModelRegistry {
	return &ModelRegistry{
		fetcher: fetcher,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

// Load returns the cached artifact while it is fresh, otherwise fetches and
// decodes a new one. force bypasses the freshness check.
func (r *ModelRegistry) Load(ctx context.Context, force bool) (*models.ModelArtifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !force && r.cached != nil && r.now().Sub(r.fetchedAt) < r.ttl {
		return r.cached, nil
	}

	art, err := r.fetch(ctx)
	if err != nil {
		return nil, err
	}
	r.cached = art
	r.fetchedAt = r.now()
	r.logger.Infow("model artifact loaded", "kind", art.Kind(), "features", len(art.FeatureOrder()))
	return art, nil
}

// Invalidate drops the cached artifact so the next Load refetches. Called
// after a new model is published.
func (r *ModelRegistry) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cached = nil
	r.fetchedAt = time.Time{}
}

func (r *ModelRegistry) Status() models.ModelStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cached == nil {
		return models.ModelStatus{}
	}
	return models.ModelStatus{
		Loaded:       true,
		Kind:         r.cached.Kind(),
		FeatureOrder: r.cached.FeatureOrder(),
		FetchedAt:    r.cached.FetchedAt,
	}
}

func (r *ModelRegistry) fetch(ctx context.Context) (*models.ModelArtifact, error) {
	raw, err := r.fetcher.Fetch(ctx, modelObjectKey)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch model artifact: %w", err)
	}
	linear, blend, err := models.DecodeModel(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode model artifact: %w", err)
	}

	art := &models.ModelArtifact{Linear: linear, Blend: blend, FetchedAt: r.now()}

	// A linear model is unusable without its training-time scalers: the
	// coefficients were fit on standardized features. Blend models carry
	// their own ratings and skip the fetch.
	if linear != nil {
		scRaw, err := r.fetcher.Fetch(ctx, scalersObjectKey)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch scalers: %w", err)
		}
		var sc models.Scalers
		if err := json.Unmarshal(scRaw, &sc); err != nil {
			return nil, fmt.Errorf("failed to decode scalers: %w", err)
		}
		art.Scalers = &sc
	}
	return art, nil
}
