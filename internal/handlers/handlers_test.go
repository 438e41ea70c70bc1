package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/skipio-league/portal-api/internal/models"
)

func newTestHandler(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.WorkerPool == nil {
		cfg.WorkerPool = &MockIngestQueue{}
	}
	if cfg.Predictions == nil {
		cfg.Predictions = &MockPredictionService{}
	}
	if cfg.Bracket == nil {
		cfg.Bracket = &MockBracketService{}
	}
	if cfg.Models == nil {
		cfg.Models = &MockModelProvider{}
	}
	return New(cfg)
}

func serve(h *Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.Routes([]string{"*"}).ServeHTTP(rec, req)
	return rec
}

func TestGetMatchPrediction(t *testing.T) {
	h := newTestHandler(Config{
		Predictions: &MockPredictionService{
			PredictMatchFunc: func(ctx context.Context, t1, t2 int64) (*models.MatchPrediction, error) {
				return &models.MatchPrediction{Team1ID: t1, Team2ID: t2, Probability: 0.7, ModelLoaded: true}, nil
			},
		},
	})

	rec := serve(h, httptest.NewRequest("GET", "/api/v1/predict/1/2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	var pred models.MatchPrediction
	if err := json.Unmarshal(rec.Body.Bytes(), &pred); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if pred.Probability != 0.7 || pred.Team1ID != 1 || pred.Team2ID != 2 {
		t.Errorf("unexpected prediction %+v", pred)
	}
}

func TestGetMatchPredictionBadParams(t *testing.T) {
	h := newTestHandler(Config{})

	tests := []struct {
		name string
		path string
	}{
		{"non-numeric id", "/api/v1/predict/abc/2"},
		{"same team twice", "/api/v1/predict/3/3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, httptest.NewRequest("GET", tt.path, nil))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestGetUpcomingPredictions(t *testing.T) {
	h := newTestHandler(Config{
		Predictions: &MockPredictionService{
			UpcomingPredictionsFunc: func(ctx context.Context) ([]models.UpcomingPrediction, error) {
				return []models.UpcomingPrediction{{MatchID: 7, Probability: 0.62}}, nil
			},
		},
	})

	rec := serve(h, httptest.NewRequest("GET", "/api/v1/predictions/upcoming", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var preds []models.UpcomingPrediction
	if err := json.Unmarshal(rec.Body.Bytes(), &preds); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(preds) != 1 || preds[0].MatchID != 7 {
		t.Errorf("unexpected predictions %+v", preds)
	}
}

func TestGetUpcomingPredictionsError(t *testing.T) {
	h := newTestHandler(Config{
		Predictions: &MockPredictionService{
			UpcomingPredictionsFunc: func(ctx context.Context) ([]models.UpcomingPrediction, error) {
				return nil, errors.New("postgres down")
			},
		},
	})

	rec := serve(h, httptest.NewRequest("GET", "/api/v1/predictions/upcoming", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestGetBracketAdvancements(t *testing.T) {
	team := int64(4)
	h := newTestHandler(Config{
		Bracket: &MockBracketService{
			ComputeFunc: func(ctx context.Context) ([]models.BracketAction, error) {
				return []models.BracketAction{
					{Kind: models.BracketFill, TargetRound: 2, BracketPos: 1, MatchID: 9, Team2ID: &team},
				}, nil
			},
		},
	})

	rec := serve(h, httptest.NewRequest("GET", "/api/v1/bracket/advancements", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Actions []models.BracketAction `json:"actions"`
		Count   int                    `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 1 || len(body.Actions) != 1 {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestApplyBracketAdvancementsAuth(t *testing.T) {
	bracket := &MockBracketService{
		ComputeFunc: func(ctx context.Context) ([]models.BracketAction, error) {
			return []models.BracketAction{{Kind: models.BracketCreate, TargetRound: 3, BracketPos: 1}}, nil
		},
	}
	h := newTestHandler(Config{AdminToken: "sekrit", Bracket: bracket})

	// No token
	rec := serve(h, httptest.NewRequest("POST", "/api/v1/bracket/advance", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing token status = %d, want 401", rec.Code)
	}
	if bracket.ApplyCalls != 0 {
		t.Error("apply ran without authorization")
	}

	// Valid token
	req := httptest.NewRequest("POST", "/api/v1/bracket/advance", nil)
	req.Header.Set("X-Admin-Token", "sekrit")
	rec = serve(h, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if bracket.ApplyCalls != 1 {
		t.Errorf("apply calls = %d, want 1", bracket.ApplyCalls)
	}
}

func TestAdminSurfaceDisabledWithoutToken(t *testing.T) {
	h := newTestHandler(Config{})

	rec := serve(h, httptest.NewRequest("POST", "/api/v1/bracket/advance", nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 when no admin token is configured", rec.Code)
	}
}

func TestReloadModel(t *testing.T) {
	provider := &MockModelProvider{CurrentStatus: models.ModelStatus{Loaded: true, Kind: "linear"}}
	h := newTestHandler(Config{AdminToken: "sekrit", Models: provider})

	req := httptest.NewRequest("POST", "/api/v1/model/reload", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	rec := serve(h, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if provider.Invalidations != 1 {
		t.Errorf("invalidations = %d, want 1", provider.Invalidations)
	}
}

func TestReloadModelFetchFailure(t *testing.T) {
	provider := &MockModelProvider{
		LoadFunc: func(ctx context.Context, force bool) (*models.ModelArtifact, error) {
			return nil, errors.New("no such key")
		},
	}
	h := newTestHandler(Config{AdminToken: "sekrit", Models: provider})

	req := httptest.NewRequest("POST", "/api/v1/model/reload", nil)
	req.Header.Set("X-Admin-Token", "sekrit")
	rec := serve(h, req)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestGetModelStatus(t *testing.T) {
	h := newTestHandler(Config{
		Models: &MockModelProvider{CurrentStatus: models.ModelStatus{Loaded: true, Kind: "b_ratings"}},
	})

	rec := serve(h, httptest.NewRequest("GET", "/api/v1/model/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var st models.ModelStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !st.Loaded || st.Kind != "b_ratings" {
		t.Errorf("unexpected status %+v", st)
	}
}

func TestIngestMapStats(t *testing.T) {
	pool := &MockIngestQueue{}
	h := newTestHandler(Config{AdminToken: "sekrit", WorkerPool: pool})

	body := `[
		{"match_id":1,"team_id":1,"player_id":10,"map_name":"ascent","acs":240,"kills":20,"deaths":10,"assists":5,"adr":150,"kast":75},
		{"match_id":1,"team_id":0,"player_id":11,"acs":180,"kills":10,"deaths":12,"adr":120,"kast":70}
	]`
	req := httptest.NewRequest("POST", "/api/v1/ingest/map-stats", strings.NewReader(body))
	req.Header.Set("X-Admin-Token", "sekrit")
	rec := serve(h, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202, body %s", rec.Code, rec.Body.String())
	}

	var counts map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &counts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Second line has team_id 0 and fails validation.
	if counts["accepted"] != 1 || counts["rejected"] != 1 {
		t.Errorf("counts = %v, want accepted 1 rejected 1", counts)
	}
	if len(pool.Enqueued) != 1 {
		t.Errorf("enqueued = %d, want 1", len(pool.Enqueued))
	}
}

func TestIngestMapStatsBadBody(t *testing.T) {
	h := newTestHandler(Config{AdminToken: "sekrit"})

	for _, body := range []string{"{not json", "[]"} {
		req := httptest.NewRequest("POST", "/api/v1/ingest/map-stats", strings.NewReader(body))
		req.Header.Set("X-Admin-Token", "sekrit")
		rec := serve(h, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}
