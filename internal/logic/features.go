package logic

import (
	"context"
	"fmt"
	"math"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/skipio-league/portal-api/internal/models"
)

// Rolling-form constants. Like the Elo constants these are empirical values
// from the trained pipeline and must match what the model was fit against.
const (
	rollingWindow = 5
	recencyLambda = 0.07 // per-day decay, roughly a 10-day half-life
	daysPerWeek   = 7.0
)

type featureService struct {
	pg     PgPool
	ch     driver.Conn
	logger *zap.SugaredLogger
}

func NewFeatureService(pg PgPool, ch driver.Conn, logger *zap.SugaredLogger) FeatureService {
	return &featureService{pg: pg, ch: ch, logger: logger}
}

// BuildFeatures replays the full completed-match history and returns the
// difference features for team1 vs team2. The replay is recomputed from
// scratch on every call; a deliberate simplicity/cost tradeoff that keeps the
// result a pure function of the stored history.
func (s *featureService) BuildFeatures(ctx context.Context, team1ID, team2ID int64) (models.FeatureVector, error) {
	var (
		matches []models.Match
		lines   map[int64]map[int64]*models.TeamMatchLine
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		matches, err = s.loadCompletedMatches(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		lines, err = s.loadTeamLines(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.FeatureVector{}, err
	}

	if len(matches) == 0 {
		return models.ZeroFeatureVector(), nil
	}

	hist := replayHistory(matches, lines)
	return featuresFrom(hist, team1ID, team2ID), nil
}

func (s *featureService) loadCompletedMatches(ctx context.Context) ([]models.Match, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT id, week, team1_id, team2_id, winner_id, score_t1, score_t2
		FROM matches
		WHERE status = 'completed' AND team1_id IS NOT NULL AND team2_id IS NOT NULL
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("completed matches query failed: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		var m models.Match
		m.Status = models.MatchCompleted
		if err := rows.Scan(&m.ID, &m.Week, &m.Team1ID, &m.Team2ID, &m.WinnerID, &m.ScoreT1, &m.ScoreT2); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("match row iteration failed: %w", err)
	}
	return matches, nil
}

// loadTeamLines reads the raw per-player per-map rows and collapses them into
// one aggregate line per (match, team): roster-average ACS/ADR/KAST, summed
// kills and deaths, and the raw player ACS samples.
func (s *featureService) loadTeamLines(ctx context.Context) (map[int64]map[int64]*models.TeamMatchLine, error) {
	rows, err := s.ch.Query(ctx, `
		SELECT match_id, team_id, player_id, acs, kills, deaths, adr, kast
		FROM map_player_stats
		ORDER BY match_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("map player stats query failed: %w", err)
	}
	defer rows.Close()

	type teamAgg struct {
		line  *models.TeamMatchLine
		sACS  float64
		sADR  float64
		sKAST float64
		n     int
	}
	aggs := make(map[int64]map[int64]*teamAgg)

	for rows.Next() {
		var (
			matchID, teamID, playerID int64
			acs, adr, kast            float64
			kills, deaths             uint32
		)
		if err := rows.Scan(&matchID, &teamID, &playerID, &acs, &kills, &deaths, &adr, &kast); err != nil {
			return nil, fmt.Errorf("failed to scan stat row: %w", err)
		}
		byTeam, ok := aggs[matchID]
		if !ok {
			byTeam = make(map[int64]*teamAgg)
			aggs[matchID] = byTeam
		}
		a, ok := byTeam[teamID]
		if !ok {
			a = &teamAgg{line: &models.TeamMatchLine{MatchID: matchID, TeamID: teamID}}
			byTeam[teamID] = a
		}
		a.sACS += acs
		a.sADR += adr
		a.sKAST += kast
		a.n++
		a.line.Kills += int(kills)
		a.line.Deaths += int(deaths)
		a.line.PlayerACS = append(a.line.PlayerACS, acs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stat row iteration failed: %w", err)
	}

	lines := make(map[int64]map[int64]*models.TeamMatchLine, len(aggs))
	for matchID, byTeam := range aggs {
		out := make(map[int64]*models.TeamMatchLine, len(byTeam))
		for teamID, a := range byTeam {
			if a.n > 0 {
				a.line.ACS = a.sACS / float64(a.n)
				a.line.ADR = a.sADR / float64(a.n)
				a.line.KAST = a.sKAST / float64(a.n)
			}
			out[teamID] = a.line
		}
		lines[matchID] = out
	}
	return lines, nil
}

// teamForm is one team's sliding-window state during the replay.
type teamForm struct {
	window []models.TeamMatchLine
	wins   []bool
}

func (f *teamForm) pushLine(line models.TeamMatchLine) {
	f.window = append(f.window, line)
	if len(f.window) > rollingWindow {
		f.window = f.window[len(f.window)-rollingWindow:]
	}
}

func (f *teamForm) pushResult(won bool) {
	f.wins = append(f.wins, won)
	if len(f.wins) > rollingWindow {
		f.wins = f.wins[len(f.wins)-rollingWindow:]
	}
}

type history struct {
	forms   map[int64]*teamForm
	elo     *eloTable
	maxWeek int
}

func (h *history) form(teamID int64) *teamForm {
	f, ok := h.forms[teamID]
	if !ok {
		f = &teamForm{}
		h.forms[teamID] = f
	}
	return f
}

// replayMatchWinner resolves the result during the history replay. A tie with
// no explicit winner is a not-yet-decided match: its stat lines still enter
// the windows but it contributes no win/loss or Elo update.
func replayMatchWinner(m models.Match) (int64, bool) {
	if m.WinnerID != nil {
		return *m.WinnerID, true
	}
	if m.ScoreT1 != nil && m.ScoreT2 != nil && *m.ScoreT1 != *m.ScoreT2 {
		if *m.ScoreT1 > *m.ScoreT2 {
			return m.Team1ID, true
		}
		return m.Team2ID, true
	}
	return 0, false
}

// replayHistory walks completed matches in ascending id order, id being the
// time proxy since week numbers are too coarse, and accumulates each team's
// rolling window, win/loss window and Elo rating.
func replayHistory(matches []models.Match, lines map[int64]map[int64]*models.TeamMatchLine) *history {
	h := &history{forms: make(map[int64]*teamForm), elo: newEloTable()}

	for _, m := range matches {
		if m.Week > h.maxWeek {
			h.maxWeek = m.Week
		}
		if byTeam, ok := lines[m.ID]; ok {
			for _, teamID := range []int64{m.Team1ID, m.Team2ID} {
				if line, ok := byTeam[teamID]; ok {
					l := *line
					l.Week = m.Week
					h.form(teamID).pushLine(l)
				}
			}
		}
		winnerID, ok := replayMatchWinner(m)
		if !ok {
			continue
		}
		loserID := m.Team1ID
		if winnerID == m.Team1ID {
			loserID = m.Team2ID
		}
		h.form(winnerID).pushResult(true)
		h.form(loserID).pushResult(false)
		h.elo.Observe(winnerID, loserID)
	}
	return h
}

// formSummary is the windowed form of one team at the end of the replay.
type formSummary struct {
	acs       float64
	kd        float64
	adr       float64
	kast      float64
	recentACS float64
	variance  float64
	carry     float64
	winRate   float64
}

func summarize(f *teamForm, maxWeek int) formSummary {
	s := formSummary{carry: 1, winRate: 0.5}
	if f == nil {
		return s
	}

	if n := len(f.window); n > 0 {
		var wSum, wACS float64
		for _, e := range f.window {
			s.acs += e.ACS
			s.kd += e.KD()
			s.adr += e.ADR
			s.kast += e.KAST

			deltaDays := daysPerWeek * float64(maxWeek-e.Week)
			w := math.Exp(-recencyLambda * deltaDays)
			wSum += w
			wACS += w * e.ACS
		}
		s.acs /= float64(n)
		s.kd /= float64(n)
		s.adr /= float64(n)
		s.kast /= float64(n)
		if wSum > 0 {
			s.recentACS = wACS / wSum
		}

		var samples []float64
		for _, e := range f.window {
			samples = append(samples, e.PlayerACS...)
		}
		if len(samples) >= 2 {
			var mean float64
			for _, v := range samples {
				mean += v
			}
			mean /= float64(len(samples))
			var variance float64
			for _, v := range samples {
				variance += (v - mean) * (v - mean)
			}
			s.variance = variance / float64(len(samples))
			if mean > 0 {
				maxACS := samples[0]
				for _, v := range samples[1:] {
					if v > maxACS {
						maxACS = v
					}
				}
				s.carry = maxACS / mean
			}
		}
	}

	if len(f.wins) > 0 {
		var wins float64
		for _, w := range f.wins {
			if w {
				wins++
			}
		}
		s.winRate = wins / float64(len(f.wins))
	}
	return s
}

// featuresFrom builds the fixed-order difference vector for team1 vs team2.
// Every feature is team1 minus team2 except consistency and carry, which are
// inverted so that larger always favors team1.
func featuresFrom(h *history, team1ID, team2ID int64) models.FeatureVector {
	s1 := summarize(h.forms[team1ID], h.maxWeek)
	s2 := summarize(h.forms[team2ID], h.maxWeek)

	xACS := s1.acs - s2.acs
	xRecentWR := s1.winRate - s2.winRate

	return models.FeatureVector{
		Order: append([]string(nil), models.FeatureOrder...),
		Values: []float64{
			xACS,
			s1.kd - s2.kd,
			s1.adr - s2.adr,
			s1.kast - s2.kast,
			s1.recentACS - s2.recentACS,
			s2.variance - s1.variance,
			s2.carry - s1.carry,
			xRecentWR,
			h.elo.Rating(team1ID) - h.elo.Rating(team2ID),
			xACS * xRecentWR,
			0, // rd: reserved
			0, // maps_played: reserved
		},
	}
}
