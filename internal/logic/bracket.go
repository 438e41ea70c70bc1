package logic

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/skipio-league/portal-api/internal/models"
)

type bracketService struct {
	pg     PgPool
	logger *zap.SugaredLogger
}

func NewBracketService(pg PgPool, logger *zap.SugaredLogger) BracketService {
	return &bracketService{pg: pg, logger: logger}
}

// bracketMatch is the snapshot row the compute phase works on. Slots are
// pointers: a nil slot is a TBD position waiting for an advancement.
type bracketMatch struct {
	ID       int64
	Round    int
	Pos      int
	Status   models.MatchStatus
	Team1ID  *int64
	Team2ID  *int64
	WinnerID *int64
	ScoreT1  *int
	ScoreT2  *int
}

type bracketSnapshot struct {
	matches   []bracketMatch
	rounds    map[int64]models.MapRounds
	teamNames map[int64]string
}

// ComputeAdvancements scans the playoff bracket and proposes the fill and
// create actions implied by completed matches. It never mutates anything;
// ApplyAdvancements commits the returned plan.
func (s *bracketService) ComputeAdvancements(ctx context.Context) ([]models.BracketAction, error) {
	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return computeActions(snap), nil
}

func (s *bracketService) loadSnapshot(ctx context.Context) (*bracketSnapshot, error) {
	snap := &bracketSnapshot{
		rounds:    make(map[int64]models.MapRounds),
		teamNames: make(map[int64]string),
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := s.pg.Query(gCtx, `
			SELECT id, playoff_round, bracket_pos, status, team1_id, team2_id, winner_id, score_t1, score_t2
			FROM matches
			WHERE match_type = 'playoff'
			ORDER BY playoff_round ASC, bracket_pos ASC
		`)
		if err != nil {
			return fmt.Errorf("playoff matches query failed: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var m bracketMatch
			if err := rows.Scan(&m.ID, &m.Round, &m.Pos, &m.Status, &m.Team1ID, &m.Team2ID, &m.WinnerID, &m.ScoreT1, &m.ScoreT2); err != nil {
				return fmt.Errorf("failed to scan playoff match: %w", err)
			}
			snap.matches = append(snap.matches, m)
		}
		return rows.Err()
	})

	g.Go(func() error {
		rows, err := s.pg.Query(gCtx, `
			SELECT mm.match_id, SUM(mm.rounds_t1), SUM(mm.rounds_t2)
			FROM match_maps mm
			JOIN matches m ON m.id = mm.match_id
			WHERE m.match_type = 'playoff'
			GROUP BY mm.match_id
		`)
		if err != nil {
			return fmt.Errorf("round totals query failed: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var matchID int64
			var r models.MapRounds
			if err := rows.Scan(&matchID, &r.Team1, &r.Team2); err != nil {
				return fmt.Errorf("failed to scan round totals: %w", err)
			}
			snap.rounds[matchID] = r
		}
		return rows.Err()
	})

	g.Go(func() error {
		rows, err := s.pg.Query(gCtx, `SELECT id, name FROM teams`)
		if err != nil {
			return fmt.Errorf("teams query failed: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var id int64
			var name string
			if err := rows.Scan(&id, &name); err != nil {
				return fmt.Errorf("failed to scan team: %w", err)
			}
			snap.teamNames[id] = name
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *bracketSnapshot) teamName(id int64) string {
	if name, ok := s.teamNames[id]; ok {
		return name
	}
	return fmt.Sprintf("Team %d", id)
}

// deriveWinner resolves a completed match's winner by cascading signals:
// the explicit winner id first, then distinct map-score aggregates, then
// distinct summed round totals. A fully tied match has no winner.
func deriveWinner(m bracketMatch, rounds map[int64]models.MapRounds) (int64, bool) {
	if m.WinnerID != nil {
		return *m.WinnerID, true
	}
	if m.Team1ID == nil || m.Team2ID == nil {
		return 0, false
	}
	if m.ScoreT1 != nil && m.ScoreT2 != nil && *m.ScoreT1 != *m.ScoreT2 {
		if *m.ScoreT1 > *m.ScoreT2 {
			return *m.Team1ID, true
		}
		return *m.Team2ID, true
	}
	if r, ok := rounds[m.ID]; ok && r.Team1 != r.Team2 {
		if r.Team1 > r.Team2 {
			return *m.Team1ID, true
		}
		return *m.Team2ID, true
	}
	return 0, false
}

func slotContains(m bracketMatch, teamID int64) bool {
	return (m.Team1ID != nil && *m.Team1ID == teamID) ||
		(m.Team2ID != nil && *m.Team2ID == teamID)
}

// computeActions is the pure bracket walk over a snapshot. Play-in winners
// fill the empty slot of the same-position round-2 match; from round 2 on,
// pairs of sibling positions feed the next round, creating the target match
// row when it does not exist yet. Occupied slots are never overwritten.
func computeActions(snap *bracketSnapshot) []models.BracketAction {
	byPos := make(map[[2]int]bracketMatch, len(snap.matches))
	for _, m := range snap.matches {
		byPos[[2]int{m.Round, m.Pos}] = m
	}

	var actions []models.BracketAction

	// Play-ins: winner joins the round-2 match at the same position,
	// preferring the team2 slot since byes occupy team1. A missing round-2
	// row is created with team1 left open for the bye seed.
	for _, m := range snap.matches {
		if m.Round != models.BracketRoundPlayIns || !m.Status.Completed() {
			continue
		}
		winner, ok := deriveWinner(m, snap.rounds)
		if !ok {
			continue
		}
		w := winner
		target, ok := byPos[[2]int{models.BracketRoundOf16, m.Pos}]
		if !ok {
			actions = append(actions, models.BracketAction{
				Kind:        models.BracketCreate,
				TargetRound: models.BracketRoundOf16,
				BracketPos:  m.Pos,
				Team2ID:     &w,
				Title:       fmt.Sprintf("R%d #%d", models.BracketRoundOf16, m.Pos),
				Reason:      fmt.Sprintf("%s won play-in #%d", snap.teamName(winner), m.Pos),
			})
			continue
		}
		if slotContains(target, winner) {
			continue
		}
		action := models.BracketAction{
			Kind:        models.BracketFill,
			TargetRound: models.BracketRoundOf16,
			BracketPos:  m.Pos,
			MatchID:     target.ID,
			Title:       fmt.Sprintf("R%d #%d", models.BracketRoundOf16, m.Pos),
			Reason:      fmt.Sprintf("%s won play-in #%d", snap.teamName(winner), m.Pos),
		}
		switch {
		case target.Team2ID == nil:
			action.Team2ID = &w
		case target.Team1ID == nil:
			action.Team1ID = &w
		default:
			continue
		}
		actions = append(actions, action)
	}

	// Later rounds: sibling positions (p, p+1) feed position ceil(p/2) of
	// the next round once both are decided.
	for round := models.BracketRoundOf16; round < models.BracketRoundGrandFinal; round++ {
		for pos := 1; pos <= models.BracketMaxSlotsPerRound; pos += 2 {
			m1, ok1 := byPos[[2]int{round, pos}]
			m2, ok2 := byPos[[2]int{round, pos + 1}]
			if !ok1 || !ok2 || !m1.Status.Completed() || !m2.Status.Completed() {
				continue
			}
			w1, ok1 := deriveWinner(m1, snap.rounds)
			w2, ok2 := deriveWinner(m2, snap.rounds)
			if !ok1 || !ok2 {
				continue
			}

			targetRound := round + 1
			targetPos := (pos + 1) / 2
			title := fmt.Sprintf("%s vs %s", snap.teamName(w1), snap.teamName(w2))
			reason := fmt.Sprintf("winners of R%d #%d and #%d", round, pos, pos+1)

			target, exists := byPos[[2]int{targetRound, targetPos}]
			if !exists {
				actions = append(actions, models.BracketAction{
					Kind:        models.BracketCreate,
					TargetRound: targetRound,
					BracketPos:  targetPos,
					Team1ID:     &w1,
					Team2ID:     &w2,
					Title:       title,
					Reason:      reason,
				})
				continue
			}

			action := models.BracketAction{
				Kind:        models.BracketFill,
				TargetRound: targetRound,
				BracketPos:  targetPos,
				MatchID:     target.ID,
				Title:       title,
				Reason:      reason,
			}
			if target.Team1ID == nil && !slotContains(target, w1) {
				action.Team1ID = &w1
			}
			if target.Team2ID == nil && !slotContains(target, w2) {
				action.Team2ID = &w2
			}
			if action.Team1ID != nil || action.Team2ID != nil {
				actions = append(actions, action)
			}
		}
	}

	return actions
}

// ApplyAdvancements commits a computed plan best effort: a failing action is
// logged and skipped so one bad row cannot stall the rest of the bracket.
// Returns whether every action persisted without error; re-applying an
// already-applied plan is a successful no-op thanks to the idempotent guards.
func (s *bracketService) ApplyAdvancements(ctx context.Context, actions []models.BracketAction) bool {
	success := true
	for _, a := range actions {
		switch a.Kind {
		case models.BracketFill:
			tag, err := s.pg.Exec(ctx, `
				UPDATE matches
				SET team1_id = COALESCE(team1_id, $1),
				    team2_id = COALESCE(team2_id, $2)
				WHERE id = $3 AND (team1_id IS NULL OR team2_id IS NULL)
			`, a.Team1ID, a.Team2ID, a.MatchID)
			if err != nil {
				success = false
				s.logger.Errorw("bracket fill failed", "match_id", a.MatchID, "error", err)
				continue
			}
			if tag.RowsAffected() > 0 {
				s.logger.Infow("bracket slot filled",
					"match_id", a.MatchID, "round", a.TargetRound, "pos", a.BracketPos)
			}
		case models.BracketCreate:
			tag, err := s.pg.Exec(ctx, `
				INSERT INTO matches (match_type, playoff_round, bracket_pos, bracket_label,
				                     team1_id, team2_id, status, format, group_name, week)
				SELECT 'playoff', $1, $2, $3, $4, $5, 'scheduled', 'BO3', 'playoffs', 0
				WHERE NOT EXISTS (
					SELECT 1 FROM matches
					WHERE match_type = 'playoff' AND playoff_round = $1 AND bracket_pos = $2
				)
			`, a.TargetRound, a.BracketPos,
				fmt.Sprintf("R%d #%d", a.TargetRound, a.BracketPos),
				a.Team1ID, a.Team2ID)
			if err != nil {
				success = false
				s.logger.Errorw("bracket create failed",
					"round", a.TargetRound, "pos", a.BracketPos, "error", err)
				continue
			}
			if tag.RowsAffected() > 0 {
				s.logger.Infow("bracket match created",
					"round", a.TargetRound, "pos", a.BracketPos, "title", a.Title)
			}
		default:
			success = false
			s.logger.Warnw("unknown bracket action kind", "kind", a.Kind)
		}
	}
	return success
}
