package worker

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/skipio-league/portal-api/internal/logic"
)

var (
	advanceRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_bracket_advance_runs_total",
		Help: "Total number of auto-advance sweeps",
	})

	advanceApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_bracket_advance_applied_total",
		Help: "Total number of sweeps that applied a non-empty plan cleanly",
	})

	advanceErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_bracket_advance_errors_total",
		Help: "Total number of sweeps that failed to compute a plan",
	})
)

// AutoAdvancer periodically recomputes bracket advancements and applies them,
// so the bracket heals itself shortly after a result lands even when the
// result write skipped the explicit advance call.
type AutoAdvancer struct {
	bracket  logic.BracketService
	interval time.Duration
	logger   *zap.SugaredLogger
	done     chan struct{}
	stopped  chan struct{}
}

func NewAutoAdvancer(bracket logic.BracketService, interval time.Duration, logger *zap.SugaredLogger) *AutoAdvancer {
	if interval <= 0 {
		interval = 8 * time.Second
	}
	return &AutoAdvancer{
		bracket:  bracket,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop or context cancellation.
func (a *AutoAdvancer) Start(ctx context.Context) {
	go func() {
		defer close(a.stopped)

		ticker := time.NewTicker(a.interval)
		defer ticker.Stop()

		a.logger.Infow("Bracket auto-advancer started", "interval", a.interval)
		for {
			select {
			case <-ticker.C:
				a.sweep(ctx)
			case <-ctx.Done():
				return
			case <-a.done:
				return
			}
		}
	}()
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (a *AutoAdvancer) Stop() {
	close(a.done)
	<-a.stopped
	a.logger.Info("Bracket auto-advancer stopped")
}

func (a *AutoAdvancer) sweep(ctx context.Context) {
	advanceRuns.Inc()

	actions, err := a.bracket.ComputeAdvancements(ctx)
	if err != nil {
		advanceErrors.Inc()
		a.logger.Errorw("Bracket advancement compute failed", "error", err)
		return
	}
	if len(actions) == 0 {
		return
	}
	if a.bracket.ApplyAdvancements(ctx, actions) {
		advanceApplied.Inc()
		a.logger.Infow("Bracket auto-advanced", "actions", len(actions))
	}
}
