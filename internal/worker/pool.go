// Package worker holds the async background machinery: the buffered stat
// ingest pool that batches per-player map lines into ClickHouse, and the
// bracket auto-advancer. Both decouple slow writes from the request path.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/skipio-league/portal-api/internal/models"
)

var (
	statsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_stats_ingested_total",
		Help: "Total number of player map stat lines accepted for ingest",
	})

	statsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_stats_processed_total",
		Help: "Total number of stat lines written to ClickHouse",
	})

	statsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_stats_failed_total",
		Help: "Total number of stat lines that failed to write",
	})

	statsLoadShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_stats_load_shed_total",
		Help: "Total number of stat lines dropped because the queue was full",
	})

	ingestQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "portal_ingest_queue_depth",
		Help: "Current depth of the stat ingest queue",
	})

	batchInsertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "portal_batch_insert_duration_seconds",
		Help:    "Duration of batch inserts to ClickHouse",
		Buckets: prometheus.DefBuckets,
	})
)

// Job is one stat line waiting for a batch slot.
type Job struct {
	Stat       *models.PlayerMapStat
	ReceivedAt time.Time
}

// PoolConfig configures the stat ingest pool.
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	ClickHouse    driver.Conn
	Logger        *zap.Logger
}

// Pool batches incoming stat lines and writes them to ClickHouse.
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger
}

func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	go p.reportQueueDepth()

	p.logger.Infow("Stat ingest pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
	)
}

// Stop drains the queue and waits for all in-flight batches to flush.
func (p *Pool) Stop() {
	p.logger.Info("Stopping stat ingest pool...")
	p.cancel()
	close(p.jobQueue)
	p.wg.Wait()
	p.logger.Info("Stat ingest pool stopped")
}

// Enqueue hands a stat line to the pool. Returns false when the line is
// dropped because the queue is saturated or the pool is shutting down.
func (p *Pool) Enqueue(stat *models.PlayerMapStat) bool {
	if stat.EventID == uuid.Nil {
		stat.EventID = uuid.New()
	}
	if stat.IngestedAt.IsZero() {
		stat.IngestedAt = time.Now()
	}

	// Protect against sending on closed channel during shutdown.
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warnw("Failed to enqueue stat line (pool stopped)", "error", r)
		}
	}()

	select {
	case p.jobQueue <- Job{Stat: stat, ReceivedAt: time.Now()}:
		statsIngested.Inc()
		return true
	default:
		statsLoadShed.Inc()
		p.logger.Warnw("Ingest queue full, dropping stat line",
			"match_id", stat.MatchID, "player_id", stat.PlayerID)
		return false
	}
}

// QueueDepth returns the current queue size.
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			ingestQueueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	batch := make([]Job, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		start := time.Now()
		if err := p.insertBatch(batch); err != nil {
			p.logger.Errorw("Batch insert failed",
				"worker", id, "batchSize", len(batch), "error", err)
			statsFailed.Add(float64(len(batch)))
		} else {
			statsProcessed.Add(float64(len(batch)))
		}
		batchInsertDuration.Observe(time.Since(start).Seconds())
		batch = batch[:0]
	}

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				flush()
				return
			}
			batch = append(batch, job)
			if len(batch) >= p.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-p.ctx.Done():
			flush()
			return
		}
	}
}

func (p *Pool) insertBatch(batch []Job) error {
	ctx := context.Background()

	chBatch, err := p.config.ClickHouse.PrepareBatch(ctx, `
		INSERT INTO map_player_stats (
			event_id, match_id, team_id, player_id, map_name,
			acs, kills, deaths, assists, adr, kast, ingested_at
		)
	`)
	if err != nil {
		return err
	}

	for _, job := range batch {
		s := job.Stat
		if err := chBatch.Append(
			s.EventID,
			s.MatchID,
			s.TeamID,
			s.PlayerID,
			s.MapName,
			s.ACS,
			uint32(s.Kills),
			uint32(s.Deaths),
			uint32(s.Assists),
			s.ADR,
			s.KAST,
			s.IngestedAt,
		); err != nil {
			return err
		}
	}

	return chBatch.Send()
}
