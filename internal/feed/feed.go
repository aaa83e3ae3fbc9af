// Package feed drives the live event stream into the rule engine: a
// timer-driven, non-reentrant fetch-and-evaluate cycle over a pluggable
// event source.
package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/Mousewarriors/SEIM-Project/internal/live"
	"github.com/Mousewarriors/SEIM-Project/internal/model"
	"github.com/Mousewarriors/SEIM-Project/internal/store"
)

// Source supplies batches of events. Fetch returns the current batch; a
// failed fetch fails only the current cycle.
type Source interface {
	Fetch(ctx context.Context) ([]model.Event, error)
	Close() error
}

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	Interval     time.Duration `json:"interval"`
	FetchTimeout time.Duration `json:"fetch_timeout"`
}

// DefaultSchedulerConfig returns default scheduler configuration. The 3s
// interval matches the live monitor poll cadence.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Interval:     3 * time.Second,
		FetchTimeout: 10 * time.Second,
	}
}

// Scheduler runs the poll loop. Cycles run sequentially on one goroutine,
// so a slow fetch delays the next tick rather than overlapping it; rule
// mutations between cycles take effect atomically for the next batch.
type Scheduler struct {
	config SchedulerConfig
	source Source
	engine *live.Engine
	store  store.StateStore
	logger *slog.Logger

	done chan struct{}
}

// NewScheduler creates a feed scheduler.
func NewScheduler(cfg SchedulerConfig, source Source, engine *live.Engine, st store.StateStore, logger *slog.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultSchedulerConfig().Interval
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultSchedulerConfig().FetchTimeout
	}
	return &Scheduler{
		config: cfg,
		source: source,
		engine: engine,
		store:  st,
		logger: logger.With("component", "feed-scheduler"),
		done:   make(chan struct{}),
	}
}

// Start launches the poll loop. Cancel ctx to stop it.
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

// Wait blocks until the poll loop has exited.
func (s *Scheduler) Wait() {
	<-s.done
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	s.logger.Info("feed scheduler started", "interval", s.config.Interval)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// First cycle immediately, then on every tick.
	s.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("feed scheduler stopped")
			return
		case <-ticker.C:
			s.cycle(ctx)
		}
	}
}

// cycle is one fetch-and-evaluate pass. Errors log and yield to the next
// scheduled tick; there is no backoff and no circuit breaker.
func (s *Scheduler) cycle(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.config.FetchTimeout)
	defer cancel()

	events, err := s.source.Fetch(fetchCtx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn("event fetch failed", "error", err)
		return
	}
	if len(events) == 0 {
		return
	}

	emitted := s.engine.Evaluate(events)
	if len(emitted) == 0 {
		return
	}

	// Best-effort persistence; the retained list is authoritative in memory.
	if err := s.store.SaveAlerts(fetchCtx, s.engine.Alerts()); err != nil {
		s.logger.Warn("failed to persist live alerts", "error", err)
	}
}
