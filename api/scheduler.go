/*
scheduler.go - Automated duplicate-allocation cleanup

PURPOSE:
  Periodically sweeps every company for allocations saved more than once
  for the same member, project and week, and deletes all but the newest.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs one sweep immediately on start
  - A failing company is logged and skipped; the sweep continues
  - Stop cancels the context of an in-flight sweep
  - Records the last sweep result for RunNow callers and tests

CONFIGURATION:
  - CheckInterval: How often to sweep (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewCleanupScheduler(service, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: CleanupAllocations endpoint (manual cleanup)
  - workload/dedupe.go: duplicate detection
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/warp/staffing-engine/workload"
)

// CleanupScheduler handles automated duplicate cleanup.
type CleanupScheduler struct {
	Service       *workload.Service
	CheckInterval time.Duration
	Enabled       bool

	logger zerolog.Logger
	ticker *time.Ticker
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// SweepResult summarizes one pass over all companies.
type SweepResult struct {
	Companies int
	Deleted   int
	Failed    int
}

// NewCleanupScheduler creates a new scheduler.
func NewCleanupScheduler(service *workload.Service, logger zerolog.Logger) *CleanupScheduler {
	return &CleanupScheduler{
		Service:       service,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		logger:        logger.With().Str("component", "cleanup").Logger(),
	}
}

// Start begins the scheduler.
func (cs *CleanupScheduler) Start() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if !cs.Enabled {
		cs.logger.Info().Msg("scheduler disabled, not starting")
		return
	}
	if cs.ticker != nil {
		return
	}

	var ctx context.Context
	ctx, cs.cancel = context.WithCancel(context.Background())
	cs.ticker = time.NewTicker(cs.CheckInterval)
	cs.wg.Add(1)

	go cs.run(ctx, cs.ticker)

	cs.logger.Info().Dur("interval", cs.CheckInterval).Msg("scheduler started")
}

// Stop cancels an in-flight sweep and waits for it to return.
func (cs *CleanupScheduler) Stop() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.ticker == nil {
		return
	}
	cs.ticker.Stop()
	cs.cancel()
	cs.wg.Wait()
	cs.ticker = nil
	cs.cancel = nil
	cs.logger.Info().Msg("scheduler stopped")
}

func (cs *CleanupScheduler) run(ctx context.Context, ticker *time.Ticker) {
	defer cs.wg.Done()

	// Run immediately on start
	cs.sweep(ctx)

	for {
		select {
		case <-ticker.C:
			cs.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunNow triggers an immediate sweep (for testing/admin).
func (cs *CleanupScheduler) RunNow(ctx context.Context) SweepResult {
	return cs.sweep(ctx)
}

func (cs *CleanupScheduler) sweep(ctx context.Context) SweepResult {
	var res SweepResult

	companies, err := cs.Service.Companies(ctx)
	if err != nil {
		cs.logger.Error().Err(err).Msg("listing companies")
		return res
	}

	for _, c := range companies {
		if ctx.Err() != nil {
			cs.logger.Warn().Err(ctx.Err()).Msg("sweep interrupted")
			break
		}
		out, err := cs.Service.CleanupDuplicates(ctx, c.CompanyID)
		if err != nil {
			res.Failed++
			cs.logger.Error().Err(err).Str("company_id", c.CompanyID).Msg("cleanup failed")
			continue
		}
		res.Companies++
		res.Deleted += out.Deleted
	}

	if res.Deleted > 0 || res.Failed > 0 {
		cs.logger.Info().
			Int("companies", res.Companies).
			Int("deleted", res.Deleted).
			Int("failed", res.Failed).
			Msg("sweep completed")
	}
	return res
}
