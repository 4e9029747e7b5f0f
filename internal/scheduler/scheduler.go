package scheduler

import (
	"context"
	"fmt"
	"time"

	"bike-parking-api-server/internal/logger"

	"github.com/robfig/cron/v3"
)

const reconcileTimeout = time.Minute

// Reconciler finishes reviews whose cleanup was interrupted.
type Reconciler interface {
	ReconcileProposals(ctx context.Context) (int, error)
}

// Scheduler runs the background maintenance jobs.
type Scheduler struct {
	cron       *cron.Cron
	reconciler Reconciler
}

// NewScheduler registers the reconciliation job on spec, a six-field cron
// expression with seconds. An empty spec disables the job.
func NewScheduler(reconciler Reconciler, spec string) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	s := &Scheduler{cron: c, reconciler: reconciler}
	if spec == "" {
		logger.Warn("Proposal reconciliation is disabled")
		return s, nil
	}
	if _, err := s.cron.AddFunc(spec, s.ReconcileProposals); err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", spec, err)
	}
	return s, nil
}

// ReconcileProposals runs one reconciliation pass.
func (s *Scheduler) ReconcileProposals() {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	n, err := s.reconciler.ReconcileProposals(ctx)
	if err != nil {
		logger.Error("Proposal reconciliation failed", "error", err)
		return
	}
	if n > 0 {
		logger.Info("Reconciled reviewed proposals", "count", n)
	}
}

func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// Jobs reports how many jobs are registered.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}
