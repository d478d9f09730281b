package jobs

import (
	"context"
	"log/slog"

	"carshare-escrow/internal/clock"
	"carshare-escrow/internal/config"
	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/logger"
	"carshare-escrow/internal/service"
)

// Source is the read-only view of the engine the jobs work from. It is
// served in-process by the engine services or remotely by the gRPC client.
type Source interface {
	Summary(ctx context.Context) (*domain.LedgerSummary, error)
	ListBookings(ctx context.Context) ([]domain.Booking, error)
}

type servicesSource struct {
	svc *service.Services
}

// FromServices adapts in-process engine services to a Source.
func FromServices(svc *service.Services) Source {
	return servicesSource{svc: svc}
}

func (s servicesSource) Summary(ctx context.Context) (*domain.LedgerSummary, error) {
	return s.svc.Ledger.Summary(ctx)
}

func (s servicesSource) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	return s.svc.Bookings.ListBookings(ctx)
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	source Source
	clock  clock.Clock
	config *config.Config
	log    *slog.Logger
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(source Source, clk clock.Clock, cfg *config.Config) *JobRunner {
	return &JobRunner{
		source: source,
		clock:  clk,
		config: cfg,
		log:    logger.WithService("jobs"),
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			jr.log.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	jr.log.Info("Starting job", "job", jobName)
	jobFunc()
	jr.log.Info("Job completed", "job", jobName)
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.ReconcileEscrow()
	jr.ReportOverdueBookings()
}
