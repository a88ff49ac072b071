package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/estately/estately/internal/observability/metrics"
)

// BillSweeper flips pending bills past their due date to overdue.
type BillSweeper interface {
	SweepOverdue(ctx context.Context, now time.Time) (int64, error)
}

// LeaseExpirer flips active leases past their end date to expired and
// reports how many leases are still active.
type LeaseExpirer interface {
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
	ActiveCount(ctx context.Context) (int, error)
}

// SweepWorker runs the periodic status sweep: overdue bills and expired
// leases. Each run is idempotent, so an overlapping or repeated run is
// harmless.
type SweepWorker struct {
	bills     BillSweeper
	leases    LeaseExpirer
	cron      *cron.Cron
	spec      string
	logger    *slog.Logger
	isRunning bool
}

// NewSweepWorker creates a sweep worker with a cron spec such as
// "*/5 * * * *".
func NewSweepWorker(bills BillSweeper, leases LeaseExpirer, spec string, logger *slog.Logger) *SweepWorker {
	if logger == nil {
		logger = slog.Default()
	}

	return &SweepWorker{
		bills:  bills,
		leases: leases,
		cron:   cron.New(),
		spec:   spec,
		logger: logger,
	}
}

// Start registers the sweep job and starts the cron loop
func (w *SweepWorker) Start() error {
	_, err := w.cron.AddFunc(w.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		w.sweep(ctx)
	})
	if err != nil {
		return err
	}

	w.cron.Start()
	w.isRunning = true
	w.logger.Info("sweep worker started", slog.String("spec", w.spec))
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish
func (w *SweepWorker) Stop() {
	if !w.isRunning {
		return
	}
	<-w.cron.Stop().Done()
	w.isRunning = false
	w.logger.Info("sweep worker stopped")
}

// RunNow executes one sweep immediately, outside the schedule
func (w *SweepWorker) RunNow(ctx context.Context) (int64, int64, error) {
	return w.runSweep(ctx)
}

func (w *SweepWorker) sweep(ctx context.Context) {
	if _, _, err := w.runSweep(ctx); err != nil {
		w.logger.Error("sweep failed", slog.String("error", err.Error()))
	}
}

func (w *SweepWorker) runSweep(ctx context.Context) (int64, int64, error) {
	now := time.Now()

	billsFlipped, err := w.bills.SweepOverdue(ctx, now)
	if err != nil {
		return 0, 0, err
	}

	leasesFlipped, err := w.leases.ExpireDue(ctx, now)
	if err != nil {
		return billsFlipped, 0, err
	}

	metrics.ObserveSweep(billsFlipped, leasesFlipped)

	if active, err := w.leases.ActiveCount(ctx); err == nil {
		metrics.SetActiveLeases(active)
	} else {
		w.logger.Warn("failed to count active leases", slog.String("error", err.Error()))
	}

	if billsFlipped > 0 || leasesFlipped > 0 {
		w.logger.Info("sweep completed",
			slog.Int64("bills_overdue", billsFlipped),
			slog.Int64("leases_expired", leasesFlipped),
		)
	}

	return billsFlipped, leasesFlipped, nil
}
