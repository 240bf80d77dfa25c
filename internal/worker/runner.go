package worker

import (
	"context"
	"log/slog"
	"time"

	"rental-ledger/internal/pkg/config"
	"rental-ledger/internal/usecase/commands"
)

// Locker is satisfied by lease.SweepLock.
type Locker interface {
	Acquire(ctx context.Context, job string) (release func(), ok bool, err error)
}

type Job struct {
	Name string
	Run  func(ctx context.Context) (*commands.SweepReport, error)
}

// Runner executes the settlement sweeps in dependency order. Captures run
// before payouts so a freshly captured payment can become eligible in the
// same tick.
type Runner struct {
	jobs    []Job
	locker  Locker
	timeout time.Duration
}

func NewRunner(settlement commands.SettlementCommands, locker Locker, cfg config.SchedulerConfig) *Runner {
	return &Runner{
		jobs: []Job{
			{Name: commands.StepCapture, Run: settlement.SweepCaptures},
			{Name: commands.StepDepositWindow, Run: settlement.SweepDepositWindows},
			{Name: commands.StepDepositSettlement, Run: settlement.SweepDepositSettlements},
			{Name: commands.StepPayoutEligibility, Run: settlement.SweepPayoutEligibility},
			{Name: commands.StepTransfer, Run: settlement.SweepTransfers},
			{Name: commands.StepReversal, Run: settlement.SweepReversals},
		},
		locker:  locker,
		timeout: cfg.SweepLockTTL,
	}
}

func (r *Runner) Jobs() []Job {
	return r.jobs
}

// RunOnce runs every job once and returns the reports of the jobs that ran.
func (r *Runner) RunOnce(ctx context.Context) []commands.SweepReport {
	reports := make([]commands.SweepReport, 0, len(r.jobs))
	for _, job := range r.jobs {
		if ctx.Err() != nil {
			break
		}
		if report := r.runJob(ctx, job); report != nil {
			reports = append(reports, *report)
		}
	}
	return reports
}

func (r *Runner) runJob(ctx context.Context, job Job) (report *commands.SweepReport) {
	runWithRecovery(job.Name, func() {
		release, ok, err := r.locker.Acquire(ctx, job.Name)
		if err != nil {
			slog.Error("failed to acquire sweep lock", "job", job.Name, "error", err.Error())
			return
		}
		if !ok {
			slog.Debug("sweep lock held elsewhere", "job", job.Name)
			return
		}
		defer release()

		// The job must finish before the lock can expire under it.
		jobCtx := ctx
		if r.timeout > 0 {
			var cancel context.CancelFunc
			jobCtx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}

		started := time.Now()
		rep, err := job.Run(jobCtx)
		if err != nil {
			slog.Error("sweep failed", "job", job.Name, "error", err.Error())
			return
		}
		report = rep
		slog.Info("sweep finished",
			"job", job.Name,
			"processed", rep.Processed,
			"succeeded", rep.Succeeded,
			"skipped", rep.Skipped,
			"failed", rep.Failed,
			"duration_ms", time.Since(started).Milliseconds())
	})
	return report
}

// runWithRecovery keeps one panicking job from taking down the sweeper.
func runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("job panicked", "job", jobName, "panic", r)
		}
	}()
	jobFunc()
}
