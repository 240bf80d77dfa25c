package worker

import (
	"context"
	"log/slog"
	"time"

	"rental-ledger/internal/pkg/errs"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron   *cron.Cron
	runner *Runner
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler registers one entry that runs all sweeps in order on spec
// (seconds precision, UTC). Overlapping ticks are skipped.
func NewScheduler(runner *Runner, spec string) (*Scheduler, error) {
	logger := cronLogger{}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{cron: c, runner: runner, ctx: ctx, cancel: cancel}

	if _, err := c.AddFunc(spec, s.tick); err != nil {
		cancel()
		return nil, errs.Wrapf(err, "invalid scheduler spec %q", spec)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	s.runner.RunOnce(s.ctx)
}

func (s *Scheduler) Start() {
	slog.Info("starting settlement scheduler", "entries", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop cancels running sweeps and waits for them to return.
func (s *Scheduler) Stop() {
	slog.Info("stopping settlement scheduler")
	s.cancel()
	<-s.cron.Stop().Done()
	slog.Info("settlement scheduler stopped")
}

// cronLogger routes cron's own logging to slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
