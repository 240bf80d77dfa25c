package components

import (
	"rental-ledger/internal/infra/lease"
	"rental-ledger/internal/pkg/config"
	"rental-ledger/internal/usecase/commands"
	"rental-ledger/internal/worker"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		fx.Annotate(
			NewSweepLock,
			fx.As(new(worker.Locker)),
		),
		NewRunner,
		NewScheduler,
	),
)

// The sweep lock and the row leases share one owner id.
func NewSweepLock(client *redis.Client, settings commands.Settings, cfg config.Config) *lease.SweepLock {
	return lease.NewSweepLock(client, settings.WorkerID, cfg.Scheduler.SweepLockTTL)
}

func NewRunner(settlement commands.SettlementCommands, locker worker.Locker, cfg config.Config) *worker.Runner {
	return worker.NewRunner(settlement, locker, cfg.Scheduler)
}

func NewScheduler(runner *worker.Runner, cfg config.Config) (*worker.Scheduler, error) {
	return worker.NewScheduler(runner, cfg.Scheduler.Spec)
}
