package bootstrap

import (
	"rental-ledger/cmd/bootstrap/components"

	"go.uber.org/fx"
)

// Module is the shared graph of the API server and the sweeper.
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	components.PersistenceModule,
	components.ProcessorModule,
	components.UseCaseModule,
)

// APIModule adds the HTTP surface.
var APIModule = fx.Options(
	Module,
	JWTModule,
	components.HandlerModule,
)

// SweeperModule adds the settlement scheduler.
var SweeperModule = fx.Options(
	Module,
	RedisModule,
	components.WorkerModule,
)
