package components

import (
	"rental-ledger/internal/pkg/clock"
	"rental-ledger/internal/pkg/metrics"
	"rental-ledger/internal/usecase/commands"
	"rental-ledger/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
	fx.Invoke(metrics.Register),
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	commands.NewSettings,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewCheckoutCommands,
		commands.NewWebhookCommands,
		commands.NewBookingCommands,
		commands.NewDepositCaseCommands,
		commands.NewSettlementCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewBookingQueries,
		queries.NewAlertQueries,
	),
)
