package components

import (
	"rental-ledger/internal/infra/processor"
	"rental-ledger/internal/pkg/config"
	"rental-ledger/internal/usecase/commands"

	"go.uber.org/fx"
)

var ProcessorModule = fx.Module("processor",
	fx.Provide(
		fx.Annotate(
			NewStripeProcessor,
			fx.As(new(commands.PaymentProcessor)),
		),
	),
)

func NewStripeProcessor(cfg config.Config) *processor.StripeProcessor {
	return processor.NewStripeProcessor(cfg.Stripe)
}
