package bootstrap

import (
	"log/slog"

	"rental-ledger/internal/handler/middleware"
	"rental-ledger/internal/pkg/config"

	"go.uber.org/fx"
)

var LoggerModule = fx.Module("logger",
	fx.Provide(
		NewLogger,
	),
	// Use cases and workers log through the package-level logger.
	fx.Invoke(slog.SetDefault),
)

func NewLogger(cfg config.Config) *slog.Logger {
	return middleware.NewSlogLogger(cfg.Log)
}
