package bootstrap

import (
	"log/slog"
	"time"

	"rental-ledger/internal/pkg/config"

	"go.uber.org/fx"
)

const defaultConnectTimeout = 10 * time.Second

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
	),
	fx.Invoke(LogEffectiveConfig),
)

// LogEffectiveConfig records the settings that change how money moves.
// Credentials and secrets are left out.
func LogEffectiveConfig(logger *slog.Logger, cfg config.Config) {
	logger.Info("configuration loaded",
		slog.Group("db",
			"host", cfg.DB.Host,
			"name", cfg.DB.DBName,
			"max_conns", cfg.DB.MaxConns,
			"min_conns", cfg.DB.MinConns),
		slog.Group("ledger",
			"platform_fee_bps", cfg.Ledger.PlatformFeeBps,
			"payout_delay", cfg.Ledger.PayoutDelay.String(),
			"deposit_claim_window", cfg.Ledger.DepositClaimWindow.String(),
			"capture_max_attempts", cfg.Ledger.CaptureMaxAttempts,
			"capture_fallback_enabled", cfg.Ledger.CaptureFallbackEnabled,
			"capture_fallback_on", cfg.Ledger.CaptureFallbackOn),
		slog.Group("scheduler",
			"spec", cfg.Scheduler.Spec,
			"batch_size", cfg.Scheduler.BatchSize,
			"lease_ttl", cfg.Scheduler.LeaseTTL.String(),
			"transfer_max_sweeps", cfg.Scheduler.TransferMaxSweeps))
}
