package bootstrap

import (
	"context"
	"log/slog"

	"rental-ledger/internal/infra/db"
	"rental-ledger/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
	),
)

// NewDB opens the pool sized by DB_MAX_CONNS/DB_MIN_CONNS. The first ping is
// bounded by DB_CONNECT_TIMEOUT so a dead database fails startup quickly.
func NewDB(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	timeout := cfg.DB.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	logger.Info("database pool opened",
		"host", cfg.DB.Host,
		"database", cfg.DB.DBName,
		"max_conns", pool.Config().MaxConns,
		"min_conns", pool.Config().MinConns)

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			// Sweeps still holding a connection show up here on a slow shutdown.
			stat := pool.Stat()
			logger.Info("closing database pool",
				"acquired_conns", stat.AcquiredConns(),
				"total_conns", stat.TotalConns())
			pool.Close()
			return nil
		},
	})

	return pool, nil
}
