package components

import (
	"rental-ledger/internal/infra/db"
	"rental-ledger/internal/infra/readstore"
	"rental-ledger/internal/infra/uow"
	"rental-ledger/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	baseOption,
	readstoreModule,
	uowModule,
)

var baseOption = fx.Provide(
	NewDBTX,
)

// Repositories are built per transaction inside the unit of work; only the
// list read stores run directly on the pool.
var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		fx.Annotate(
			readstore.NewBookingReadStore,
			fx.As(new(queries.BookingListStore)),
		),
		fx.Annotate(
			readstore.NewAlertReadStore,
			fx.As(new(queries.AlertReadStore)),
		),
	),
)

var uowModule = fx.Module("persistence/uow",
	fx.Provide(
		uow.NewPostgresUoW,
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
