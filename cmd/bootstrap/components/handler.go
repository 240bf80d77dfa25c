package components

import (
	"rental-ledger/internal/handler"
	"rental-ledger/internal/handler/api"
	"rental-ledger/internal/handler/middleware"
	"rental-ledger/internal/pkg/jwt"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewCheckoutHandler,
		api.NewWebhookHandler,
		api.NewBookingHandler,
		api.NewDepositCaseHandler,
		api.NewAlertHandler,
		NewHandlers,
		fx.Annotate(
			func(s *jwt.Service) *jwt.Service { return s },
			fx.As(new(middleware.TokenValidator)),
		),
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)

type handlerParams struct {
	fx.In

	Checkout    *api.CheckoutHandler
	Webhook     *api.WebhookHandler
	Booking     *api.BookingHandler
	DepositCase *api.DepositCaseHandler
	Alert       *api.AlertHandler
}

func NewHandlers(p handlerParams) handler.Handlers {
	return handler.Handlers{
		Checkout:    p.Checkout,
		Webhook:     p.Webhook,
		Booking:     p.Booking,
		DepositCase: p.DepositCase,
		Alert:       p.Alert,
	}
}
