package handler

import (
	"net/http"

	"rental-ledger/internal/handler/api"
	"rental-ledger/internal/handler/middleware"
	"rental-ledger/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Checkout    *api.CheckoutHandler
	Webhook     *api.WebhookHandler
	Booking     *api.BookingHandler
	DepositCase *api.DepositCaseHandler
	Alert       *api.AlertHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, h Handlers, authMiddleware *middleware.AuthMiddleware) error {
	checkoutLimit, err := middleware.NewRateLimiter("checkout", cfg.RateLimit.Checkout)
	if err != nil {
		return err
	}
	webhookLimit, err := middleware.NewRateLimiter("webhook", cfg.RateLimit.Webhook)
	if err != nil {
		return err
	}

	setupMiddleware(engine, cfg)
	setupRoutes(engine, h, authMiddleware, checkoutLimit, webhookLimit)
	return nil
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.RequestLogger())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware, checkoutLimit, webhookLimit gin.HandlerFunc) {
	engine.GET("/health", healthCheck)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		// Authenticated by signature, not by token
		addRoutes(apiGroup.Group("/webhooks"), []route{
			{Method: http.MethodPost, Path: "/stripe", Handler: h.Webhook.Stripe, Mw: []gin.HandlerFunc{webhookLimit}},
		})

		checkout := apiGroup.Group("/checkout")
		checkout.Use(authMiddleware.RequireAuth(), checkoutLimit)
		{
			addRoutes(checkout, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Checkout.Create},
				{Method: http.MethodGet, Path: "/redirect", Handler: h.Checkout.Redirect},
			})
		}

		bookings := apiGroup.Group("/bookings")
		bookings.Use(authMiddleware.RequireAuth())
		{
			addRoutes(bookings, []route{
				{Method: http.MethodGet, Path: "", Handler: h.Booking.List},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Booking.Get},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Booking.Cancel},
				{Method: http.MethodPost, Path: "/:id/complete", Handler: h.Booking.Complete},
			})
		}

		depositCases := apiGroup.Group("/deposit-cases")
		depositCases.Use(authMiddleware.RequireAuth())
		{
			addRoutes(depositCases, []route{
				{Method: http.MethodPost, Path: "", Handler: h.DepositCase.File},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
		{
			addRoutes(admin, []route{
				{Method: http.MethodGet, Path: "/alerts", Handler: h.Alert.ListOpen},
				{Method: http.MethodPost, Path: "/deposit-cases/:id/review", Handler: h.DepositCase.Review},
				{Method: http.MethodPost, Path: "/deposit-cases/:id/resolve", Handler: h.DepositCase.Resolve},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
