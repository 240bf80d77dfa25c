package bootstrap

import (
	"rental-ledger/internal/pkg/config"
	"rental-ledger/internal/pkg/jwt"

	"go.uber.org/fx"
)

var JWTModule = fx.Module("jwt",
	fx.Provide(
		NewJWTService,
	),
)

// Tokens are issued by the identity provider; this service only verifies them.
func NewJWTService(cfg config.Config) *jwt.Service {
	if cfg.JWT.Secret == "" {
		panic("JWT_SECRET must not be empty")
	}
	return jwt.NewService(cfg.JWT.Secret)
}
