package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	CORS      CORSConfig
	Log       LogConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Stripe    StripeConfig
	Ledger    LedgerConfig
	Scheduler SchedulerConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port        string `envconfig:"PORT" required:"true"`
	MetricsPort string `envconfig:"METRICS_PORT" default:"9090"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
	MinConns int32  `envconfig:"DB_MIN_CONNS" default:"2"`

	MaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `envconfig:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
	ConnectTimeout  time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"10s"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,Idempotency-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

type JWTConfig struct {
	Secret string `envconfig:"JWT_SECRET" required:"true"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type StripeConfig struct {
	SecretKey        string        `envconfig:"STRIPE_SECRET_KEY" required:"true"`
	WebhookSecret    string        `envconfig:"STRIPE_WEBHOOK_SECRET" required:"true"`
	SuccessURL       string        `envconfig:"STRIPE_SUCCESS_URL" default:"http://localhost:3000/checkout/success?session_id={CHECKOUT_SESSION_ID}"`
	CancelURL        string        `envconfig:"STRIPE_CANCEL_URL" default:"http://localhost:3000/checkout/cancel"`
	CallTimeout      time.Duration `envconfig:"STRIPE_CALL_TIMEOUT" default:"10s"`
	WebhookTolerance time.Duration `envconfig:"STRIPE_WEBHOOK_TOLERANCE" default:"5m"`
	APIBaseURL       string        `envconfig:"STRIPE_API_BASE_URL" default:""`
}

type LedgerConfig struct {
	PlatformFeeBps            int64         `envconfig:"LEDGER_PLATFORM_FEE_BPS" default:"1500"`
	PayoutDelay               time.Duration `envconfig:"LEDGER_PAYOUT_DELAY" default:"24h"`
	DepositClaimWindow        time.Duration `envconfig:"LEDGER_DEPOSIT_CLAIM_WINDOW" default:"72h"`
	AuthorizationValidity     time.Duration `envconfig:"LEDGER_AUTHORIZATION_VALIDITY" default:"168h"`
	CaptureSafetyMargin       time.Duration `envconfig:"LEDGER_CAPTURE_SAFETY_MARGIN" default:"12h"`
	CheckoutExpiry            time.Duration `envconfig:"LEDGER_CHECKOUT_EXPIRY" default:"30m"`
	CaptureMaxAttempts        int           `envconfig:"CAPTURE_MAX_ATTEMPTS" default:"3"`
	CaptureFallbackEnabled    bool          `envconfig:"CAPTURE_FALLBACK_ENABLED" default:"true"`
	CaptureFallbackOn         string        `envconfig:"CAPTURE_FALLBACK_ON" default:"permanent"`
	RequireRenterVerification bool          `envconfig:"CHECKOUT_REQUIRE_RENTER_VERIFICATION" default:"true"`
}

type SchedulerConfig struct {
	Spec              string        `envconfig:"SCHEDULER_SPEC" default:"0 */5 * * * *"`
	BatchSize         int           `envconfig:"SCHEDULER_BATCH_SIZE" default:"50"`
	LeaseTTL          time.Duration `envconfig:"SCHEDULER_LEASE_TTL" default:"2m"`
	SweepLockTTL      time.Duration `envconfig:"SCHEDULER_SWEEP_LOCK_TTL" default:"4m"`
	WorkerID          string        `envconfig:"SCHEDULER_WORKER_ID" default:""`
	TransferMaxSweeps int           `envconfig:"SCHEDULER_TRANSFER_MAX_SWEEPS" default:"5"`
	RetryBaseDelay    time.Duration `envconfig:"SCHEDULER_RETRY_BASE_DELAY" default:"500ms"`
}

type RateLimitConfig struct {
	Checkout string `envconfig:"RATE_LIMIT_CHECKOUT" default:"20-M"`
	Webhook  string `envconfig:"RATE_LIMIT_WEBHOOK" default:"600-M"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

const (
	FallbackOnPermanent = "permanent"
	FallbackOnAny       = "any"
)

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if cfg.Ledger.CaptureFallbackOn != FallbackOnPermanent && cfg.Ledger.CaptureFallbackOn != FallbackOnAny {
		return Config{}, fmt.Errorf("CAPTURE_FALLBACK_ON must be %q or %q", FallbackOnPermanent, FallbackOnAny)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:        "8889", // Test port
			MetricsPort: "9099",
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
			MaxConns: 10,
			MinConns: 1,

			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 5 * time.Minute,
			ConnectTimeout:  5 * time.Second,
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeZone:   "UTC",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		JWT: JWTConfig{
			Secret: "test-secret",
		},
		Stripe: StripeConfig{
			SecretKey:        "sk_test_dummy",
			WebhookSecret:    "whsec_test",
			SuccessURL:       "http://localhost:3000/success",
			CancelURL:        "http://localhost:3000/cancel",
			CallTimeout:      5 * time.Second,
			WebhookTolerance: 5 * time.Minute,
		},
		Ledger: LedgerConfig{
			PlatformFeeBps:            1500,
			PayoutDelay:               24 * time.Hour,
			DepositClaimWindow:        72 * time.Hour,
			AuthorizationValidity:     7 * 24 * time.Hour,
			CaptureSafetyMargin:       12 * time.Hour,
			CheckoutExpiry:            30 * time.Minute,
			CaptureMaxAttempts:        3,
			CaptureFallbackEnabled:    true,
			CaptureFallbackOn:         FallbackOnPermanent,
			RequireRenterVerification: true,
		},
		Scheduler: SchedulerConfig{
			Spec:              "*/5 * * * * *",
			BatchSize:         10,
			LeaseTTL:          time.Minute,
			SweepLockTTL:      time.Minute,
			WorkerID:          "test-worker",
			TransferMaxSweeps: 3,
			RetryBaseDelay:    time.Millisecond,
		},
		RateLimit: RateLimitConfig{
			Checkout: "1000-M",
			Webhook:  "1000-M",
		},
	}
}
