package commands

import (
	"os"
	"time"

	"rental-ledger/internal/domain/payment"
	"rental-ledger/internal/pkg/config"

	"github.com/google/uuid"
)

type Settings struct {
	Policy                    payment.Policy
	CheckoutExpiry            time.Duration
	RequireRenterVerification bool

	CaptureMaxAttempts int
	FallbackEnabled    bool
	FallbackOnAny      bool
	RetryBaseDelay     time.Duration
	CallTimeout        time.Duration

	WorkerID          string
	LeaseTTL          time.Duration
	BatchSize         int
	TransferMaxSweeps int
}

func NewSettings(cfg config.Config) Settings {
	workerID := cfg.Scheduler.WorkerID
	if workerID == "" {
		host, _ := os.Hostname()
		workerID = host + "-" + uuid.NewString()[:8]
	}
	return Settings{
		Policy: payment.Policy{
			PlatformFeeBps:        cfg.Ledger.PlatformFeeBps,
			PayoutDelay:           cfg.Ledger.PayoutDelay,
			DepositClaimWindow:    cfg.Ledger.DepositClaimWindow,
			AuthorizationValidity: cfg.Ledger.AuthorizationValidity,
			CaptureSafetyMargin:   cfg.Ledger.CaptureSafetyMargin,
		},
		CheckoutExpiry:            cfg.Ledger.CheckoutExpiry,
		RequireRenterVerification: cfg.Ledger.RequireRenterVerification,
		CaptureMaxAttempts:        cfg.Ledger.CaptureMaxAttempts,
		FallbackEnabled:           cfg.Ledger.CaptureFallbackEnabled,
		FallbackOnAny:             cfg.Ledger.CaptureFallbackOn == config.FallbackOnAny,
		RetryBaseDelay:            cfg.Scheduler.RetryBaseDelay,
		CallTimeout:               cfg.Stripe.CallTimeout,
		WorkerID:                  workerID,
		LeaseTTL:                  cfg.Scheduler.LeaseTTL,
		BatchSize:                 cfg.Scheduler.BatchSize,
		TransferMaxSweeps:         cfg.Scheduler.TransferMaxSweeps,
	}
}
