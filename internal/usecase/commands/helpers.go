package commands

import (
	"context"
	"log/slog"
	"time"

	"rental-ledger/internal/infra"
	"rental-ledger/internal/pkg/errs"
	"rental-ledger/internal/usecase/shared"

	"github.com/cenkalti/backoff/v4"
)

const maxCASAttempts = 3

// withCASRetry reruns fn when a version compare-and-set lost a race. fn must
// re-read everything it writes.
func withCASRetry(ctx context.Context, uow shared.UnitOfWork, fn func(ctx context.Context, tx shared.Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxCASAttempts; attempt++ {
		err = uow.Within(ctx, fn)
		if !infra.IsKind(err, infra.KindStaleVersion) {
			return err
		}
		slog.Debug("retrying after concurrent update", "attempt", attempt)
	}
	return errs.Mark(err, errs.ErrConcurrentUpdate)
}

func isNotFound(err error) bool {
	return infra.IsKind(err, infra.KindNotFound)
}

func isStale(err error) bool {
	return infra.IsKind(err, infra.KindStaleVersion)
}

type retryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	CallTimeout time.Duration
}

// callProvider runs op with bounded exponential backoff. Permanent provider
// errors stop immediately. It returns the number of attempts made.
func callProvider(ctx context.Context, policy retryPolicy, op func(ctx context.Context) error) (int, error) {
	maxRetries := policy.MaxAttempts - 1
	if maxRetries < 0 {
		maxRetries = 0
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = policy.BaseDelay
	eb.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(maxRetries)), ctx)

	attempts := 0
	err := backoff.Retry(func() error {
		attempts++
		callCtx := ctx
		if policy.CallTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, policy.CallTimeout)
			defer cancel()
		}
		err := op(callCtx)
		if err != nil && errs.IsAny(err, errs.ErrProviderPermanent) {
			return backoff.Permanent(err)
		}
		return err
	}, b)
	return attempts, err
}

func isPermanentProviderError(err error) bool {
	return errs.IsAny(err, errs.ErrProviderPermanent)
}
