package errs

import "errors"

// Sentinels shared by the use case and handler layers. Use cases mark
// lower-level errors with these so handlers can map them without importing infra.
var (
	// Lookup errors
	ErrBookingNotFound     = errors.New("booking not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrCarNotFound         = errors.New("car not found")
	ErrDepositCaseNotFound = errors.New("deposit case not found")

	// Validation errors
	ErrDomainValidation       = errors.New("domain validation error")
	ErrInvalidDateRange       = errors.New("invalid date range")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrIdempotencyKeyRequired = errors.New("idempotency key required")

	// Conflict errors
	ErrDateRangeConflict   = errors.New("date range conflicts with an existing booking")
	ErrStateConflict       = errors.New("operation not allowed in current state")
	ErrIdempotencyConflict = errors.New("idempotency key reused with a different request")
	ErrConcurrentUpdate    = errors.New("resource was modified concurrently")

	// Authorization errors
	ErrForbidden        = errors.New("forbidden")
	ErrRenterUnverified = errors.New("renter is not verified to book")

	// Processor errors
	ErrDownstreamSessionCreationFailed = errors.New("checkout session creation failed")
	ErrProviderTransient               = errors.New("payment provider temporarily unavailable")
	ErrProviderPermanent               = errors.New("payment provider rejected the request")

	// Webhook errors
	ErrAuthenticity       = errors.New("webhook signature verification failed")
	ErrOutOfOrder         = errors.New("event received out of order")
	ErrInvariantViolation = errors.New("ledger invariant violation")
	ErrUnmatchedEvent     = errors.New("event does not match any payment")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
