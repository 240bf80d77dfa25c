package payment

type Status string

const (
	StatusMethodCollectionPending Status = "method_collection_pending"
	StatusCheckoutCreated         Status = "checkout_created"
	StatusPaid                    Status = "paid"
	StatusFailed                  Status = "failed"
	StatusCanceled                Status = "canceled"
	StatusRefunded                Status = "refunded"
	StatusPartiallyRefunded       Status = "partially_refunded"
	StatusDisputed                Status = "disputed"
	StatusDisputeLost             Status = "dispute_lost"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusMethodCollectionPending, StatusCheckoutCreated, StatusPaid, StatusFailed, StatusCanceled,
		StatusRefunded, StatusPartiallyRefunded, StatusDisputed, StatusDisputeLost:
		return true
	default:
		return false
	}
}

// IsPrePayment reports whether no funds have been secured yet.
func (s Status) IsPrePayment() bool {
	switch s {
	case StatusMethodCollectionPending, StatusCheckoutCreated, StatusFailed:
		return true
	default:
		return false
	}
}

// HasFunds reports whether the processor has confirmed an authorization or charge.
func (s Status) HasFunds() bool {
	switch s {
	case StatusPaid, StatusRefunded, StatusPartiallyRefunded, StatusDisputed, StatusDisputeLost:
		return true
	default:
		return false
	}
}

type Strategy string

const (
	StrategyDestinationManualCapture Strategy = "destination_manual_capture"
	StrategyPlatformTransferFallback Strategy = "platform_transfer_fallback"
)

func (s Strategy) String() string {
	return string(s)
}

func (s Strategy) IsValid() bool {
	return s == StrategyDestinationManualCapture || s == StrategyPlatformTransferFallback
}

type CaptureStatus string

const (
	CaptureNotRequired CaptureStatus = "not_required"
	CapturePending     CaptureStatus = "pending_capture"
	CaptureCaptured    CaptureStatus = "captured"
	CaptureFailed      CaptureStatus = "capture_failed"
)

func (s CaptureStatus) String() string {
	return string(s)
}

// IsSettled reports whether capture no longer gates the payout.
func (s CaptureStatus) IsSettled() bool {
	return s == CaptureCaptured || s == CaptureNotRequired
}

type DepositStatus string

const (
	DepositNone              DepositStatus = "none"
	DepositPending           DepositStatus = "pending"
	DepositHeld              DepositStatus = "held"
	DepositCaseSubmitted     DepositStatus = "case_submitted"
	DepositRefundPending     DepositStatus = "refund_pending"
	DepositRefunded          DepositStatus = "refunded"
	DepositPartiallyRefunded DepositStatus = "partially_refunded"
	DepositRetained          DepositStatus = "retained"
)

func (s DepositStatus) String() string {
	return string(s)
}

// BlocksPayout is true while the deposit is contested or its refund is unsettled.
func (s DepositStatus) BlocksPayout() bool {
	return s == DepositCaseSubmitted || s == DepositRefundPending
}

func (s DepositStatus) IsTerminal() bool {
	switch s {
	case DepositNone, DepositRefunded, DepositPartiallyRefunded, DepositRetained:
		return true
	default:
		return false
	}
}

type PayoutStatus string

const (
	PayoutPending         PayoutStatus = "pending"
	PayoutEligible        PayoutStatus = "eligible"
	PayoutTransferring    PayoutStatus = "transferring"
	PayoutTransferred     PayoutStatus = "transferred"
	PayoutError           PayoutStatus = "error"
	PayoutBlocked         PayoutStatus = "blocked"
	PayoutCancelled       PayoutStatus = "cancelled"
	PayoutReversalPending PayoutStatus = "reversal_pending"
	PayoutReversed        PayoutStatus = "reversed"
)

func (s PayoutStatus) String() string {
	return string(s)
}

// HasMovedFunds reports whether a transfer to the host exists at the processor.
func (s PayoutStatus) HasMovedFunds() bool {
	return s == PayoutTransferred || s == PayoutReversalPending
}

// IsOpen reports whether the payout may still be transferred.
func (s PayoutStatus) IsOpen() bool {
	switch s {
	case PayoutPending, PayoutEligible, PayoutError, PayoutBlocked:
		return true
	default:
		return false
	}
}
