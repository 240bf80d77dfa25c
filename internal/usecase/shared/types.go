package shared

import (
	"time"

	"github.com/google/uuid"
)

type CarSnapshot struct {
	ID            uuid.UUID
	HostID        uuid.UUID
	DailyRate     int64
	DepositAmount int64
	Currency      string
	Active        bool
}

type VerificationSnapshot struct {
	UserID             uuid.UUID
	ReadyToBook        bool
	PayoutsEnabled     bool
	ConnectedAccountID string
}

type WebhookEventRecord struct {
	EventID    string
	Type       string
	PaymentID  *uuid.UUID
	Outcome    string
	ReceivedAt time.Time
}

type AlertKind string

const (
	AlertInvariantViolation AlertKind = "invariant_violation"
	AlertCaptureFailed      AlertKind = "capture_failed"
	AlertTransferBlocked    AlertKind = "transfer_blocked"
	AlertReversalFailed     AlertKind = "reversal_failed"
	AlertUnmatchedEvent     AlertKind = "unmatched_event"
)

type Alert struct {
	Kind      AlertKind
	DedupKey  string
	PaymentID *uuid.UUID
	Message   string
	Payload   []byte
	CreatedAt time.Time
}
