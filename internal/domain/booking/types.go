package booking

type Status string

const (
	StatusPending        Status = "pending"
	StatusPaymentPending Status = "payment_pending"
	StatusPaid           Status = "paid"
	StatusConfirmed      Status = "confirmed"
	StatusCompleted      Status = "completed"
	StatusPaymentFailed  Status = "payment_failed"
	StatusCancelled      Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaymentPending, StatusPaid, StatusConfirmed,
		StatusCompleted, StatusPaymentFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusPaymentFailed || s == StatusCancelled
}

// Cancellable lists the states a renter may still cancel from.
func (s Status) Cancellable() bool {
	switch s {
	case StatusPending, StatusPaymentPending, StatusPaid, StatusConfirmed:
		return true
	default:
		return false
	}
}

// DisplayState is the coarse status shown to renters and hosts.
type DisplayState string

const (
	DisplayPaymentPending DisplayState = "payment_pending"
	DisplayActionNeeded   DisplayState = "action_needed"
	DisplayConfirmed      DisplayState = "confirmed"
	DisplayCompleted      DisplayState = "completed"
	DisplayCancelled      DisplayState = "cancelled"
	DisplayPaymentFailed  DisplayState = "payment_failed"
)
