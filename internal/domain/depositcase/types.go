package depositcase

type Status string

const (
	StatusOpen              Status = "open"
	StatusUnderReview       Status = "under_review"
	StatusApproved          Status = "approved"
	StatusPartiallyApproved Status = "partially_approved"
	StatusRejected          Status = "rejected"
	StatusResolved          Status = "resolved"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusUnderReview, StatusApproved, StatusPartiallyApproved, StatusRejected, StatusResolved:
		return true
	default:
		return false
	}
}

// IsPending is true until a decision has been made.
func (s Status) IsPending() bool {
	return s == StatusOpen || s == StatusUnderReview
}

func (s Status) IsDecision() bool {
	return s == StatusApproved || s == StatusPartiallyApproved || s == StatusRejected
}
