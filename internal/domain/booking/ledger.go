package booking

import "rental-ledger/internal/domain/payment"

// Display collapses the booking and payment state into what a renter or host
// is shown. The internal taxonomy never leaves this function.
func Display(b *Booking, p *payment.Payment) DisplayState {
	return DisplayOf(b.status, b.cancelRequestedAt != nil, p)
}

// DisplayOf is Display for read models that carry only the status columns.
func DisplayOf(status Status, cancelRequested bool, p *payment.Payment) DisplayState {
	switch status {
	case StatusCancelled:
		return DisplayCancelled
	case StatusCompleted:
		return DisplayCompleted
	case StatusPaymentFailed:
		return DisplayPaymentFailed
	}

	if cancelRequested {
		return DisplayCancelled
	}
	if p == nil {
		return DisplayPaymentPending
	}

	switch p.Status {
	case payment.StatusMethodCollectionPending, payment.StatusCheckoutCreated:
		return DisplayPaymentPending
	case payment.StatusFailed:
		return DisplayPaymentFailed
	case payment.StatusCanceled, payment.StatusRefunded:
		return DisplayCancelled
	case payment.StatusDisputed, payment.StatusDisputeLost, payment.StatusPartiallyRefunded:
		return DisplayActionNeeded
	}

	if p.CaptureStatus == payment.CaptureFailed || p.DepositStatus == payment.DepositCaseSubmitted {
		return DisplayActionNeeded
	}
	if status == StatusConfirmed || status == StatusPaid {
		return DisplayConfirmed
	}
	return DisplayPaymentPending
}
