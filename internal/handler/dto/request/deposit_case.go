package request

import (
	"strings"

	"rental-ledger/internal/domain/depositcase"
	"rental-ledger/internal/usecase/commands"

	"github.com/google/uuid"
)

type FileDepositCaseRequest struct {
	PaymentID       uuid.UUID `json:"payment_id" binding:"required"`
	RequestedAmount int64     `json:"requested_amount" binding:"required,min=1"`
	Reason          string    `json:"reason" binding:"required,max=2000"`
}

func (r FileDepositCaseRequest) ToCommand(hostID uuid.UUID) commands.FileDepositCaseRequest {
	return commands.FileDepositCaseRequest{
		HostID:          hostID,
		PaymentID:       r.PaymentID,
		RequestedAmount: r.RequestedAmount,
		Reason:          strings.TrimSpace(r.Reason),
	}
}

type ResolveDepositCaseRequest struct {
	Decision         string `json:"decision" binding:"required,oneof=approved partially_approved rejected"`
	ResolutionAmount int64  `json:"resolution_amount" binding:"min=0"`
	Note             string `json:"note" binding:"max=2000"`
}

func (r ResolveDepositCaseRequest) ToCommand(caseID uuid.UUID) commands.ResolveDepositCaseRequest {
	return commands.ResolveDepositCaseRequest{
		CaseID:           caseID,
		Decision:         depositcase.Status(r.Decision),
		ResolutionAmount: r.ResolutionAmount,
		Note:             strings.TrimSpace(r.Note),
	}
}
