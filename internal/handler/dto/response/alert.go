package response

import (
	"rental-ledger/internal/usecase/queries"
)

type AlertListResponse struct {
	Alerts     []*queries.AlertView `json:"alerts"`
	NextCursor string               `json:"next_cursor,omitempty"`
}

func FromAlertList(items []*queries.AlertView, next *queries.Cursor) *AlertListResponse {
	if items == nil {
		items = []*queries.AlertView{}
	}
	resp := &AlertListResponse{Alerts: items}
	if next != nil {
		resp.NextCursor = next.After
	}
	return resp
}
