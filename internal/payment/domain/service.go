package domain

import (
	"context"
	"time"

	feedomain "github.com/classbill/classbill/internal/fee/domain"
)

// Informational payment method tags. The engine stores but never interprets
// them.
const (
	MethodCash         = "cash"
	MethodCard         = "card"
	MethodBankTransfer = "bank_transfer"
	MethodOnline       = "online"
	MethodOther        = "other"
)

type RecordRequest struct {
	FeeID  string    `json:"fee_id"`
	Amount int64     `json:"amount"`
	Date   time.Time `json:"date"`
	Method string    `json:"method"`
	Note   string    `json:"note,omitempty"`
}

// RecordResponse returns the appended ledger entry together with the fee
// carrying its refreshed status and paid-on stamp.
type RecordResponse struct {
	Payment feedomain.Payment `json:"payment"`
	Fee     feedomain.Fee     `json:"fee"`
}

type Service interface {
	Record(ctx context.Context, req RecordRequest) (*RecordResponse, error)
}
