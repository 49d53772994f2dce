package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus represents the lifecycle state of a ledger record.
type TransactionStatus string

const (
	TransactionStatusInitiated TransactionStatus = "INITIATED"
	TransactionStatusCaptured  TransactionStatus = "CAPTURED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusRefunded  TransactionStatus = "REFUNDED"
)

// transitions is the forward-only state table. FAILED and REFUNDED are
// reserved for a real processor integration; neither ledger operation
// currently moves a record into them.
var transitions = map[TransactionStatus][]TransactionStatus{
	TransactionStatusInitiated: {TransactionStatusCaptured, TransactionStatusFailed},
	TransactionStatusCaptured:  {TransactionStatusRefunded},
}

// CanTransition reports whether a record may move from one status to another.
// Statuses never move backwards and never re-enter themselves.
func CanTransition(from, to TransactionStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transaction is the persisted, append-only ledger record for one booking
// charge. Created only through the ledger's initiate operation, mutated only
// through confirm, never deleted.
type Transaction struct {
	ID             uuid.UUID `json:"id"`
	BookingID      string    `json:"booking_id"`
	IdempotencyKey string    `json:"idempotency_key"`
	SellerID       uuid.UUID `json:"seller_id"`
	BuyerID        uuid.UUID `json:"buyer_id"`

	// Amounts of record, base-currency units.
	Total      int64 `json:"total"`
	Commission int64 `json:"commission"`
	Net        int64 `json:"net"`

	// Buyer-facing amount plus the rate applied at initiation. Kept for audit
	// even though the deployed rates may change later.
	DisplayCurrency string          `json:"display_currency"`
	DisplayAmount   decimal.Decimal `json:"display_amount"`
	Rate            decimal.Decimal `json:"rate"`

	Status      TransactionStatus `json:"status"`
	ExternalRef *string           `json:"external_ref,omitempty"` // processor reference set at capture
	Notes       *string           `json:"notes,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// IsCaptured returns true once the success path has completed.
func (t *Transaction) IsCaptured() bool {
	return t.Status == TransactionStatusCaptured
}

// IsException returns true if the record sits in a reserved exception state.
func (t *Transaction) IsException() bool {
	return t.Status == TransactionStatusFailed || t.Status == TransactionStatusRefunded
}
