package ports

import (
	"context"

	"booking-finance-engine/internal/core/domain"

	"github.com/google/uuid"
)

//go:generate mockgen -source=repositories.go -destination=mocks/repositories_mock.go -package=mocks

// TransactionStore persists ledger records, keyed by id with a unique index on
// idempotency key. Implementations must make CreateIfAbsent atomic with
// respect to that index: two concurrent calls carrying the same key must yield
// exactly one stored record.
type TransactionStore interface {
	// CreateIfAbsent inserts t unless a record with the same idempotency key
	// already exists. Returns the stored record and whether this call created it.
	CreateIfAbsent(ctx context.Context, t *domain.Transaction) (*domain.Transaction, bool, error)
	// GetByID fetches a record by id. Returns nil, nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	// GetByIdempotencyKey fetches a record by idempotency key. Returns nil, nil when absent.
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error)
	// UpdateStatus advances a record's status, stamps updated_at, and records
	// the external processor reference when non-nil. Returns the updated record.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus, externalRef *string) (*domain.Transaction, error)
	// Reporting queries
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	GetStats(ctx context.Context, sellerID *uuid.UUID) (*LedgerStats, error)
}

// TransactionListParams holds filter + pagination for listing ledger records.
type TransactionListParams struct {
	SellerID *uuid.UUID
	BuyerID  *uuid.UUID
	Status   *domain.TransactionStatus
	Page     int
	PageSize int
}

// LedgerStats holds aggregated ledger figures for reporting.
type LedgerStats struct {
	TotalTransactions int64
	Initiated         int64
	Captured          int64
	GrossVolume       int64 // sum of captured totals, base units
	CommissionEarned  int64 // sum of captured commissions
	SellerPayout      int64 // sum of captured nets
}
