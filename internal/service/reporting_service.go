package service

import (
	"context"
	"fmt"

	"booking-finance-engine/internal/core/domain"
	"booking-finance-engine/internal/core/ports"
	"booking-finance-engine/pkg/apperror"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ReportingServiceImpl implements ports.ReportingService. Read-only over the
// store; the ledger remains the only writer.
type ReportingServiceImpl struct {
	store ports.TransactionStore
}

// NewReportingService creates a new ReportingServiceImpl.
func NewReportingService(store ports.TransactionStore) *ReportingServiceImpl {
	return &ReportingServiceImpl{store: store}
}

// ListTransactions returns a filtered, paginated slice of the ledger.
func (s *ReportingServiceImpl) ListTransactions(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = defaultPageSize
	}
	if params.PageSize > maxPageSize {
		params.PageSize = maxPageSize
	}

	txns, total, err := s.store.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.ErrDatabaseError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, total, nil
}

// GetLedgerStats returns aggregated figures, optionally scoped to one seller.
func (s *ReportingServiceImpl) GetLedgerStats(ctx context.Context, sellerID *uuid.UUID) (*ports.LedgerStats, error) {
	stats, err := s.store.GetStats(ctx, sellerID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("ledger stats: %w", err))
	}
	return stats, nil
}
