// Package memory provides an in-process TransactionStore. It is the default
// storage driver for development and tests; data does not survive a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"booking-finance-engine/internal/core/domain"
	"booking-finance-engine/internal/core/ports"

	"github.com/google/uuid"
)

// TransactionStore keeps the ledger in two maps guarded by one lock: the
// primary index by id and a unique index by idempotency key. Holding the
// write lock across the lookup-and-insert in CreateIfAbsent is what makes
// the operation atomic.
type TransactionStore struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]*domain.Transaction
	byKey map[string]uuid.UUID
}

// NewTransactionStore creates an empty in-memory store.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{
		byID:  make(map[uuid.UUID]*domain.Transaction),
		byKey: make(map[string]uuid.UUID),
	}
}

// CreateIfAbsent inserts the transaction unless one with the same idempotency
// key already exists, in which case the existing record is returned with
// created=false.
func (s *TransactionStore) CreateIfAbsent(ctx context.Context, txn *domain.Transaction) (*domain.Transaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existingID, ok := s.byKey[txn.IdempotencyKey]; ok {
		return copyTransaction(s.byID[existingID]), false, nil
	}

	stored := copyTransaction(txn)
	s.byID[stored.ID] = stored
	s.byKey[stored.IdempotencyKey] = stored.ID
	return copyTransaction(stored), true, nil
}

// GetByID returns the transaction or (nil, nil) when absent.
func (s *TransactionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txn, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return copyTransaction(txn), nil
}

// GetByIdempotencyKey returns the transaction for the key or (nil, nil).
func (s *TransactionStore) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byKey[key]
	if !ok {
		return nil, nil
	}
	return copyTransaction(s.byID[id]), nil
}

// UpdateStatus sets the status (and, when non-nil, the external reference)
// of an existing transaction. Returns (nil, nil) when the id is unknown.
func (s *TransactionStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus, externalRef *string) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	txn.Status = status
	if externalRef != nil {
		ref := *externalRef
		txn.ExternalRef = &ref
	}
	txn.UpdatedAt = time.Now().UTC()
	return copyTransaction(txn), nil
}

// List returns a page of transactions matching the filters, newest first,
// along with the total count of matches.
func (s *TransactionStore) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*domain.Transaction, 0, len(s.byID))
	for _, txn := range s.byID {
		if params.SellerID != nil && txn.SellerID != *params.SellerID {
			continue
		}
		if params.BuyerID != nil && txn.BuyerID != *params.BuyerID {
			continue
		}
		if params.Status != nil && txn.Status != *params.Status {
			continue
		}
		matched = append(matched, txn)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (params.Page - 1) * params.PageSize
	if start >= len(matched) {
		return []domain.Transaction{}, total, nil
	}
	end := start + params.PageSize
	if end > len(matched) {
		end = len(matched)
	}

	page := make([]domain.Transaction, 0, end-start)
	for _, txn := range matched[start:end] {
		page = append(page, *copyTransaction(txn))
	}
	return page, total, nil
}

// GetStats aggregates the ledger, optionally scoped to one seller. Volume
// figures count CAPTURED transactions only.
func (s *TransactionStore) GetStats(ctx context.Context, sellerID *uuid.UUID) (*ports.LedgerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &ports.LedgerStats{}
	for _, txn := range s.byID {
		if sellerID != nil && txn.SellerID != *sellerID {
			continue
		}
		stats.TotalTransactions++
		switch txn.Status {
		case domain.TransactionStatusInitiated:
			stats.Initiated++
		case domain.TransactionStatusCaptured:
			stats.Captured++
			stats.GrossVolume += txn.Total
			stats.CommissionEarned += txn.Commission
			stats.SellerPayout += txn.Net
		}
	}
	return stats, nil
}

// Ping reports the store as healthy; there is nothing to reach.
func (s *TransactionStore) Ping(ctx context.Context) error {
	return nil
}

// Name identifies the store in health reports.
func (s *TransactionStore) Name() string {
	return "memory"
}

func copyTransaction(txn *domain.Transaction) *domain.Transaction {
	cp := *txn
	if txn.ExternalRef != nil {
		ref := *txn.ExternalRef
		cp.ExternalRef = &ref
	}
	if txn.Notes != nil {
		notes := *txn.Notes
		cp.Notes = &notes
	}
	return &cp
}
