package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"booking-finance-engine/internal/core/domain"
	"booking-finance-engine/internal/core/ports"
	"booking-finance-engine/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const idempotencyTTL = 24 * time.Hour

// LedgerServiceImpl implements ports.LedgerService. It is the only component
// allowed to create or mutate transactions; the store is never touched
// directly by anything else.
type LedgerServiceImpl struct {
	store ports.TransactionStore
	cache ports.IdempotencyCache // optional fast path; nil disables it
	log   zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl. cache may be nil.
func NewLedgerService(store ports.TransactionStore, cache ports.IdempotencyCache, log zerolog.Logger) *LedgerServiceImpl {
	return &LedgerServiceImpl{store: store, cache: cache, log: log}
}

// Initiate records a transaction for a breakdown, collapsing duplicate
// creation attempts onto the first record.
func (s *LedgerServiceImpl) Initiate(ctx context.Context, req ports.InitiateRequest) (*domain.Transaction, error) {
	b := req.Breakdown
	idempKey := domain.BuildIdempotencyKey(req.BookingID, b.DisplayTotal, b.Currency)

	// Layer 1: cache check (best-effort)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, idempKey)
		if err != nil {
			s.log.Warn().Err(err).Str("key", idempKey).Msg("idempotency cache check failed, falling through to store")
		}
		if cached != nil {
			return s.unmarshalCachedTransaction(cached)
		}
	}

	// Layer 2: authoritative store check. An existing record wins over
	// everything else, including a since-tampered breakdown.
	existing, err := s.store.GetByIdempotencyKey(ctx, idempKey)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("idempotency lookup: %w", err))
	}
	if existing != nil {
		s.log.Info().
			Str("tx_id", existing.ID.String()).
			Str("booking_id", req.BookingID).
			Msg("idempotent initiate hit")
		return existing, nil
	}

	// Cross-check the split before anything is written. A mismatch means a
	// pricing bug or a tampered breakdown: reject and alert.
	if !b.SplitBalanced() {
		s.log.Error().
			Str("booking_id", req.BookingID).
			Int64("total", b.Total).
			Int64("commission", b.Commission).
			Int64("net", b.Net).
			Msg("breakdown split mismatch, rejecting initiation")
		return nil, apperror.ErrIntegrityViolation(b.Total, b.Commission, b.Net)
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:              uuid.New(),
		BookingID:       req.BookingID,
		IdempotencyKey:  idempKey,
		SellerID:        req.SellerID,
		BuyerID:         req.BuyerID,
		Total:           b.Total,
		Commission:      b.Commission,
		Net:             b.Net,
		DisplayCurrency: b.Currency,
		DisplayAmount:   b.DisplayTotal,
		Rate:            b.Rate,
		Status:          domain.TransactionStatusInitiated,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	stored, created, err := s.store.CreateIfAbsent(ctx, txn)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create transaction: %w", err))
	}
	if !created {
		// Lost the race to a concurrent identical request; theirs is the record.
		s.log.Info().
			Str("tx_id", stored.ID.String()).
			Str("booking_id", req.BookingID).
			Msg("concurrent initiate collapsed onto existing record")
		return stored, nil
	}

	s.cacheRecord(ctx, idempKey, stored)

	s.log.Info().
		Str("tx_id", stored.ID.String()).
		Str("booking_id", req.BookingID).
		Int64("total", stored.Total).
		Int64("commission", stored.Commission).
		Str("display_currency", stored.DisplayCurrency).
		Msg("transaction initiated")

	return stored, nil
}

// Confirm moves an INITIATED transaction to CAPTURED. Confirming an
// already-captured record returns it unchanged.
func (s *LedgerServiceImpl) Confirm(ctx context.Context, id uuid.UUID, externalRef string) (*domain.Transaction, error) {
	txn, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("lookup transaction: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("Transaction")
	}

	if txn.IsCaptured() {
		// Idempotent on the confirm side too: success, not an error.
		return txn, nil
	}
	if !domain.CanTransition(txn.Status, domain.TransactionStatusCaptured) {
		return nil, apperror.ErrInvalidStateTransition(string(txn.Status), string(domain.TransactionStatusCaptured))
	}

	updated, err := s.store.UpdateStatus(ctx, id, domain.TransactionStatusCaptured, &externalRef)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("capture transaction: %w", err))
	}

	s.cacheRecord(ctx, updated.IdempotencyKey, updated)

	s.log.Info().
		Str("tx_id", updated.ID.String()).
		Str("external_ref", externalRef).
		Msg("transaction captured")

	return updated, nil
}

// Get fetches a transaction by id.
func (s *LedgerServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	txn, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("lookup transaction: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("Transaction")
	}
	return txn, nil
}

// cacheRecord stores the record JSON in the fast-path cache, best-effort.
func (s *LedgerServiceImpl) cacheRecord(ctx context.Context, key string, txn *domain.Transaction) {
	if s.cache == nil {
		return
	}
	respJSON, err := json.Marshal(txn)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to marshal transaction for cache")
		return
	}
	if err := s.cache.Set(ctx, key, respJSON, idempotencyTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to cache idempotency record")
	}
}

// unmarshalCachedTransaction deserializes a cached record.
func (s *LedgerServiceImpl) unmarshalCachedTransaction(data []byte) (*domain.Transaction, error) {
	txn := &domain.Transaction{}
	if err := json.Unmarshal(data, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal cached tx: %w", err))
	}
	return txn, nil
}
