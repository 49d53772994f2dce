package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"booking-finance-engine/internal/core/domain"
	"booking-finance-engine/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const txColumns = `id, booking_id, idempotency_key, seller_id, buyer_id,
	total_amount, commission_amount, net_amount, display_currency, display_amount,
	applied_rate, status, external_ref, notes, created_at, updated_at`

// TransactionStore implements ports.TransactionStore on PostgreSQL. The
// UNIQUE constraint on idempotency_key is what makes CreateIfAbsent safe
// under concurrent identical requests.
type TransactionStore struct {
	pool Pool
}

// NewTransactionStore creates a new TransactionStore.
func NewTransactionStore(pool Pool) *TransactionStore {
	return &TransactionStore{pool: pool}
}

// CreateIfAbsent inserts the transaction unless the idempotency key is
// already taken. ON CONFLICT DO NOTHING means a losing writer simply inserts
// zero rows; the winner's record is then fetched and returned.
func (s *TransactionStore) CreateIfAbsent(ctx context.Context, t *domain.Transaction) (*domain.Transaction, bool, error) {
	query := `INSERT INTO transactions (` + txColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (idempotency_key) DO NOTHING`

	tag, err := s.pool.Exec(ctx, query,
		t.ID, t.BookingID, t.IdempotencyKey, t.SellerID, t.BuyerID,
		t.Total, t.Commission, t.Net, t.DisplayCurrency, t.DisplayAmount,
		t.Rate, t.Status, t.ExternalRef, t.Notes, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert transaction: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return t, true, nil
	}

	existing, err := s.GetByIdempotencyKey(ctx, t.IdempotencyKey)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("conflict on key %s but no row found", t.IdempotencyKey)
	}
	return existing, false, nil
}

// GetByID fetches a transaction by UUID, returning (nil, nil) when absent.
func (s *TransactionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions WHERE id = $1`
	return s.scanTransaction(s.pool.QueryRow(ctx, query, id))
}

// GetByIdempotencyKey fetches a transaction by its idempotency key.
func (s *TransactionStore) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions WHERE idempotency_key = $1`
	return s.scanTransaction(s.pool.QueryRow(ctx, query, key))
}

// UpdateStatus sets the status and, when non-nil, the external reference.
// Returns (nil, nil) when the id is unknown.
func (s *TransactionStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus, externalRef *string) (*domain.Transaction, error) {
	query := `UPDATE transactions
		SET status = $1, external_ref = COALESCE($2, external_ref), updated_at = $3
		WHERE id = $4
		RETURNING ` + txColumns

	return s.scanTransaction(s.pool.QueryRow(ctx, query, status, externalRef, time.Now().UTC(), id))
}

// List fetches transactions with filtering and pagination, newest first.
func (s *TransactionStore) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.SellerID != nil {
		conditions = append(conditions, fmt.Sprintf("seller_id = $%d", argIdx))
		args = append(args, *params.SellerID)
		argIdx++
	}
	if params.BuyerID != nil {
		conditions = append(conditions, fmt.Sprintf("buyer_id = $%d", argIdx))
		args = append(args, *params.BuyerID)
		argIdx++
	}
	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transactions %s", where)
	var total int64
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT `+txColumns+` FROM transactions %s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := s.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		if err := scanInto(rows, &t); err != nil {
			return nil, 0, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, total, nil
}

// GetStats aggregates the ledger, optionally scoped to one seller. Volume
// figures count CAPTURED transactions only.
func (s *TransactionStore) GetStats(ctx context.Context, sellerID *uuid.UUID) (*ports.LedgerStats, error) {
	var args []any
	where := ""
	if sellerID != nil {
		where = "WHERE seller_id = $1"
		args = append(args, *sellerID)
	}

	query := fmt.Sprintf(`SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'INITIATED') AS initiated,
		COUNT(*) FILTER (WHERE status = 'CAPTURED') AS captured,
		COALESCE(SUM(total_amount) FILTER (WHERE status = 'CAPTURED'), 0) AS gross_volume,
		COALESCE(SUM(commission_amount) FILTER (WHERE status = 'CAPTURED'), 0) AS commission_earned,
		COALESCE(SUM(net_amount) FILTER (WHERE status = 'CAPTURED'), 0) AS seller_payout
		FROM transactions %s`, where)

	stats := &ports.LedgerStats{}
	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&stats.TotalTransactions, &stats.Initiated, &stats.Captured,
		&stats.GrossVolume, &stats.CommissionEarned, &stats.SellerPayout,
	)
	if err != nil {
		return nil, fmt.Errorf("get ledger stats: %w", err)
	}
	return stats, nil
}

// scanTransaction scans a single row into a Transaction, mapping ErrNoRows
// to (nil, nil).
func (s *TransactionStore) scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	if err := scanInto(row, t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}

func scanInto(row pgx.Row, t *domain.Transaction) error {
	return row.Scan(
		&t.ID, &t.BookingID, &t.IdempotencyKey, &t.SellerID, &t.BuyerID,
		&t.Total, &t.Commission, &t.Net, &t.DisplayCurrency, &t.DisplayAmount,
		&t.Rate, &t.Status, &t.ExternalRef, &t.Notes, &t.CreatedAt, &t.UpdatedAt,
	)
}
