package ports

import (
	"context"
	"time"

	"booking-finance-engine/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=services.go -destination=mocks/services_mock.go -package=mocks

// Rate is one official conversion rate, fixed per deployment.
type Rate struct {
	Currency string
	PerUnit  decimal.Decimal // base-currency units per one display unit
	AsOf     time.Time
}

// RateService holds the official conversion rates between the base currency
// and the supported display currencies.
type RateService interface {
	// Rate returns the deployed rate for a currency. Unknown currencies fall
	// back to the base rate of 1; conversion never fails.
	Rate(currency string) Rate
	// ToDisplay re-expresses a base-currency amount in a display currency.
	// No rounding happens here; rounding is deferred to Format.
	ToDisplay(baseAmount int64, currency string) decimal.Decimal
	// ToBase converts a display-currency amount back to base units.
	ToBase(displayAmount decimal.Decimal, currency string) int64
	// Format renders an amount with the currency's fractional-digit count
	// (0 for the base currency, 2 for others). Non-finite amounts are coerced
	// to zero. Fails only with UnsupportedCurrency.
	Format(amount float64, currency string) (string, error)
	// Supports reports whether a currency code is configured.
	Supports(currency string) bool
	// Supported returns the configured currency codes, base currency first.
	Supported() []string
}

// PricingService produces price breakdowns. Pure: fixed inputs always yield
// the same breakdown and nothing is recorded.
type PricingService interface {
	Price(req PriceRequest) *domain.PriceBreakdown
}

// PriceRequest holds validated input for one quote. Date validation
// (end after start) is the caller's job; pricing floors the stay length at
// one billing unit regardless.
type PriceRequest struct {
	Listing   domain.Listing
	Start     time.Time
	End       time.Time
	OptionIDs []string
	Currency  string // display currency
}

// LedgerService records and advances transactions. It consumes breakdowns as
// its input shape only and never recomputes prices.
type LedgerService interface {
	// Initiate records a transaction for a breakdown, or returns the existing
	// record when the idempotency key has been seen before.
	Initiate(ctx context.Context, req InitiateRequest) (*domain.Transaction, error)
	// Confirm moves an INITIATED transaction to CAPTURED, recording the
	// external processor reference. Confirming a CAPTURED record is a no-op.
	Confirm(ctx context.Context, id uuid.UUID, externalRef string) (*domain.Transaction, error)
	// Get fetches a transaction by id.
	Get(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
}

// InitiateRequest holds validated input for transaction initiation.
type InitiateRequest struct {
	BookingID string
	Breakdown domain.PriceBreakdown
	BuyerID   uuid.UUID
	SellerID  uuid.UUID
}

// ReportingService exposes read-only views over the ledger.
type ReportingService interface {
	ListTransactions(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	GetLedgerStats(ctx context.Context, sellerID *uuid.UUID) (*LedgerStats, error)
}

// IdempotencyCache is the Redis-layer idempotency check (fast path). The
// authoritative check stays in the TransactionStore.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // returns cached record JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
