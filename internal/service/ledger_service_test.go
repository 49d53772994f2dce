package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"booking-finance-engine/internal/core/domain"
	"booking-finance-engine/internal/core/ports"
	"booking-finance-engine/internal/core/ports/mocks"
	"booking-finance-engine/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type ledgerTestDeps struct {
	svc   *LedgerServiceImpl
	store *mocks.MockTransactionStore
	cache *mocks.MockIdempotencyCache
	ctrl  *gomock.Controller
}

func setupLedgerService(t *testing.T) *ledgerTestDeps {
	ctrl := gomock.NewController(t)
	d := &ledgerTestDeps{
		store: mocks.NewMockTransactionStore(ctrl),
		cache: mocks.NewMockIdempotencyCache(ctrl),
		ctrl:  ctrl,
	}
	d.svc = NewLedgerService(d.store, d.cache, zerolog.Nop())
	return d
}

func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

func testBreakdown() domain.PriceBreakdown {
	return domain.PriceBreakdown{
		Currency:     "USD",
		Rate:         decimal.RequireFromString("146.5"),
		Nights:       3,
		BaseCost:     9000,
		OptionCost:   2000,
		Total:        11000,
		Commission:   2150,
		Net:          8850,
		DisplayTotal: decimal.NewFromInt(11000).Div(decimal.RequireFromString("146.5")),
	}
}

func testInitiateRequest() ports.InitiateRequest {
	return ports.InitiateRequest{
		BookingID: "booking-42",
		Breakdown: testBreakdown(),
		BuyerID:   uuid.New(),
		SellerID:  uuid.New(),
	}
}

// ==================== Initiate ====================

func TestLedgerService_Initiate_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := testInitiateRequest()
	idempKey := domain.BuildIdempotencyKey(req.BookingID, req.Breakdown.DisplayTotal, "USD")

	d.cache.EXPECT().Get(ctx, idempKey).Return(nil, nil)
	d.store.EXPECT().GetByIdempotencyKey(ctx, idempKey).Return(nil, nil)
	d.store.EXPECT().CreateIfAbsent(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, txn *domain.Transaction) (*domain.Transaction, bool, error) {
			return txn, true, nil
		})
	d.cache.EXPECT().Set(ctx, idempKey, gomock.Any(), idempotencyTTL).Return(nil)

	txn, err := d.svc.Initiate(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, txn)

	assert.Equal(t, domain.TransactionStatusInitiated, txn.Status)
	assert.Equal(t, idempKey, txn.IdempotencyKey)
	assert.Equal(t, req.BookingID, txn.BookingID)
	assert.Equal(t, req.SellerID, txn.SellerID)
	assert.Equal(t, req.BuyerID, txn.BuyerID)
	assert.Equal(t, int64(11000), txn.Total)
	assert.Equal(t, int64(2150), txn.Commission)
	assert.Equal(t, int64(8850), txn.Net)
	assert.Equal(t, "USD", txn.DisplayCurrency)
	assert.True(t, txn.Rate.Equal(req.Breakdown.Rate), "applied rate kept for audit")
	assert.NotEqual(t, uuid.Nil, txn.ID)
	assert.False(t, txn.CreatedAt.IsZero())
}

func TestLedgerService_Initiate_IdempotentStoreHit(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := testInitiateRequest()
	idempKey := domain.BuildIdempotencyKey(req.BookingID, req.Breakdown.DisplayTotal, "USD")

	existing := &domain.Transaction{
		ID:             uuid.New(),
		IdempotencyKey: idempKey,
		Status:         domain.TransactionStatusInitiated,
		Total:          11000,
	}

	d.cache.EXPECT().Get(ctx, idempKey).Return(nil, nil)
	d.store.EXPECT().GetByIdempotencyKey(ctx, idempKey).Return(existing, nil)
	// No CreateIfAbsent: the existing record is returned unchanged.

	txn, err := d.svc.Initiate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, existing, txn)
}

func TestLedgerService_Initiate_IdempotentCacheHit(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := testInitiateRequest()
	idempKey := domain.BuildIdempotencyKey(req.BookingID, req.Breakdown.DisplayTotal, "USD")

	cached := &domain.Transaction{
		ID:     uuid.New(),
		Status: domain.TransactionStatusInitiated,
		Total:  11000,
	}
	cachedJSON, _ := json.Marshal(cached)

	d.cache.EXPECT().Get(ctx, idempKey).Return(cachedJSON, nil)

	txn, err := d.svc.Initiate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, cached.ID, txn.ID)
	assert.Equal(t, int64(11000), txn.Total)
}

func TestLedgerService_Initiate_CacheErrorFallsThrough(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := testInitiateRequest()
	idempKey := domain.BuildIdempotencyKey(req.BookingID, req.Breakdown.DisplayTotal, "USD")

	d.cache.EXPECT().Get(ctx, idempKey).Return(nil, errors.New("redis down"))
	d.store.EXPECT().GetByIdempotencyKey(ctx, idempKey).Return(nil, nil)
	d.store.EXPECT().CreateIfAbsent(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, txn *domain.Transaction) (*domain.Transaction, bool, error) {
			return txn, true, nil
		})
	d.cache.EXPECT().Set(ctx, idempKey, gomock.Any(), idempotencyTTL).Return(nil)

	txn, err := d.svc.Initiate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusInitiated, txn.Status)
}

func TestLedgerService_Initiate_IntegrityViolation(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := testInitiateRequest()
	req.Breakdown.Net = 8000 // commission 2150 + net 8000 != total 11000
	idempKey := domain.BuildIdempotencyKey(req.BookingID, req.Breakdown.DisplayTotal, "USD")

	d.cache.EXPECT().Get(ctx, idempKey).Return(nil, nil)
	d.store.EXPECT().GetByIdempotencyKey(ctx, idempKey).Return(nil, nil)
	// No CreateIfAbsent: nothing may be written on an integrity violation.

	txn, err := d.svc.Initiate(ctx, req)
	assert.Nil(t, txn)
	assertAppError(t, err, "LGR_001")
}

func TestLedgerService_Initiate_ToleranceAbsorbsRounding(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := testInitiateRequest()
	req.Breakdown.Net = 8851 // off by one: within tolerance
	idempKey := domain.BuildIdempotencyKey(req.BookingID, req.Breakdown.DisplayTotal, "USD")

	d.cache.EXPECT().Get(ctx, idempKey).Return(nil, nil)
	d.store.EXPECT().GetByIdempotencyKey(ctx, idempKey).Return(nil, nil)
	d.store.EXPECT().CreateIfAbsent(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, txn *domain.Transaction) (*domain.Transaction, bool, error) {
			return txn, true, nil
		})
	d.cache.EXPECT().Set(ctx, idempKey, gomock.Any(), idempotencyTTL).Return(nil)

	txn, err := d.svc.Initiate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(8851), txn.Net, "stored fields are exactly what was validated")
}

func TestLedgerService_Initiate_LostRaceReturnsWinner(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := testInitiateRequest()
	idempKey := domain.BuildIdempotencyKey(req.BookingID, req.Breakdown.DisplayTotal, "USD")

	winner := &domain.Transaction{
		ID:             uuid.New(),
		IdempotencyKey: idempKey,
		Status:         domain.TransactionStatusInitiated,
	}

	d.cache.EXPECT().Get(ctx, idempKey).Return(nil, nil)
	d.store.EXPECT().GetByIdempotencyKey(ctx, idempKey).Return(nil, nil)
	d.store.EXPECT().CreateIfAbsent(ctx, gomock.Any()).Return(winner, false, nil)

	txn, err := d.svc.Initiate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, txn.ID)
}

func TestLedgerService_Initiate_NilCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockTransactionStore(ctrl)
	svc := NewLedgerService(store, nil, zerolog.Nop())

	ctx := context.Background()
	req := testInitiateRequest()
	idempKey := domain.BuildIdempotencyKey(req.BookingID, req.Breakdown.DisplayTotal, "USD")

	store.EXPECT().GetByIdempotencyKey(ctx, idempKey).Return(nil, nil)
	store.EXPECT().CreateIfAbsent(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, txn *domain.Transaction) (*domain.Transaction, bool, error) {
			return txn, true, nil
		})

	txn, err := svc.Initiate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusInitiated, txn.Status)
}

func TestLedgerService_Initiate_StoreError(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := testInitiateRequest()
	idempKey := domain.BuildIdempotencyKey(req.BookingID, req.Breakdown.DisplayTotal, "USD")

	d.cache.EXPECT().Get(ctx, idempKey).Return(nil, nil)
	d.store.EXPECT().GetByIdempotencyKey(ctx, idempKey).Return(nil, errors.New("store offline"))

	txn, err := d.svc.Initiate(ctx, req)
	assert.Nil(t, txn)
	assertAppError(t, err, "SYS_001")
}

// ==================== Confirm ====================

func TestLedgerService_Confirm_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	id := uuid.New()
	extRef := "psp-ref-001"

	initiated := &domain.Transaction{
		ID:             id,
		IdempotencyKey: "key-1",
		Status:         domain.TransactionStatusInitiated,
		UpdatedAt:      time.Now().UTC().Add(-time.Minute),
	}
	captured := &domain.Transaction{
		ID:             id,
		IdempotencyKey: "key-1",
		Status:         domain.TransactionStatusCaptured,
		ExternalRef:    &extRef,
		UpdatedAt:      time.Now().UTC(),
	}

	d.store.EXPECT().GetByID(ctx, id).Return(initiated, nil)
	d.store.EXPECT().UpdateStatus(ctx, id, domain.TransactionStatusCaptured, &extRef).Return(captured, nil)
	d.cache.EXPECT().Set(ctx, "key-1", gomock.Any(), idempotencyTTL).Return(nil)

	txn, err := d.svc.Confirm(ctx, id, extRef)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusCaptured, txn.Status)
	require.NotNil(t, txn.ExternalRef)
	assert.Equal(t, extRef, *txn.ExternalRef)
}

func TestLedgerService_Confirm_AlreadyCapturedIsNoop(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	id := uuid.New()
	extRef := "psp-ref-001"

	captured := &domain.Transaction{
		ID:          id,
		Status:      domain.TransactionStatusCaptured,
		ExternalRef: &extRef,
		Total:       11000,
	}

	d.store.EXPECT().GetByID(ctx, id).Return(captured, nil)
	// No UpdateStatus: confirming a captured record changes nothing.

	txn, err := d.svc.Confirm(ctx, id, "different-ref")
	require.NoError(t, err)
	assert.Equal(t, captured, txn)
	assert.Equal(t, extRef, *txn.ExternalRef, "original reference untouched")
}

func TestLedgerService_Confirm_NotFound(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	id := uuid.New()

	d.store.EXPECT().GetByID(ctx, id).Return(nil, nil)

	txn, err := d.svc.Confirm(ctx, id, "ref")
	assert.Nil(t, txn)
	assertAppError(t, err, "LGR_002")
}

func TestLedgerService_Confirm_InvalidState(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	for _, status := range []domain.TransactionStatus{
		domain.TransactionStatusFailed,
		domain.TransactionStatusRefunded,
	} {
		id := uuid.New()
		d.store.EXPECT().GetByID(ctx, id).Return(&domain.Transaction{ID: id, Status: status}, nil)

		txn, err := d.svc.Confirm(ctx, id, "ref")
		assert.Nil(t, txn)
		assertAppError(t, err, "LGR_003")
	}
}

// ==================== Get ====================

func TestLedgerService_Get(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	id := uuid.New()
	existing := &domain.Transaction{ID: id, Status: domain.TransactionStatusInitiated}

	d.store.EXPECT().GetByID(ctx, id).Return(existing, nil)

	txn, err := d.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, existing, txn)
}

func TestLedgerService_Get_NotFound(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	id := uuid.New()

	d.store.EXPECT().GetByID(ctx, id).Return(nil, nil)

	txn, err := d.svc.Get(ctx, id)
	assert.Nil(t, txn)
	assertAppError(t, err, "LGR_002")
}
