package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"booking-finance-engine/internal/core/domain"
	"booking-finance-engine/internal/core/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransaction(key string) *domain.Transaction {
	now := time.Now().UTC()
	return &domain.Transaction{
		ID:              uuid.New(),
		BookingID:       "booking-1",
		IdempotencyKey:  key,
		SellerID:        uuid.New(),
		BuyerID:         uuid.New(),
		Total:           11000,
		Commission:      2150,
		Net:             8850,
		DisplayCurrency: "JPY",
		DisplayAmount:   decimal.NewFromInt(11000),
		Rate:            decimal.NewFromInt(1),
		Status:          domain.TransactionStatusInitiated,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestTransactionStore_CreateAndGet(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()
	txn := newTestTransaction("key-1")

	stored, created, err := store.CreateIfAbsent(ctx, txn)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, txn.ID, stored.ID)

	byID, err := store.GetByID(ctx, txn.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, txn.IdempotencyKey, byID.IdempotencyKey)

	byKey, err := store.GetByIdempotencyKey(ctx, "key-1")
	require.NoError(t, err)
	require.NotNil(t, byKey)
	assert.Equal(t, txn.ID, byKey.ID)
}

func TestTransactionStore_GetMissing(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()

	byID, err := store.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, byID)

	byKey, err := store.GetByIdempotencyKey(ctx, "no-such-key")
	require.NoError(t, err)
	assert.Nil(t, byKey)
}

func TestTransactionStore_CreateIfAbsent_DuplicateKey(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()

	first := newTestTransaction("key-dup")
	_, created, err := store.CreateIfAbsent(ctx, first)
	require.NoError(t, err)
	require.True(t, created)

	second := newTestTransaction("key-dup")
	stored, created, err := store.CreateIfAbsent(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, stored.ID, "the first insert wins")
}

func TestTransactionStore_CreateIfAbsent_Concurrent(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	createdCount := make(chan bool, workers)
	ids := make(chan uuid.UUID, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stored, created, err := store.CreateIfAbsent(ctx, newTestTransaction("contended-key"))
			assert.NoError(t, err)
			createdCount <- created
			ids <- stored.ID
		}()
	}
	wg.Wait()
	close(createdCount)
	close(ids)

	wins := 0
	for created := range createdCount {
		if created {
			wins++
		}
	}
	assert.Equal(t, 1, wins, "exactly one goroutine creates the record")

	var winnerID uuid.UUID
	for id := range ids {
		if winnerID == uuid.Nil {
			winnerID = id
		}
		assert.Equal(t, winnerID, id, "every caller sees the same record")
	}
}

func TestTransactionStore_UpdateStatus(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()
	txn := newTestTransaction("key-upd")
	_, _, err := store.CreateIfAbsent(ctx, txn)
	require.NoError(t, err)

	ref := "psp-ref-9"
	updated, err := store.UpdateStatus(ctx, txn.ID, domain.TransactionStatusCaptured, &ref)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, domain.TransactionStatusCaptured, updated.Status)
	require.NotNil(t, updated.ExternalRef)
	assert.Equal(t, ref, *updated.ExternalRef)
	assert.True(t, updated.UpdatedAt.After(txn.UpdatedAt) || updated.UpdatedAt.Equal(txn.UpdatedAt))
}

func TestTransactionStore_UpdateStatus_Missing(t *testing.T) {
	store := NewTransactionStore()

	updated, err := store.UpdateStatus(context.Background(), uuid.New(), domain.TransactionStatusCaptured, nil)
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestTransactionStore_ReturnsCopies(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()
	txn := newTestTransaction("key-copy")
	_, _, err := store.CreateIfAbsent(ctx, txn)
	require.NoError(t, err)

	got, err := store.GetByID(ctx, txn.ID)
	require.NoError(t, err)
	got.Status = domain.TransactionStatusFailed

	again, err := store.GetByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusInitiated, again.Status, "mutating a returned record must not touch the store")
}

func TestTransactionStore_List(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()

	sellerA := uuid.New()
	sellerB := uuid.New()
	base := time.Now().UTC()

	for i := 0; i < 5; i++ {
		txn := newTestTransaction(fmt.Sprintf("key-%d", i))
		txn.SellerID = sellerA
		txn.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if i%2 == 0 {
			txn.Status = domain.TransactionStatusCaptured
		}
		_, _, err := store.CreateIfAbsent(ctx, txn)
		require.NoError(t, err)
	}
	other := newTestTransaction("key-other")
	other.SellerID = sellerB
	_, _, err := store.CreateIfAbsent(ctx, other)
	require.NoError(t, err)

	t.Run("filter by seller", func(t *testing.T) {
		txns, total, err := store.List(ctx, ports.TransactionListParams{
			SellerID: &sellerA, Page: 1, PageSize: 10,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Len(t, txns, 5)
	})

	t.Run("filter by status", func(t *testing.T) {
		status := domain.TransactionStatusCaptured
		txns, total, err := store.List(ctx, ports.TransactionListParams{
			SellerID: &sellerA, Status: &status, Page: 1, PageSize: 10,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		for _, txn := range txns {
			assert.Equal(t, domain.TransactionStatusCaptured, txn.Status)
		}
	})

	t.Run("newest first", func(t *testing.T) {
		txns, _, err := store.List(ctx, ports.TransactionListParams{
			SellerID: &sellerA, Page: 1, PageSize: 10,
		})
		require.NoError(t, err)
		for i := 1; i < len(txns); i++ {
			assert.False(t, txns[i].CreatedAt.After(txns[i-1].CreatedAt))
		}
	})

	t.Run("paging", func(t *testing.T) {
		page1, total, err := store.List(ctx, ports.TransactionListParams{
			SellerID: &sellerA, Page: 1, PageSize: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Len(t, page1, 2)

		page3, _, err := store.List(ctx, ports.TransactionListParams{
			SellerID: &sellerA, Page: 3, PageSize: 2,
		})
		require.NoError(t, err)
		assert.Len(t, page3, 1)

		empty, _, err := store.List(ctx, ports.TransactionListParams{
			SellerID: &sellerA, Page: 9, PageSize: 2,
		})
		require.NoError(t, err)
		assert.Empty(t, empty)
	})
}

func TestTransactionStore_GetStats(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()
	seller := uuid.New()

	captured := newTestTransaction("key-cap")
	captured.SellerID = seller
	captured.Status = domain.TransactionStatusCaptured
	_, _, err := store.CreateIfAbsent(ctx, captured)
	require.NoError(t, err)

	pending := newTestTransaction("key-pend")
	pending.SellerID = seller
	_, _, err = store.CreateIfAbsent(ctx, pending)
	require.NoError(t, err)

	foreign := newTestTransaction("key-foreign")
	foreign.Status = domain.TransactionStatusCaptured
	_, _, err = store.CreateIfAbsent(ctx, foreign)
	require.NoError(t, err)

	t.Run("global", func(t *testing.T) {
		stats, err := store.GetStats(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(3), stats.TotalTransactions)
		assert.Equal(t, int64(1), stats.Initiated)
		assert.Equal(t, int64(2), stats.Captured)
		assert.Equal(t, int64(22000), stats.GrossVolume)
		assert.Equal(t, int64(4300), stats.CommissionEarned)
		assert.Equal(t, int64(17700), stats.SellerPayout)
	})

	t.Run("seller scoped", func(t *testing.T) {
		stats, err := store.GetStats(ctx, &seller)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.TotalTransactions)
		assert.Equal(t, int64(1), stats.Captured)
		assert.Equal(t, int64(11000), stats.GrossVolume)
	})
}

func TestTransactionStore_Health(t *testing.T) {
	store := NewTransactionStore()
	assert.NoError(t, store.Ping(context.Background()))
	assert.Equal(t, "memory", store.Name())
}
