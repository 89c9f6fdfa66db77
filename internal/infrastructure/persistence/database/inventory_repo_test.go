package database_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/logitrax/internal/domain/inventory"
	"github.com/xiebiao/logitrax/internal/infrastructure/persistence/database"
	"github.com/xiebiao/logitrax/internal/infrastructure/persistence/database/dbtest"
)

func newLedger(t *testing.T) inventory.Ledger {
	t.Helper()
	return database.NewInventoryRepository(dbtest.New(t), dbtest.LocationSet())
}

func TestInventoryRepository_UpsertCreatesThenIncrements(t *testing.T) {
	ledger := newLedger(t)
	ctx := context.Background()

	created, err := ledger.Upsert(ctx, "GamePal", "Central Hub", 12)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, 12, created.Quantity)
	assert.Equal(t, uint(1), created.Version)

	updated, err := ledger.Upsert(ctx, "GamePal", "Central Hub", 3)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 15, updated.Quantity)
	assert.Equal(t, uint(2), updated.Version)

	// 同名不同位置是另一行
	other, err := ledger.Upsert(ctx, "GamePal", "Warehouse A", 1)
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, other.ID)

	n, err := ledger.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestInventoryRepository_UpsertRejectsUnknownLocation(t *testing.T) {
	ledger := newLedger(t)
	ctx := context.Background()

	_, err := ledger.Upsert(ctx, "GamePal", "Moon Base", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, inventory.ErrInvalidLocation)

	var locErr *inventory.InvalidLocationError
	require.ErrorAs(t, err, &locErr)
	assert.Equal(t, "Moon Base", locErr.Location)

	items, err := ledger.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestInventoryRepository_UpsertValidation(t *testing.T) {
	ledger := newLedger(t)
	ctx := context.Background()

	_, err := ledger.Upsert(ctx, "GamePal", "Central Hub", 0)
	assert.ErrorIs(t, err, inventory.ErrInvalidQuantity)

	_, err = ledger.Upsert(ctx, "  ", "Central Hub", 1)
	assert.ErrorIs(t, err, inventory.ErrInvalidName)
}

func TestInventoryRepository_ConcurrentUpsertsDoNotLoseUpdates(t *testing.T) {
	ledger := newLedger(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.Upsert(ctx, "BoomBeatz", "Secondary Hub", 1); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	item, err := ledger.Find(ctx, "BoomBeatz", "Secondary Hub")
	require.NoError(t, err)
	assert.Equal(t, n, item.Quantity)
}

func TestInventoryRepository_Reserve(t *testing.T) {
	ledger := newLedger(t)
	ctx := context.Background()

	item, err := ledger.Upsert(ctx, "GamePal", "Central Hub", 12)
	require.NoError(t, err)

	reserved, err := ledger.Reserve(ctx, item, 5)
	require.NoError(t, err)
	assert.Equal(t, 7, reserved.Quantity)
	assert.Equal(t, item.Version+1, reserved.Version)

	stored, err := ledger.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, stored.Quantity)
	assert.Equal(t, reserved.Version, stored.Version)
}

func TestInventoryRepository_ReserveInsufficient(t *testing.T) {
	ledger := newLedger(t)
	ctx := context.Background()

	item, err := ledger.Upsert(ctx, "GamePal", "Central Hub", 12)
	require.NoError(t, err)

	_, err = ledger.Reserve(ctx, item, 20)
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)

	var stockErr *inventory.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 12, stockErr.Available)
	assert.Equal(t, 20, stockErr.Requested)

	stored, err := ledger.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, stored.Quantity, "失败的预留不能改动库存")
}

func TestInventoryRepository_ReserveStaleVersionConflicts(t *testing.T) {
	ledger := newLedger(t)
	ctx := context.Background()

	stale, err := ledger.Upsert(ctx, "GamePal", "Central Hub", 12)
	require.NoError(t, err)

	// 另一个写入者先改了这一行
	_, err = ledger.Upsert(ctx, "GamePal", "Central Hub", 1)
	require.NoError(t, err)

	_, err = ledger.Reserve(ctx, stale, 5)
	assert.ErrorIs(t, err, inventory.ErrConcurrencyConflict)

	fresh, err := ledger.FindByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, 13, fresh.Quantity)

	_, err = ledger.Reserve(ctx, fresh, 5)
	require.NoError(t, err)
}

func TestInventoryRepository_ReserveStaleSnapshotButNowInsufficient(t *testing.T) {
	ledger := newLedger(t)
	ctx := context.Background()

	stale, err := ledger.Upsert(ctx, "GamePal", "Central Hub", 12)
	require.NoError(t, err)

	fresh, err := ledger.FindByID(ctx, stale.ID)
	require.NoError(t, err)
	_, err = ledger.Reserve(ctx, fresh, 10)
	require.NoError(t, err)

	_, err = ledger.Reserve(ctx, stale, 5)
	var stockErr *inventory.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Available)
}

func TestInventoryRepository_ReleaseAndDelete(t *testing.T) {
	ledger := newLedger(t)
	ctx := context.Background()

	item, err := ledger.Upsert(ctx, "GamePal", "Central Hub", 12)
	require.NoError(t, err)

	require.NoError(t, ledger.Release(ctx, item.ID, 3))
	stored, err := ledger.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, stored.Quantity)

	assert.ErrorIs(t, ledger.Release(ctx, 9999, 1), inventory.ErrItemNotFound)

	deleted, err := ledger.Delete(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "GamePal", deleted.Name)

	_, err = ledger.FindByID(ctx, item.ID)
	assert.ErrorIs(t, err, inventory.ErrItemNotFound)

	_, err = ledger.Delete(ctx, item.ID)
	assert.ErrorIs(t, err, inventory.ErrItemNotFound)
}

func TestInventoryRepository_FindByIDs(t *testing.T) {
	ledger := newLedger(t)
	ctx := context.Background()

	a, err := ledger.Upsert(ctx, "GamePal", "Central Hub", 1)
	require.NoError(t, err)
	b, err := ledger.Upsert(ctx, "BoomBeatz", "Warehouse B", 2)
	require.NoError(t, err)

	found, err := ledger.FindByIDs(ctx, []uint{a.ID, b.ID, 404})
	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.Equal(t, "BoomBeatz", found[b.ID].Name)

	empty, err := ledger.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
