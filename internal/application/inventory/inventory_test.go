package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/logitrax/internal/application/audit"
	domainaudit "github.com/xiebiao/logitrax/internal/domain/audit"
	"github.com/xiebiao/logitrax/internal/domain/inventory"
	"github.com/xiebiao/logitrax/internal/infrastructure/cache"
	"github.com/xiebiao/logitrax/internal/infrastructure/config"
	"github.com/xiebiao/logitrax/internal/infrastructure/mq"
	"github.com/xiebiao/logitrax/internal/infrastructure/persistence/database"
	"github.com/xiebiao/logitrax/internal/infrastructure/persistence/database/dbtest"
)

type fixture struct {
	ledger    inventory.Ledger
	auditRepo domainaudit.Repository
	cache     *cache.MemoryCache
	list      *ListItemsUseCase
	upsert    *UpsertItemUseCase
	remove    *DeleteItemUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	log := zap.NewNop()

	f := &fixture{
		ledger:    database.NewInventoryRepository(db, dbtest.LocationSet()),
		auditRepo: database.NewAuditRepository(db),
		cache:     cache.NewMemoryCache(),
	}
	recorder := audit.NewRecorder(f.auditRepo, log)
	f.list = NewListItemsUseCase(f.ledger, f.cache, 30*time.Second, log)
	f.upsert = NewUpsertItemUseCase(f.ledger, f.cache, recorder, mq.NoopPublisher{}, log)
	f.remove = NewDeleteItemUseCase(f.ledger, f.cache, recorder, mq.NoopPublisher{}, log)
	return f
}

func TestListItems_ServesFromCacheUntilWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.upsert.Execute(ctx, "boss", UpsertItemRequest{Name: "GamePal", Location: "Central Hub", Quantity: 12})
	require.NoError(t, err)

	first, err := f.list.Execute(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 12, first[0].Quantity)
	assert.Equal(t, 1, f.cache.Len())

	// 绕过用例直接改账本,缓存仍返回旧值（TTL内允许陈旧）
	stale, err := f.ledger.Find(ctx, "GamePal", "Central Hub")
	require.NoError(t, err)
	_, err = f.ledger.Reserve(ctx, stale, 2)
	require.NoError(t, err)

	cached, err := f.list.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, cached[0].Quantity)

	// 经过用例的写入会让缓存失效
	_, err = f.upsert.Execute(ctx, "boss", UpsertItemRequest{Name: "GamePal", Location: "Central Hub", Quantity: 3})
	require.NoError(t, err)

	fresh, err := f.list.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 13, fresh[0].Quantity)
}

func TestUpsertItem_InvalidLocationChangesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.upsert.Execute(ctx, "boss", UpsertItemRequest{Name: "GamePal", Location: "Atlantis", Quantity: 1})
	assert.ErrorIs(t, err, inventory.ErrInvalidLocation)

	entries, err := f.auditRepo.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpsertItem_Audited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.upsert.Execute(ctx, "boss", UpsertItemRequest{Name: "BoomBeatz", Location: "Secondary Hub", Quantity: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, view.Quantity)

	entries, err := f.auditRepo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "boss", entries[0].Actor)
	assert.Equal(t, domainaudit.ActionInventoryUpdated, entries[0].Action)
}

func TestDeleteItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.upsert.Execute(ctx, "boss", UpsertItemRequest{Name: "GamePal", Location: "Central Hub", Quantity: 12})
	require.NoError(t, err)
	_, err = f.list.Execute(ctx)
	require.NoError(t, err)

	require.NoError(t, f.remove.Execute(ctx, "boss", view.ID))
	assert.Zero(t, f.cache.Len())

	items, err := f.list.Execute(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	assert.ErrorIs(t, f.remove.Execute(ctx, "boss", view.ID), inventory.ErrItemNotFound)
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string, interface{}) (bool, error) {
	return false, errors.New("cache down")
}
func (brokenCache) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("cache down")
}
func (brokenCache) Generation(context.Context, string) (uint64, error) {
	return 0, errors.New("cache down")
}
func (brokenCache) SetIfGeneration(context.Context, string, interface{}, time.Duration, uint64) (bool, error) {
	return false, errors.New("cache down")
}
func (brokenCache) Invalidate(context.Context, ...string) error    { return errors.New("cache down") }
func (brokenCache) InvalidatePrefix(context.Context, string) error { return errors.New("cache down") }

// writeAfterRead 读完账本后在回填前插入一次写入
type writeAfterRead struct {
	inventory.Ledger
	write func()
}

func (l *writeAfterRead) GetAll(ctx context.Context) ([]*inventory.Item, error) {
	items, err := l.Ledger.GetAll(ctx)
	if l.write != nil {
		l.write()
		l.write = nil
	}
	return items, err
}

func TestListItems_WriteDuringReadDoesNotCacheStaleSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.upsert.Execute(ctx, "boss", UpsertItemRequest{Name: "GamePal", Location: "Central Hub", Quantity: 12})
	require.NoError(t, err)

	racing := &writeAfterRead{Ledger: f.ledger, write: func() {
		_, err := f.upsert.Execute(ctx, "boss", UpsertItemRequest{Name: "GamePal", Location: "Central Hub", Quantity: 3})
		require.NoError(t, err)
	}}
	list := NewListItemsUseCase(racing, f.cache, 30*time.Second, zap.NewNop())

	// 这次读到的是写入前的快照
	old, err := list.Execute(ctx)
	require.NoError(t, err)
	require.Len(t, old, 1)
	assert.Equal(t, 12, old[0].Quantity)
	assert.Zero(t, f.cache.Len())

	fresh, err := list.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, fresh[0].Quantity)
	assert.Equal(t, 1, f.cache.Len())

	cached, err := list.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, cached[0].Quantity)
}

func TestListItems_FallsBackToLedgerWhenCacheFails(t *testing.T) {
	db := dbtest.New(t)
	ledger := database.NewInventoryRepository(db, dbtest.LocationSet())
	_, err := ledger.Upsert(context.Background(), "GamePal", "Central Hub", 12)
	require.NoError(t, err)

	items, err := NewListItemsUseCase(ledger, brokenCache{}, time.Second, zap.NewNop()).Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestSeedInventory(t *testing.T) {
	db := dbtest.New(t)
	ledger := database.NewInventoryRepository(db, dbtest.LocationSet())
	cfg := &config.Config{Inventory: config.InventoryConfig{Seed: []config.SeedItem{
		{Name: "GamePal", Location: "Central Hub", Quantity: 12},
		{Name: "BoomBeatz", Location: "Secondary Hub", Quantity: 10},
	}}}
	seed := NewSeedInventory(ledger, cfg, zap.NewNop())
	ctx := context.Background()

	n, err := seed.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// 第二次启动不会重复入库
	n, err = seed.Execute(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	item, err := ledger.Find(ctx, "GamePal", "Central Hub")
	require.NoError(t, err)
	assert.Equal(t, 12, item.Quantity)
}
