package order

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appinventory "github.com/xiebiao/logitrax/internal/application/inventory"
	domainaudit "github.com/xiebiao/logitrax/internal/domain/audit"
	"github.com/xiebiao/logitrax/internal/domain/inventory"
	"github.com/xiebiao/logitrax/internal/domain/order"
	apperrors "github.com/xiebiao/logitrax/pkg/errors"
)

func TestCreateOrder_DeductsStockAndAudits(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	gamepal := e.seed(t, "GamePal", "Central Hub", 12)

	view, err := e.create.Execute(ctx, customer, orderOf(gamepal.ID, 5))
	require.NoError(t, err)

	assert.NotZero(t, view.ID)
	assert.Equal(t, "Pending", view.Status)
	assert.Equal(t, "alice", view.CustomerName)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 5, view.Items[0].Quantity)
	assert.Equal(t, 7, e.quantity(t, gamepal.ID))

	entries, err := e.auditRepo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domainaudit.ActionOrderCreated, entries[0].Action)
	assert.Equal(t, "alice", entries[0].Actor)
	assert.Contains(t, entries[0].Details, "1 item(s)")
}

func TestCreateOrder_AnonymousActor(t *testing.T) {
	e := newEngine(t)
	gamepal := e.seed(t, "GamePal", "Central Hub", 12)
	session := "abc-123"

	req := orderOf(gamepal.ID, 1)
	req.SessionID = &session
	view, err := e.create.Execute(context.Background(), order.Anonymous(), req)
	require.NoError(t, err)
	assert.Equal(t, order.AnonymousName, view.CustomerName)
	require.NotNil(t, view.SessionID)
	assert.Equal(t, session, *view.SessionID)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	gamepal := e.seed(t, "GamePal", "Central Hub", 12)

	_, err := e.create.Execute(ctx, customer, orderOf(gamepal.ID, 20))
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)

	var stockErr *inventory.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 12, stockErr.Available)
	assert.Equal(t, 20, stockErr.Requested)

	assert.Equal(t, 12, e.quantity(t, gamepal.ID))
	_, total, err := e.orders.List(ctx, order.ListParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, e.auditActions(t))
}

func TestCreateOrder_FailureRollsBackEarlierLines(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	plenty := e.seed(t, "GamePal", "Central Hub", 10)
	scarce := e.seed(t, "BoomBeatz", "Secondary Hub", 1)

	_, err := e.create.Execute(ctx, customer, CreateOrderRequest{Items: []CreateOrderItem{
		{ItemID: plenty.ID, Quantity: 5},
		{ItemID: scarce.ID, Quantity: 2},
	}})
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)

	assert.Equal(t, 10, e.quantity(t, plenty.ID), "已预留的行必须归还")
	assert.Equal(t, 1, e.quantity(t, scarce.ID))
}

func TestCreateOrder_UnknownItem(t *testing.T) {
	e := newEngine(t)
	gamepal := e.seed(t, "GamePal", "Central Hub", 12)

	_, err := e.create.Execute(context.Background(), customer, CreateOrderRequest{Items: []CreateOrderItem{
		{ItemID: gamepal.ID, Quantity: 1},
		{ItemID: 999, Quantity: 1},
	}})
	assert.ErrorIs(t, err, inventory.ErrItemNotFound)
	assert.Equal(t, 12, e.quantity(t, gamepal.ID))
}

func TestCreateOrder_Validation(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	_, err := e.create.Execute(ctx, customer, CreateOrderRequest{})
	assert.ErrorIs(t, err, order.ErrInvalidOrderItems)

	_, err = e.create.Execute(ctx, customer, orderOf(1, 0))
	assert.ErrorIs(t, err, order.ErrInvalidQuantity)

	_, err = e.create.Execute(ctx, customer, orderOf(1, -3))
	assert.ErrorIs(t, err, order.ErrInvalidQuantity)

	_, err = e.create.Execute(ctx, customer, orderOf(0, 1))
	assert.ErrorIs(t, err, order.ErrInvalidItemID)
}

func TestCreateOrder_DuplicateLinesAreSummed(t *testing.T) {
	e := newEngine(t)
	gamepal := e.seed(t, "GamePal", "Central Hub", 7)

	view, err := e.create.Execute(context.Background(), customer, CreateOrderRequest{Items: []CreateOrderItem{
		{ItemID: gamepal.ID, Quantity: 3},
		{ItemID: gamepal.ID, Quantity: 4},
	}})
	require.NoError(t, err)
	assert.Len(t, view.Items, 2, "明细按提交的行保存")
	assert.Zero(t, e.quantity(t, gamepal.ID))

	_, err = e.create.Execute(context.Background(), customer, CreateOrderRequest{Items: []CreateOrderItem{
		{ItemID: gamepal.ID, Quantity: 1},
		{ItemID: gamepal.ID, Quantity: 1},
	}})
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
}

func TestCreateOrder_ConcurrentOrdersForSameStock(t *testing.T) {
	e := newEngine(t)
	gamepal := e.seed(t, "GamePal", "Central Hub", 12)

	var wg sync.WaitGroup
	var ok, rejected int32
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.create.Execute(context.Background(), customer, orderOf(gamepal.ID, 7))
			if err == nil {
				atomic.AddInt32(&ok, 1)
				return
			}
			if assert.ErrorIs(t, err, inventory.ErrInsufficientStock) {
				atomic.AddInt32(&rejected, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok)
	assert.Equal(t, int32(1), rejected)
	assert.Equal(t, 5, e.quantity(t, gamepal.ID))
}

func TestCreateOrder_NoOversell(t *testing.T) {
	e := newEngine(t)
	gamepal := e.seed(t, "GamePal", "Central Hub", 12)

	const buyers = 30
	var wg sync.WaitGroup
	var ok int32
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.create.Execute(context.Background(), customer, orderOf(gamepal.ID, 1)); err == nil {
				atomic.AddInt32(&ok, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(12), ok)
	assert.Zero(t, e.quantity(t, gamepal.ID))

	_, total, err := e.orders.List(context.Background(), order.ListParams{Page: 1, PageSize: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
}

func TestCreateOrder_InvalidatesInventoryCache(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	gamepal := e.seed(t, "GamePal", "Central Hub", 12)

	list := appinventory.NewListItemsUseCase(e.ledger, e.cache, testConfig().Cache.InventoryTTL, zap.NewNop())
	before, err := list.Execute(ctx)
	require.NoError(t, err)
	require.Equal(t, 12, before[0].Quantity)

	_, err = e.create.Execute(ctx, customer, orderOf(gamepal.ID, 5))
	require.NoError(t, err)

	after, err := list.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, after[0].Quantity)
}

func TestCreateOrder_ConflictErrorIsGeneric(t *testing.T) {
	err := order.ErrReservationConflict.WithCause(inventory.ErrConcurrencyConflict)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, "conflict", rejectReason(err))
}

func TestAggregate_SortsByItemID(t *testing.T) {
	got := aggregate([]CreateOrderItem{
		{ItemID: 9, Quantity: 1},
		{ItemID: 2, Quantity: 3},
		{ItemID: 9, Quantity: 2},
		{ItemID: 5, Quantity: 1},
	})
	assert.Equal(t, []reservation{{2, 3}, {5, 1}, {9, 3}}, got)
}
