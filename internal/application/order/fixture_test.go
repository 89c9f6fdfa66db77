package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xiebiao/logitrax/internal/application/audit"
	domainaudit "github.com/xiebiao/logitrax/internal/domain/audit"
	"github.com/xiebiao/logitrax/internal/domain/inventory"
	"github.com/xiebiao/logitrax/internal/domain/order"
	"github.com/xiebiao/logitrax/internal/infrastructure/cache"
	"github.com/xiebiao/logitrax/internal/infrastructure/config"
	"github.com/xiebiao/logitrax/internal/infrastructure/mq"
	"github.com/xiebiao/logitrax/internal/infrastructure/persistence/database"
	"github.com/xiebiao/logitrax/internal/infrastructure/persistence/database/dbtest"
)

var (
	manager  = order.Actor{Name: "boss", Roles: []string{order.RoleManager}}
	customer = order.Actor{Name: "alice"}
)

func testConfig() *config.Config {
	return &config.Config{
		Cache: config.CacheConfig{InventoryTTL: 30 * time.Second, OrdersTTL: 30 * time.Second},
		Order: config.OrderConfig{
			MaxReserveAttempts: 3,
			ReserveTimeout:     5 * time.Second,
			DefaultPageSize:    10,
			MaxPageSize:        100,
		},
	}
}

// engine 基于内存SQLite的完整下单环境
type engine struct {
	db        *gorm.DB
	ledger    inventory.Ledger
	orders    order.Repository
	auditRepo domainaudit.Repository
	cache     *cache.MemoryCache
	create    *CreateOrderUseCase
	update    *UpdateOrderStatusUseCase
	get       *GetOrderUseCase
	list      *ListOrdersUseCase
}

func newEngine(t *testing.T) *engine {
	t.Helper()
	cfg := testConfig()
	log := zap.NewNop()
	db := dbtest.New(t)

	e := &engine{
		db:        db,
		ledger:    database.NewInventoryRepository(db, dbtest.LocationSet()),
		orders:    database.NewOrderRepository(db),
		auditRepo: database.NewAuditRepository(db),
		cache:     cache.NewMemoryCache(),
	}
	recorder := audit.NewRecorder(e.auditRepo, log)
	e.create = NewCreateOrderUseCase(e.orders, e.ledger, database.NewTxManager(db), e.cache, recorder, mq.NoopPublisher{}, cfg, log)
	e.update = NewUpdateOrderStatusUseCase(e.orders, e.cache, recorder, mq.NoopPublisher{}, log)
	e.get = NewGetOrderUseCase(e.orders)
	e.list = NewListOrdersUseCase(e.orders, e.cache, cfg, log)
	return e
}

func (e *engine) seed(t *testing.T, name, location string, qty int) *inventory.Item {
	t.Helper()
	item, err := e.ledger.Upsert(context.Background(), name, location, qty)
	require.NoError(t, err)
	return item
}

func (e *engine) quantity(t *testing.T, id uint) int {
	t.Helper()
	item, err := e.ledger.FindByID(context.Background(), id)
	require.NoError(t, err)
	return item.Quantity
}

func (e *engine) auditActions(t *testing.T) []string {
	t.Helper()
	entries, err := e.auditRepo.Recent(context.Background(), 100)
	require.NoError(t, err)
	actions := make([]string, len(entries))
	for i, entry := range entries {
		actions[i] = entry.Action
	}
	return actions
}

func orderOf(itemID uint, qty int) CreateOrderRequest {
	return CreateOrderRequest{Items: []CreateOrderItem{{ItemID: itemID, Quantity: qty}}}
}
