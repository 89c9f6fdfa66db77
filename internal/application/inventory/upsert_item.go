package inventory

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/logitrax/internal/application/audit"
	domainaudit "github.com/xiebiao/logitrax/internal/domain/audit"
	"github.com/xiebiao/logitrax/internal/domain/inventory"
	"github.com/xiebiao/logitrax/internal/infrastructure/cache"
	"github.com/xiebiao/logitrax/internal/infrastructure/mq"
	"github.com/xiebiao/logitrax/pkg/metrics"
)

// UpsertItemRequest 入库请求
type UpsertItemRequest struct {
	Name     string
	Location string
	Quantity int
}

// UpsertItemUseCase 入库
// 同一(名称,位置)已存在时累加数量,否则新建
type UpsertItemUseCase struct {
	ledger   inventory.Ledger
	cache    cache.Cache
	recorder *audit.Recorder
	events   mq.EventPublisher
	logger   *zap.Logger
}

func NewUpsertItemUseCase(
	ledger inventory.Ledger,
	c cache.Cache,
	recorder *audit.Recorder,
	events mq.EventPublisher,
	logger *zap.Logger,
) *UpsertItemUseCase {
	return &UpsertItemUseCase{ledger: ledger, cache: c, recorder: recorder, events: events, logger: logger}
}

func (uc *UpsertItemUseCase) Execute(ctx context.Context, actor string, req UpsertItemRequest) (*ItemView, error) {
	item, err := uc.ledger.Upsert(ctx, req.Name, req.Location, req.Quantity)
	if err != nil {
		return nil, err
	}

	result := "incremented"
	if item.Version == 1 {
		result = "created"
	}
	metrics.IncCounterVec(metrics.InventoryUpsertsTotal, map[string]string{"result": result})

	invalidateInventory(ctx, uc.cache, uc.logger)
	uc.recorder.Record(ctx, actor, domainaudit.ActionInventoryUpdated,
		fmt.Sprintf("Added %d of %q at %s (now %d).", req.Quantity, item.Name, item.Location, item.Quantity))
	uc.events.Publish(ctx, mq.InventoryUpdated{
		ItemID:     item.ID,
		Name:       item.Name,
		Location:   item.Location,
		Quantity:   item.Quantity,
		Delta:      req.Quantity,
		OccurredAt: time.Now().UTC(),
	})

	return toView(item), nil
}

// invalidateInventory 失败只记日志: 最坏情况是列表在TTL内陈旧
func invalidateInventory(ctx context.Context, c cache.Cache, logger *zap.Logger) {
	if err := c.Invalidate(ctx, cache.KeyInventoryList); err != nil {
		logger.Warn("invalidate inventory cache failed", zap.Error(err))
	}
}
