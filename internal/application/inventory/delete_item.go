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
)

// DeleteItemUseCase 删除库存条目（管理员）
// 历史订单明细只保存条目ID,删除后仍可查询
type DeleteItemUseCase struct {
	ledger   inventory.Ledger
	cache    cache.Cache
	recorder *audit.Recorder
	events   mq.EventPublisher
	logger   *zap.Logger
}

func NewDeleteItemUseCase(
	ledger inventory.Ledger,
	c cache.Cache,
	recorder *audit.Recorder,
	events mq.EventPublisher,
	logger *zap.Logger,
) *DeleteItemUseCase {
	return &DeleteItemUseCase{ledger: ledger, cache: c, recorder: recorder, events: events, logger: logger}
}

func (uc *DeleteItemUseCase) Execute(ctx context.Context, actor string, id uint) error {
	item, err := uc.ledger.Delete(ctx, id)
	if err != nil {
		return err
	}

	invalidateInventory(ctx, uc.cache, uc.logger)
	uc.recorder.Record(ctx, actor, domainaudit.ActionInventoryDeleted,
		fmt.Sprintf("Deleted %q at %s (id %d).", item.Name, item.Location, item.ID))
	uc.events.Publish(ctx, mq.InventoryDeleted{
		ItemID:     item.ID,
		Name:       item.Name,
		Location:   item.Location,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}
