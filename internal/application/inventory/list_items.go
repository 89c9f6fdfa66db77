package inventory

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/logitrax/internal/domain/inventory"
	"github.com/xiebiao/logitrax/internal/infrastructure/cache"
	"github.com/xiebiao/logitrax/pkg/metrics"
)

// ListItemsUseCase 库存列表
// cache-aside: 先查缓存,未命中读账本后回填; 缓存故障时直接读账本
// 回填带读库前的代数,读库期间有写入就不回填
type ListItemsUseCase struct {
	ledger inventory.Ledger
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewListItemsUseCase(ledger inventory.Ledger, c cache.Cache, ttl time.Duration, logger *zap.Logger) *ListItemsUseCase {
	return &ListItemsUseCase{ledger: ledger, cache: c, ttl: ttl, logger: logger}
}

func (uc *ListItemsUseCase) Execute(ctx context.Context) ([]*ItemView, error) {
	var cached []*ItemView
	hit, err := uc.cache.Get(ctx, cache.KeyInventoryList, &cached)
	switch {
	case err != nil:
		metrics.CacheResult(cache.FamilyInventory, "error")
		uc.logger.Warn("read inventory cache failed", zap.Error(err))
	case hit:
		metrics.CacheResult(cache.FamilyInventory, "hit")
		return cached, nil
	default:
		metrics.CacheResult(cache.FamilyInventory, "miss")
	}

	gen, genErr := uc.cache.Generation(ctx, cache.KeyInventoryList)

	items, err := uc.ledger.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]*ItemView, len(items))
	for i, item := range items {
		views[i] = toView(item)
	}

	if genErr != nil {
		return views, nil
	}
	stored, err := uc.cache.SetIfGeneration(ctx, cache.KeyInventoryList, views, uc.ttl, gen)
	switch {
	case err != nil:
		uc.logger.Warn("write inventory cache failed", zap.Error(err))
	case !stored:
		uc.logger.Debug("inventory changed during read, skip refill")
	}
	return views, nil
}
