package order

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/logitrax/internal/domain/order"
	"github.com/xiebiao/logitrax/internal/infrastructure/cache"
	"github.com/xiebiao/logitrax/internal/infrastructure/config"
	apperrors "github.com/xiebiao/logitrax/pkg/errors"
	"github.com/xiebiao/logitrax/pkg/metrics"
)

// GetOrderUseCase 订单详情
// 非管理员只能看自己的订单,别人的订单按不存在处理
type GetOrderUseCase struct {
	orders order.Repository
}

func NewGetOrderUseCase(orders order.Repository) *GetOrderUseCase {
	return &GetOrderUseCase{orders: orders}
}

func (uc *GetOrderUseCase) Execute(ctx context.Context, actor order.Actor, id uint) (*OrderView, error) {
	o, err := uc.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsManager() && !o.IsOwnedBy(actor.Name) {
		return nil, order.ErrOrderNotFound
	}
	return toOrderView(o), nil
}

// ListOrdersRequest 订单列表查询
type ListOrdersRequest struct {
	Status   string // 为空表示全部
	Page     int
	PageSize int
}

// ListOrdersUseCase 订单列表,结果按 (状态,可见范围,页码,页大小) 缓存
type ListOrdersUseCase struct {
	orders order.Repository
	cache  cache.Cache
	cfg    config.OrderConfig
	ttl    time.Duration
	logger *zap.Logger
}

func NewListOrdersUseCase(orders order.Repository, c cache.Cache, cfg *config.Config, logger *zap.Logger) *ListOrdersUseCase {
	return &ListOrdersUseCase{orders: orders, cache: c, cfg: cfg.Order, ttl: cfg.Cache.OrdersTTL, logger: logger}
}

func (uc *ListOrdersUseCase) Execute(ctx context.Context, actor order.Actor, req ListOrdersRequest) (*OrderPage, error) {
	if !actor.IsAuthenticated() {
		return nil, apperrors.ErrUnauthorized
	}

	params := order.ListParams{Page: req.Page, PageSize: req.PageSize}
	uc.normalize(&params)

	statusKey := ""
	if req.Status != "" {
		status, err := order.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		params.Status = &status
		statusKey = status.String()
	}

	scope := cache.ManagerScope
	if !actor.IsManager() {
		params.Customer = actor.Name
		scope = cache.CustomerScope(actor.Name)
	}

	key := cache.OrdersByStatusKey(statusKey, scope, params.Page, params.PageSize)
	var cached OrderPage
	hit, err := uc.cache.Get(ctx, key, &cached)
	switch {
	case err != nil:
		metrics.CacheResult(cache.FamilyOrders, "error")
		uc.logger.Warn("read orders cache failed", zap.String("key", key), zap.Error(err))
	case hit:
		metrics.CacheResult(cache.FamilyOrders, "hit")
		return &cached, nil
	default:
		metrics.CacheResult(cache.FamilyOrders, "miss")
	}

	// 代数要在读库之前取,读库期间的写入会让回填作废
	gen, genErr := uc.cache.Generation(ctx, key)

	orders, total, err := uc.orders.List(ctx, params)
	if err != nil {
		return nil, err
	}

	page := &OrderPage{
		List:     make([]*OrderView, len(orders)),
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	}
	for i, o := range orders {
		page.List[i] = toOrderView(o)
	}

	if genErr != nil {
		return page, nil
	}
	stored, err := uc.cache.SetIfGeneration(ctx, key, page, uc.ttl, gen)
	switch {
	case err != nil:
		uc.logger.Warn("write orders cache failed", zap.String("key", key), zap.Error(err))
	case !stored:
		uc.logger.Debug("orders changed during read, skip refill", zap.String("key", key))
	}
	return page, nil
}

func (uc *ListOrdersUseCase) normalize(p *order.ListParams) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = uc.cfg.DefaultPageSize
	}
	if p.PageSize < 1 {
		p.PageSize = 10
	}
	if uc.cfg.MaxPageSize > 0 && p.PageSize > uc.cfg.MaxPageSize {
		p.PageSize = uc.cfg.MaxPageSize
	}
}
