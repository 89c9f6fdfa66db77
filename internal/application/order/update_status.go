package order

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/logitrax/internal/application/audit"
	domainaudit "github.com/xiebiao/logitrax/internal/domain/audit"
	"github.com/xiebiao/logitrax/internal/domain/order"
	"github.com/xiebiao/logitrax/internal/infrastructure/cache"
	"github.com/xiebiao/logitrax/internal/infrastructure/mq"
	apperrors "github.com/xiebiao/logitrax/pkg/errors"
	"github.com/xiebiao/logitrax/pkg/metrics"
)

// UpdateOrderStatusUseCase 修改订单状态（管理员）
// 直接覆盖,不校验流转方向; 不动库存
type UpdateOrderStatusUseCase struct {
	orders   order.Repository
	cache    cache.Cache
	recorder *audit.Recorder
	events   mq.EventPublisher
	logger   *zap.Logger
}

func NewUpdateOrderStatusUseCase(
	orders order.Repository,
	c cache.Cache,
	recorder *audit.Recorder,
	events mq.EventPublisher,
	logger *zap.Logger,
) *UpdateOrderStatusUseCase {
	return &UpdateOrderStatusUseCase{orders: orders, cache: c, recorder: recorder, events: events, logger: logger}
}

func (uc *UpdateOrderStatusUseCase) Execute(ctx context.Context, actor order.Actor, id uint, rawStatus string) (*OrderView, error) {
	if !actor.IsManager() {
		return nil, apperrors.ErrForbidden
	}

	status, err := order.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	o, err := uc.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := o.Status
	o.TransitionTo(status)
	if err := uc.orders.UpdateStatus(ctx, o.ID, o.Status); err != nil {
		return nil, err
	}

	metrics.IncCounterVec(metrics.OrderStatusTransitionsTotal, map[string]string{"status": status.String()})
	uc.recorder.Record(ctx, actor.AuditName(), domainaudit.ActionOrderStatusUpdated,
		fmt.Sprintf("Order ID %d status changed from %s to %s.", o.ID, from, status))

	// 按状态分页的列表整族失效
	if err := uc.cache.InvalidatePrefix(ctx, cache.PrefixOrdersByStatus); err != nil {
		uc.logger.Warn("invalidate orders cache failed", zap.Error(err))
	}
	uc.events.Publish(ctx, mq.OrderStatusChanged{
		OrderID:    o.ID,
		From:       from.String(),
		To:         status.String(),
		Actor:      actor.AuditName(),
		OccurredAt: time.Now().UTC(),
	})

	return toOrderView(o), nil
}
