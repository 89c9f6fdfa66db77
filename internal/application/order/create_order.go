package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xiebiao/logitrax/internal/application/audit"
	domainaudit "github.com/xiebiao/logitrax/internal/domain/audit"
	"github.com/xiebiao/logitrax/internal/domain/inventory"
	"github.com/xiebiao/logitrax/internal/domain/order"
	"github.com/xiebiao/logitrax/internal/infrastructure/cache"
	"github.com/xiebiao/logitrax/internal/infrastructure/config"
	"github.com/xiebiao/logitrax/internal/infrastructure/mq"
	apperrors "github.com/xiebiao/logitrax/pkg/errors"
	"github.com/xiebiao/logitrax/pkg/metrics"
	"github.com/xiebiao/logitrax/pkg/saga"
	"github.com/xiebiao/logitrax/pkg/tracing"
)

const tracerName = "logitrax/order"

// Phase 下单流程所处阶段
type Phase string

const (
	PhaseValidating Phase = "Validating"
	PhaseReserving  Phase = "Reserving"
	PhasePersisting Phase = "Persisting"
	PhaseAuditing   Phase = "Auditing"
	PhaseCommitted  Phase = "Committed"
)

// Transactor 事务执行器,database.TxManager实现该接口
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	CustomerName string // 为空时取调用者名字
	SessionID    *string
	Items        []CreateOrderItem
}

type CreateOrderItem struct {
	ItemID   uint
	Quantity int
}

// reservation 同一库存条目合并后的扣减量
type reservation struct {
	itemID   uint
	quantity int
}

// CreateOrderUseCase 下单
//
// 防超卖靠库存行上的版本号（乐观锁）:
//  1. 读出所有相关库存行的快照
//  2. 按库存ID升序逐行条件扣减,任一行失败即补偿已扣减的行
//  3. 订单和明细与扣减在同一事务提交
//  4. 版本冲突时整体回滚,用新快照重试,重试次数有上限
//
// 提交后的审计、缓存失效、事件发布都是尽力而为,失败不影响订单。
type CreateOrderUseCase struct {
	orders      order.Repository
	ledger      inventory.Ledger
	tx          Transactor
	cache       cache.Cache
	recorder    *audit.Recorder
	events      mq.EventPublisher
	logger      *zap.Logger
	maxAttempts int
	timeout     time.Duration
	now         func() time.Time
}

func NewCreateOrderUseCase(
	orders order.Repository,
	ledger inventory.Ledger,
	tx Transactor,
	c cache.Cache,
	recorder *audit.Recorder,
	events mq.EventPublisher,
	cfg *config.Config,
	logger *zap.Logger,
) *CreateOrderUseCase {
	attempts := cfg.Order.MaxReserveAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &CreateOrderUseCase{
		orders:      orders,
		ledger:      ledger,
		tx:          tx,
		cache:       c,
		recorder:    recorder,
		events:      events,
		logger:      logger,
		maxAttempts: attempts,
		timeout:     cfg.Order.ReserveTimeout,
		now:         time.Now,
	}
}

func (uc *CreateOrderUseCase) Execute(ctx context.Context, actor order.Actor, req CreateOrderRequest) (view *OrderView, err error) {
	start := time.Now()
	metrics.IncGauge(metrics.OrdersInProgress)
	defer func() {
		metrics.DecGauge(metrics.OrdersInProgress)
		metrics.ObserveHistogram(metrics.OrderCreationDuration, time.Since(start).Seconds())
	}()

	ctx, span := tracing.StartSpan(ctx, tracerName, "order.create")
	defer func() { tracing.EndSpan(span, err) }()
	span.SetAttributes(attribute.Int("order.lines", len(req.Items)))

	if err := validate(req); err != nil {
		return nil, uc.reject(ctx, PhaseValidating, err)
	}
	demand := aggregate(req.Items)

	customer := req.CustomerName
	if customer == "" {
		customer = actor.AuditName()
	}
	items := make([]order.OrderItem, len(req.Items))
	for i, line := range req.Items {
		items[i] = order.OrderItem{InventoryItemID: line.ItemID, Quantity: line.Quantity}
	}
	o := order.NewOrder(customer, req.SessionID, items, uc.now().UTC())

	attempt := 1
	for ; ; attempt++ {
		span.AddEvent(string(PhaseReserving), trace.WithAttributes(attribute.Int("attempt", attempt)))
		phase, err := uc.reserveAndPersist(ctx, o, demand)
		if err == nil {
			break
		}
		if !errors.Is(err, inventory.ErrConcurrencyConflict) {
			return nil, uc.reject(ctx, phase, err)
		}
		if attempt >= uc.maxAttempts {
			return nil, uc.reject(ctx, phase, order.ErrReservationConflict.WithCause(err))
		}
		metrics.IncCounter(metrics.ReservationConflictsTotal)
		uc.logger.Debug("reservation conflict, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	span.AddEvent(string(PhaseAuditing))
	uc.recorder.Record(ctx, actor.AuditName(), domainaudit.ActionOrderCreated,
		fmt.Sprintf("Order ID %d created with %d item(s).", o.ID, len(o.Items)))

	uc.invalidate(ctx)
	uc.events.Publish(ctx, orderCreatedEvent(o))

	metrics.IncCounter(metrics.OrdersCreatedTotal)
	span.AddEvent(string(PhaseCommitted))
	span.SetAttributes(attribute.Int64("order.id", int64(o.ID)))
	uc.logger.Info("order committed",
		zap.Uint("order_id", o.ID),
		zap.String("customer", o.CustomerName),
		zap.Int("items", len(o.Items)),
		zap.Int("attempts", attempt),
	)

	return toOrderView(o), nil
}

// reserveAndPersist 一次尝试,整个过程在一个事务里
// 返回失败时所处的阶段
func (uc *CreateOrderUseCase) reserveAndPersist(ctx context.Context, o *order.Order, demand []reservation) (Phase, error) {
	phase := PhaseReserving
	resetIDs(o)

	ids := make([]uint, len(demand))
	for i, d := range demand {
		ids[i] = d.itemID
	}

	err := uc.tx.Transaction(ctx, func(ctx context.Context) error {
		snapshot, err := uc.ledger.FindByIDs(ctx, ids)
		if err != nil {
			return err
		}

		s := saga.NewSaga(uc.timeout, saga.WithName("create-order"), saga.WithLogger(uc.logger))
		for _, d := range demand {
			d := d
			s.AddStep("reserve:"+strconv.FormatUint(uint64(d.itemID), 10),
				func(ctx context.Context) error {
					item, ok := snapshot[d.itemID]
					if !ok {
						return apperrors.ErrItemNotFound.WithCause(fmt.Errorf("inventory item %d", d.itemID))
					}
					_, err := uc.ledger.Reserve(ctx, item, d.quantity)
					return err
				},
				func(ctx context.Context) error {
					return uc.ledger.Release(ctx, d.itemID, d.quantity)
				},
			)
		}
		s.AddStep("persist", func(ctx context.Context) error {
			phase = PhasePersisting
			return uc.orders.Create(ctx, o)
		}, nil)

		return s.Execute(ctx)
	})
	if err != nil {
		resetIDs(o)
	}
	return phase, err
}

func (uc *CreateOrderUseCase) invalidate(ctx context.Context) {
	if err := uc.cache.Invalidate(ctx, cache.KeyInventoryList); err != nil {
		uc.logger.Warn("invalidate inventory cache failed", zap.Error(err))
	}
	if err := uc.cache.InvalidatePrefix(ctx, cache.PrefixOrdersByStatus); err != nil {
		uc.logger.Warn("invalidate orders cache failed", zap.Error(err))
	}
}

func (uc *CreateOrderUseCase) reject(ctx context.Context, phase Phase, err error) error {
	reason := rejectReason(err)
	metrics.IncCounter(metrics.OrdersFailedTotal)
	metrics.IncCounterVec(metrics.OrdersRejectedTotal, map[string]string{
		"phase":  string(phase),
		"reason": reason,
	})

	log := uc.logger.Info
	if reason == "storage" {
		log = uc.logger.Error
	}
	log("order rejected",
		zap.String("phase", string(phase)),
		zap.String("reason", reason),
		zap.String("trace_id", tracing.ExtractTraceID(ctx)),
		zap.Error(err),
	)
	return err
}

func validate(req CreateOrderRequest) error {
	if len(req.Items) == 0 {
		return order.ErrInvalidOrderItems
	}
	for _, line := range req.Items {
		if line.ItemID == 0 {
			return order.ErrInvalidItemID
		}
		if line.Quantity <= 0 {
			return order.ErrInvalidQuantity
		}
	}
	return nil
}

// aggregate 合并同一库存条目的数量,按ID升序
// 固定顺序让并发订单以相同顺序访问库存行
func aggregate(lines []CreateOrderItem) []reservation {
	sums := make(map[uint]int, len(lines))
	for _, line := range lines {
		sums[line.ItemID] += line.Quantity
	}

	out := make([]reservation, 0, len(sums))
	for id, qty := range sums {
		out = append(out, reservation{itemID: id, quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].itemID < out[j].itemID })
	return out
}

func resetIDs(o *order.Order) {
	o.ID = 0
	for i := range o.Items {
		o.Items[i].ID = 0
		o.Items[i].OrderID = 0
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, inventory.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, inventory.ErrItemNotFound):
		return "item_not_found"
	case errors.Is(err, order.ErrReservationConflict):
		return "conflict"
	case errors.Is(err, order.ErrInvalidOrderItems),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrInvalidItemID):
		return "invalid_request"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "storage"
	}
}

func orderCreatedEvent(o *order.Order) mq.OrderCreated {
	items := make([]mq.EventItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = mq.EventItem{InventoryItemID: item.InventoryItemID, Quantity: item.Quantity}
	}
	return mq.OrderCreated{
		OrderID:    o.ID,
		Customer:   o.CustomerName,
		Status:     o.Status.String(),
		Items:      items,
		OccurredAt: o.DatePlaced,
	}
}
