package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/logitrax/internal/domain/order"
	apperrors "github.com/xiebiao/logitrax/pkg/errors"
)

// orderRepository 订单仓储
// Order和OrderItem是聚合关系,一起保存; 查询时Preload明细避免N+1
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create 创建订单,GORM会一并插入Items
// 必须在事务中调用,和库存预留一起提交
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.WrapStorage(err, "创建订单失败")
	}

	o.ID = model.ID
	for i := range o.Items {
		o.Items[i].ID = model.Items[i].ID
		o.Items[i].OrderID = model.ID
	}
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	err := r.getDB(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.WrapStorage(err, "查询订单失败")
	}
	return toOrderEntity(&model), nil
}

// UpdateStatus 只更新状态
// MySQL在值未变化时RowsAffected为0,需要再确认一次订单是否存在
func (r *orderRepository) UpdateStatus(ctx context.Context, id uint, status order.Status) error {
	db := r.getDB(ctx)
	result := db.Model(&OrderModel{}).Where("id = ?", id).Update("status", string(status))
	if result.Error != nil {
		return apperrors.WrapStorage(result.Error, "更新订单状态失败")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var n int64
	if err := db.Model(&OrderModel{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return apperrors.WrapStorage(err, "查询订单失败")
	}
	if n == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// List 分页查询,按下单时间倒序
func (r *orderRepository) List(ctx context.Context, params order.ListParams) ([]*order.Order, int64, error) {
	query := r.getDB(ctx).Model(&OrderModel{})
	if params.Status != nil {
		query = query.Where("status = ?", string(*params.Status))
	}
	if params.Customer != "" {
		query = query.Where("customer_name = ?", params.Customer)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.WrapStorage(err, "查询订单总数失败")
	}

	offset, limit := normalizePage(params.Page, params.PageSize)
	var models []OrderModel
	err := query.Preload("Items").
		Order("date_placed DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.WrapStorage(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrderEntity(&models[i])
	}
	return orders, total, nil
}

func (r *orderRepository) getDB(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db)
}

func toOrderModel(o *order.Order) *OrderModel {
	items := make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemModel{
			ID:              item.ID,
			OrderID:         item.OrderID,
			InventoryItemID: item.InventoryItemID,
			Quantity:        item.Quantity,
		}
	}

	return &OrderModel{
		ID:           o.ID,
		CustomerName: o.CustomerName,
		DatePlaced:   o.DatePlaced,
		SessionID:    o.SessionID,
		Status:       string(o.Status),
		Items:        items,
	}
}

func toOrderEntity(model *OrderModel) *order.Order {
	items := make([]order.OrderItem, len(model.Items))
	for i, item := range model.Items {
		items[i] = order.OrderItem{
			ID:              item.ID,
			OrderID:         item.OrderID,
			InventoryItemID: item.InventoryItemID,
			Quantity:        item.Quantity,
		}
	}

	return &order.Order{
		ID:           model.ID,
		CustomerName: model.CustomerName,
		DatePlaced:   model.DatePlaced,
		SessionID:    model.SessionID,
		Status:       order.Status(model.Status),
		Items:        items,
	}
}
