package order

import (
	"context"
)

// ListParams 订单列表查询条件
type ListParams struct {
	Status   *Status // nil表示不过滤
	Customer string  // 空表示不过滤
	Page     int
	PageSize int
}

// Repository 订单仓储接口
// 事务通过context传递
type Repository interface {
	// Create 创建订单和明细,必须在同一事务中
	Create(ctx context.Context, order *Order) error

	// FindByID 根据ID查找订单（包含明细）
	FindByID(ctx context.Context, id uint) (*Order, error)

	// UpdateStatus 只更新状态
	UpdateStatus(ctx context.Context, id uint, status Status) error

	// List 分页查询,按下单时间倒序
	List(ctx context.Context, params ListParams) ([]*Order, int64, error)
}
