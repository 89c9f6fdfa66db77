package audit

import (
	"context"
	"time"
)

// 审计动作
const (
	ActionOrderCreated       = "Order Created"
	ActionOrderStatusUpdated = "Order Status Updated"
	ActionInventoryUpdated   = "Inventory Updated"
	ActionInventoryDeleted   = "Inventory Deleted"
)

// Entry 审计日志,只追加,不修改不删除
type Entry struct {
	ID        uint
	Timestamp time.Time
	Actor     string
	Action    string
	Details   string
}

// Repository 审计日志仓储
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	// Recent 最近的limit条,按时间倒序
	Recent(ctx context.Context, limit int) ([]*Entry, error)
}
