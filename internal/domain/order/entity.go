package order

import (
	"strings"
	"time"
)

// Status 订单状态
// 以字符串落库（Pending/Complete/Rejected）,便于直接查询和对接报表
type Status string

const (
	StatusPending  Status = "Pending"
	StatusComplete Status = "Complete"
	StatusRejected Status = "Rejected"
)

var knownStatuses = []Status{StatusPending, StatusComplete, StatusRejected}

// ParseStatus 解析状态字符串,大小写不敏感
// "complete" / "COMPLETE" 都解析为StatusComplete; 其它值返回ErrInvalidStatus
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for _, st := range knownStatuses {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

func (s Status) String() string {
	return string(s)
}

// Order 订单（聚合根）
// 创建后只有Status会变化,明细不可修改
type Order struct {
	ID           uint
	CustomerName string
	DatePlaced   time.Time
	SessionID    *string
	Status       Status
	Items        []OrderItem
}

// OrderItem 订单明细
// InventoryItemID只是弱引用,不随库存条目删除而删除
type OrderItem struct {
	ID              uint
	OrderID         uint
	InventoryItemID uint
	Quantity        int
}

// NewOrder 创建待处理订单
func NewOrder(customerName string, sessionID *string, items []OrderItem, placedAt time.Time) *Order {
	return &Order{
		CustomerName: customerName,
		DatePlaced:   placedAt,
		SessionID:    sessionID,
		Status:       StatusPending,
		Items:        items,
	}
}

// TransitionTo 直接覆盖状态
// 不限制流转方向,Complete → Pending 也是允许的
func (o *Order) TransitionTo(target Status) {
	o.Status = target
}

// IsOwnedBy 订单是否属于该客户
func (o *Order) IsOwnedBy(customerName string) bool {
	return o.CustomerName == customerName
}

// ItemCount 明细行数
func (o *Order) ItemCount() int {
	return len(o.Items)
}
