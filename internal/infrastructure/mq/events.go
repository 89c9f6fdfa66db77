// Package mq 领域事件发布
//
// 事件在业务提交之后发布,尽力而为: 发布失败只记日志,不影响已提交的订单。
// Broker不可用时由熔断器短路,避免每个请求都等到超时。
package mq

import (
	"context"
	"time"
)

// 路由键
const (
	RoutingOrderCreated       = "order.created"
	RoutingOrderStatusChanged = "order.status_changed"
	RoutingInventoryUpdated   = "inventory.updated"
	RoutingInventoryDeleted   = "inventory.deleted"
)

// Event 领域事件
type Event interface {
	RoutingKey() string
}

// EventPublisher 事件发布接口,实现不返回错误
type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}

// EventItem 订单明细快照
type EventItem struct {
	InventoryItemID uint `json:"inventory_item_id"`
	Quantity        int  `json:"quantity"`
}

type OrderCreated struct {
	OrderID    uint        `json:"order_id"`
	Customer   string      `json:"customer"`
	Status     string      `json:"status"`
	Items      []EventItem `json:"items"`
	OccurredAt time.Time   `json:"occurred_at"`
}

func (OrderCreated) RoutingKey() string { return RoutingOrderCreated }

type OrderStatusChanged struct {
	OrderID    uint      `json:"order_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Actor      string    `json:"actor"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (OrderStatusChanged) RoutingKey() string { return RoutingOrderStatusChanged }

type InventoryUpdated struct {
	ItemID     uint      `json:"item_id"`
	Name       string    `json:"name"`
	Location   string    `json:"location"`
	Quantity   int       `json:"quantity"`
	Delta      int       `json:"delta"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (InventoryUpdated) RoutingKey() string { return RoutingInventoryUpdated }

type InventoryDeleted struct {
	ItemID     uint      `json:"item_id"`
	Name       string    `json:"name"`
	Location   string    `json:"location"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (InventoryDeleted) RoutingKey() string { return RoutingInventoryDeleted }

// NoopPublisher mq.enabled=false时使用
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) {}
