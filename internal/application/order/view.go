package order

import (
	"time"

	"github.com/xiebiao/logitrax/internal/domain/order"
)

// OrderView 订单输出（同时也是缓存里的值）
type OrderView struct {
	ID           uint            `json:"id"`
	CustomerName string          `json:"customer_name"`
	DatePlaced   time.Time       `json:"date_placed"`
	SessionID    *string         `json:"session_id,omitempty"`
	Status       string          `json:"status"`
	Items        []OrderItemView `json:"items"`
}

type OrderItemView struct {
	ID              uint `json:"id"`
	InventoryItemID uint `json:"inventory_item_id"`
	Quantity        int  `json:"quantity"`
}

// OrderPage 分页结果
type OrderPage struct {
	List     []*OrderView `json:"list"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}

func toOrderView(o *order.Order) *OrderView {
	items := make([]OrderItemView, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemView{
			ID:              item.ID,
			InventoryItemID: item.InventoryItemID,
			Quantity:        item.Quantity,
		}
	}
	return &OrderView{
		ID:           o.ID,
		CustomerName: o.CustomerName,
		DatePlaced:   o.DatePlaced,
		SessionID:    o.SessionID,
		Status:       o.Status.String(),
		Items:        items,
	}
}
