package dto

// CreateOrderRequest HTTP下单请求
// customer_name为空时使用登录用户名（匿名为Unknown）
// 订单行的校验在用例里做,和其他入口返回同样的错误码
type CreateOrderRequest struct {
	CustomerName string                   `json:"customer_name" binding:"max=100" example:"alice"`
	Items        []CreateOrderItemRequest `json:"items"`
}

// CreateOrderItemRequest 订单行
type CreateOrderItemRequest struct {
	ItemID   uint `json:"item_id" example:"1"`
	Quantity int  `json:"quantity" example:"2"`
}

// UpdateOrderStatusRequest 修改订单状态
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required" example:"Complete"`
}

// ListOrdersQuery 订单列表查询参数
// page/page_size缺省或非法时由用例回退到默认值
type ListOrdersQuery struct {
	Status   string `form:"status" example:"Pending"`
	Page     int    `form:"page" example:"1"`
	PageSize int    `form:"page_size" example:"10"`
}
