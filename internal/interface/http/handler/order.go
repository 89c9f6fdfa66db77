package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/logitrax/internal/application/order"
	"github.com/xiebiao/logitrax/internal/interface/http/dto"
	"github.com/xiebiao/logitrax/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/logitrax/pkg/errors"
	"github.com/xiebiao/logitrax/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	createOrderUseCase  *apporder.CreateOrderUseCase
	getOrderUseCase     *apporder.GetOrderUseCase
	listOrdersUseCase   *apporder.ListOrdersUseCase
	updateStatusUseCase *apporder.UpdateOrderStatusUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	createOrderUseCase *apporder.CreateOrderUseCase,
	getOrderUseCase *apporder.GetOrderUseCase,
	listOrdersUseCase *apporder.ListOrdersUseCase,
	updateStatusUseCase *apporder.UpdateOrderStatusUseCase,
) *OrderHandler {
	return &OrderHandler{
		createOrderUseCase:  createOrderUseCase,
		getOrderUseCase:     getOrderUseCase,
		listOrdersUseCase:   listOrdersUseCase,
		updateStatusUseCase: updateStatusUseCase,
	}
}

// CreateOrder 创建订单
// @Summary      创建订单
// @Description  校验库存、扣减、持久化订单在一个事务里完成;任何一行库存不足整单失败,不会部分扣减
// @Tags         订单模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        session_id query string false "会话ID"
// @Param        request body dto.CreateOrderRequest true "订单信息"
// @Success      200 {object} response.Response{data=apporder.OrderView} "下单成功"
// @Failure      200 {object} response.Response "40001 库存不足（data带可用量和请求量）/ 40402 条目不存在 / 50009 并发冲突"
// @Router       /orders [post]
//
// 并发下单互不阻塞:库存行带版本号,扣减是条件更新,
// 版本冲突时整单从头重读重试,超过次数返回50009。
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
		return
	}

	items := make([]apporder.CreateOrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = apporder.CreateOrderItem{
			ItemID:   item.ItemID,
			Quantity: item.Quantity,
		}
	}

	var sessionID *string
	if s := c.Query("session_id"); s != "" {
		sessionID = &s
	}

	result, err := h.createOrderUseCase.Execute(c.Request.Context(), middleware.ActorFrom(c), apporder.CreateOrderRequest{
		CustomerName: req.CustomerName,
		SessionID:    sessionID,
		Items:        items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetOrder 订单详情
// @Summary      订单详情
// @Description  非管理员只能查看自己的订单
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=apporder.OrderView}
// @Failure      200 {object} response.Response "40403 订单不存在"
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.getOrderUseCase.Execute(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListOrders 订单列表
// @Summary      订单列表
// @Description  status为空表示全部;管理员看全部订单,其他用户只看自己的
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Param        status    query string false "Pending | Complete | Rejected"
// @Param        page      query int    false "页码"
// @Param        page_size query int    false "每页条数"
// @Success      200 {object} response.Response{data=response.PageData{list=[]apporder.OrderView}}
// @Router       /orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var q dto.ListOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
		return
	}
	h.list(c, q)
}

// ListOrdersByStatus 按状态查询订单
// @Summary      按状态查询订单
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Param        status    path  string true  "Pending | Complete | Rejected"
// @Param        page      query int    false "页码"
// @Param        page_size query int    false "每页条数"
// @Success      200 {object} response.Response{data=response.PageData{list=[]apporder.OrderView}}
// @Failure      200 {object} response.Response "40002 状态非法"
// @Router       /orders/status/{status} [get]
func (h *OrderHandler) ListOrdersByStatus(c *gin.Context) {
	var q dto.ListOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
		return
	}
	q.Status = c.Param("status")
	h.list(c, q)
}

func (h *OrderHandler) list(c *gin.Context, q dto.ListOrdersQuery) {
	page, err := h.listOrdersUseCase.Execute(c.Request.Context(), middleware.ActorFrom(c), apporder.ListOrdersRequest{
		Status:   q.Status,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, page.List, page.Total, page.Page, page.PageSize)
}

// UpdateStatus 修改订单状态
// @Summary      修改订单状态
// @Description  仅管理员;状态之间没有流转限制,可以任意覆盖
// @Tags         订单模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                          true "订单ID"
// @Param        request body dto.UpdateOrderStatusRequest true "目标状态"
// @Success      200 {object} response.Response{data=apporder.OrderView}
// @Failure      200 {object} response.Response "40002 状态非法 / 40403 订单不存在"
// @Failure      403 {object} response.Response "非管理员"
// @Router       /orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
		return
	}

	result, err := h.updateStatusUseCase.Execute(c.Request.Context(), middleware.ActorFrom(c), id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
