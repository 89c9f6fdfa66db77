package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appinventory "github.com/xiebiao/logitrax/internal/application/inventory"
	"github.com/xiebiao/logitrax/internal/interface/http/dto"
	"github.com/xiebiao/logitrax/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/logitrax/pkg/errors"
	"github.com/xiebiao/logitrax/pkg/response"
)

// InventoryHandler 库存HTTP处理器
type InventoryHandler struct {
	listUseCase   *appinventory.ListItemsUseCase
	upsertUseCase *appinventory.UpsertItemUseCase
	deleteUseCase *appinventory.DeleteItemUseCase
}

// NewInventoryHandler 创建库存处理器
func NewInventoryHandler(
	listUseCase *appinventory.ListItemsUseCase,
	upsertUseCase *appinventory.UpsertItemUseCase,
	deleteUseCase *appinventory.DeleteItemUseCase,
) *InventoryHandler {
	return &InventoryHandler{
		listUseCase:   listUseCase,
		upsertUseCase: upsertUseCase,
		deleteUseCase: deleteUseCase,
	}
}

// List 库存列表
// @Summary      库存列表
// @Description  返回全部库存条目,结果短暂缓存,写操作后立即失效
// @Tags         库存模块
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]appinventory.ItemView}
// @Failure      401 {object} response.Response "未登录"
// @Router       /inventory [get]
func (h *InventoryHandler) List(c *gin.Context) {
	items, err := h.listUseCase.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}

// Upsert 入库
// @Summary      入库
// @Description  同一(名称,位置)已存在时累加数量,否则新建;位置必须在白名单内
// @Tags         库存模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.UpsertItemRequest true "库存条目"
// @Success      200 {object} response.Response{data=appinventory.ItemView}
// @Failure      200 {object} response.Response "40006 位置非法 / 40900 数量非法"
// @Failure      403 {object} response.Response "非管理员"
// @Router       /inventory [post]
func (h *InventoryHandler) Upsert(c *gin.Context) {
	var req dto.UpsertItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
		return
	}

	actor := middleware.ActorFrom(c)
	item, err := h.upsertUseCase.Execute(c.Request.Context(), actor.AuditName(), appinventory.UpsertItemRequest{
		Name:     req.Name,
		Location: req.Location,
		Quantity: req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, item)
}

// Delete 删除库存条目
// @Summary      删除库存条目
// @Tags         库存模块
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "库存条目ID"
// @Success      200 {object} response.Response
// @Failure      200 {object} response.Response "40402 条目不存在"
// @Router       /inventory/{id} [delete]
func (h *InventoryHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	actor := middleware.ActorFrom(c)
	if err := h.deleteUseCase.Execute(c.Request.Context(), actor.AuditName(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// pathID 解析路径参数:id,失败时已写响应
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "无效的ID")
		return 0, false
	}
	return uint(id), true
}
