package order

import (
	apperrors "github.com/xiebiao/logitrax/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.ErrOrderNotFound

	// ErrInvalidStatus 不是Pending/Complete/Rejected之一
	ErrInvalidStatus = apperrors.ErrInvalidStatus

	// ErrInvalidOrderItems 订单明细为空
	ErrInvalidOrderItems = apperrors.New(apperrors.ErrCodeInvalidParams, "订单明细不能为空")

	// ErrInvalidQuantity 购买数量不合法
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "购买数量必须大于0")

	// ErrInvalidItemID 库存条目ID不合法
	ErrInvalidItemID = apperrors.New(apperrors.ErrCodeInvalidParams, "库存条目ID必须大于0")

	// ErrReservationConflict 并发冲突重试耗尽,对外不暴露重试细节
	ErrReservationConflict = apperrors.ErrConflict
)
