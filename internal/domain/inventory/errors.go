package inventory

import (
	"errors"
	"fmt"

	apperrors "github.com/xiebiao/logitrax/pkg/errors"
)

// 库存领域错误定义
var (
	// ErrItemNotFound 库存条目不存在
	ErrItemNotFound = apperrors.ErrItemNotFound

	// ErrInsufficientStock 库存不足（哨兵,具体数量见InsufficientStockError）
	ErrInsufficientStock = apperrors.ErrInsufficientStock

	// ErrInvalidLocation 仓库位置不在白名单
	ErrInvalidLocation = apperrors.ErrInvalidLocation

	// ErrConcurrencyConflict 版本号不匹配,行已被其它写入修改
	// 只在仓储和下单引擎之间流转,重试耗尽后对外转换成通用错误
	ErrConcurrencyConflict = errors.New("inventory: version conflict")

	// ErrInvalidQuantity 入库数量必须大于0
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "入库数量必须大于0")

	// ErrInvalidName 商品名称不能为空
	ErrInvalidName = apperrors.New(apperrors.ErrCodeInvalidParams, "商品名称不能为空")
)

// InsufficientStockError 库存不足,带可用数量和请求数量
type InsufficientStockError struct {
	ItemID    uint
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("商品%q库存不足: 可用%d, 需要%d", e.Name, e.Available, e.Requested)
}

// Unwrap 使errors.Is(err, ErrInsufficientStock)成立,并让response层取到错误码
func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// ErrorDetail 返回给调用方的结构化细节
func (e *InsufficientStockError) ErrorDetail() interface{} {
	return map[string]interface{}{
		"item_id":   e.ItemID,
		"name":      e.Name,
		"available": e.Available,
		"requested": e.Requested,
	}
}

// InvalidLocationError 仓库位置不在白名单
type InvalidLocationError struct {
	Location string
	Allowed  []string
}

func (e *InvalidLocationError) Error() string {
	return fmt.Sprintf("无效的仓库位置 %q", e.Location)
}

func (e *InvalidLocationError) Unwrap() error {
	return ErrInvalidLocation
}

func (e *InvalidLocationError) ErrorDetail() interface{} {
	return map[string]interface{}{
		"location": e.Location,
		"allowed":  e.Allowed,
	}
}
