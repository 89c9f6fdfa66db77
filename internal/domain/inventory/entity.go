package inventory

import (
	"strings"
	"time"
)

// Item 库存条目
// 1. (Name, Location) 是业务唯一键,同一位置的同名商品只会有一行
// 2. Version 是乐观锁版本号,每次更新+1,预留时必须带上读到的版本
// 3. Quantity 任何时刻都不小于0
type Item struct {
	ID        uint
	Name      string
	Location  string
	Quantity  int
	Version   uint
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanReserve 当前快照是否足够扣减
func (i *Item) CanReserve(quantity int) bool {
	return quantity > 0 && i.Quantity >= quantity
}

// ValidateUpsert 入库参数校验
func ValidateUpsert(name string, delta int) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	if delta <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}
