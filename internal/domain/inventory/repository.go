package inventory

import "context"

// Ledger 库存台账（仓储接口）
// 库存数量只能通过Upsert和Reserve/Release修改。
// 所有方法都会优先使用ctx里的事务。
type Ledger interface {
	// GetAll 全量快照,按ID升序
	GetAll(ctx context.Context) ([]*Item, error)

	// FindByID 找不到返回ErrItemNotFound
	FindByID(ctx context.Context, id uint) (*Item, error)

	// FindByIDs 批量读取,不存在的ID不出现在结果里
	FindByIDs(ctx context.Context, ids []uint) (map[uint]*Item, error)

	// Find 按业务键精确查找,找不到返回ErrItemNotFound
	Find(ctx context.Context, name, location string) (*Item, error)

	// Upsert 入库: 已存在则数量+delta、版本+1,否则新建
	// 并发入库同一个(name, location)不会丢失更新;位置不合法返回InvalidLocationError
	Upsert(ctx context.Context, name, location string, delta int) (*Item, error)

	// Reserve 按item.Version做条件扣减
	// 成功返回扣减后的行;库存不足返回InsufficientStockError;
	// 版本已变化返回ErrConcurrencyConflict,调用方需重新读取后重试
	Reserve(ctx context.Context, item *Item, quantity int) (*Item, error)

	// Release 补偿: 把预留的数量加回去
	Release(ctx context.Context, id uint, quantity int) error

	// Delete 删除条目,不存在返回ErrItemNotFound
	Delete(ctx context.Context, id uint) (*Item, error)

	// Count 条目总数
	Count(ctx context.Context) (int64, error)
}
