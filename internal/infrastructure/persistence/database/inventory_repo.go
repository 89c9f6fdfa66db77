package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/logitrax/internal/domain/inventory"
	apperrors "github.com/xiebiao/logitrax/pkg/errors"
)

// inventoryRepository 库存账本
// 1. 所有数量变更都是单条条件UPDATE,不依赖行锁
// 2. 预留: WHERE id = ? AND version = ? AND quantity >= ?,0行受影响时再查一次区分原因
// 3. 入库: 先原子自增,没有行再插入,插入撞上唯一索引说明并发创建,回头再自增一次
type inventoryRepository struct {
	db        *gorm.DB
	locations inventory.LocationSet
}

// NewInventoryRepository 创建库存账本
func NewInventoryRepository(db *gorm.DB, locations inventory.LocationSet) inventory.Ledger {
	return &inventoryRepository{db: db, locations: locations}
}

func (r *inventoryRepository) GetAll(ctx context.Context) ([]*inventory.Item, error) {
	var models []InventoryItemModel
	if err := r.getDB(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.WrapStorage(err, "查询库存失败")
	}

	items := make([]*inventory.Item, len(models))
	for i := range models {
		items[i] = toItemEntity(&models[i])
	}
	return items, nil
}

func (r *inventoryRepository) FindByID(ctx context.Context, id uint) (*inventory.Item, error) {
	var model InventoryItemModel
	if err := r.getDB(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrItemNotFound
		}
		return nil, apperrors.WrapStorage(err, "查询库存条目失败")
	}
	return toItemEntity(&model), nil
}

// FindByIDs 批量读取,不存在的ID不会出现在结果里
func (r *inventoryRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]*inventory.Item, error) {
	result := make(map[uint]*inventory.Item, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var models []InventoryItemModel
	if err := r.getDB(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, apperrors.WrapStorage(err, "批量查询库存失败")
	}
	for i := range models {
		result[models[i].ID] = toItemEntity(&models[i])
	}
	return result, nil
}

func (r *inventoryRepository) Find(ctx context.Context, name, location string) (*inventory.Item, error) {
	var model InventoryItemModel
	err := r.getDB(ctx).Where("name = ? AND location = ?", name, location).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrItemNotFound
		}
		return nil, apperrors.WrapStorage(err, "查询库存条目失败")
	}
	return toItemEntity(&model), nil
}

// Upsert 入库
// 并发的 +1 不会丢失: 每一次都落在 quantity = quantity + ? 上
func (r *inventoryRepository) Upsert(ctx context.Context, name, location string, delta int) (*inventory.Item, error) {
	if err := r.locations.Check(location); err != nil {
		return nil, err
	}
	if err := inventory.ValidateUpsert(name, delta); err != nil {
		return nil, err
	}

	ok, err := r.increment(ctx, name, location, delta)
	if err != nil {
		return nil, err
	}
	if !ok {
		model := &InventoryItemModel{Name: name, Location: location, Quantity: delta, Version: 1}
		err := r.getDB(ctx).Create(model).Error
		switch {
		case err == nil:
			return toItemEntity(model), nil
		case !isDuplicateError(err):
			return nil, apperrors.WrapStorage(err, "创建库存条目失败")
		}

		// 并发创建,对方已经插入,改为自增
		if ok, err = r.increment(ctx, name, location, delta); err != nil {
			return nil, err
		}
		if !ok {
			return nil, inventory.ErrConcurrencyConflict
		}
	}

	return r.Find(ctx, name, location)
}

func (r *inventoryRepository) increment(ctx context.Context, name, location string, delta int) (bool, error) {
	result := r.getDB(ctx).Model(&InventoryItemModel{}).
		Where("name = ? AND location = ?", name, location).
		Updates(map[string]interface{}{
			"quantity": gorm.Expr("quantity + ?", delta),
			"version":  gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, apperrors.WrapStorage(result.Error, "更新库存失败")
	}
	return result.RowsAffected > 0, nil
}

// Reserve 按快照的版本号扣减库存
// 版本不匹配返回ErrConcurrencyConflict,由调用方重新读取后重试
func (r *inventoryRepository) Reserve(ctx context.Context, item *inventory.Item, quantity int) (*inventory.Item, error) {
	if quantity <= 0 {
		return nil, inventory.ErrInvalidQuantity
	}
	if !item.CanReserve(quantity) {
		return nil, insufficient(item, quantity)
	}

	db := r.getDB(ctx)
	result := db.Model(&InventoryItemModel{}).
		Where("id = ? AND version = ? AND quantity >= ?", item.ID, item.Version, quantity).
		Updates(map[string]interface{}{
			"quantity": gorm.Expr("quantity - ?", quantity),
			"version":  gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return nil, apperrors.WrapStorage(result.Error, "扣减库存失败")
	}

	if result.RowsAffected == 0 {
		current, err := r.FindByID(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		if current.Quantity < quantity {
			return nil, insufficient(current, quantity)
		}
		return nil, inventory.ErrConcurrencyConflict
	}

	reserved := *item
	reserved.Quantity -= quantity
	reserved.Version++
	return &reserved, nil
}

// Release 归还预留的数量（补偿）
func (r *inventoryRepository) Release(ctx context.Context, id uint, quantity int) error {
	result := r.getDB(ctx).Model(&InventoryItemModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity": gorm.Expr("quantity + ?", quantity),
			"version":  gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return apperrors.WrapStorage(result.Error, "归还库存失败")
	}
	if result.RowsAffected == 0 {
		return inventory.ErrItemNotFound
	}
	return nil
}

// Delete 物理删除,返回被删除的条目
func (r *inventoryRepository) Delete(ctx context.Context, id uint) (*inventory.Item, error) {
	item, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result := r.getDB(ctx).Delete(&InventoryItemModel{}, id)
	if result.Error != nil {
		return nil, apperrors.WrapStorage(result.Error, "删除库存条目失败")
	}
	if result.RowsAffected == 0 {
		return nil, inventory.ErrItemNotFound
	}
	return item, nil
}

func (r *inventoryRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.getDB(ctx).Model(&InventoryItemModel{}).Count(&total).Error; err != nil {
		return 0, apperrors.WrapStorage(err, "统计库存失败")
	}
	return total, nil
}

func (r *inventoryRepository) getDB(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db)
}

func insufficient(item *inventory.Item, requested int) error {
	return &inventory.InsufficientStockError{
		ItemID:    item.ID,
		Name:      item.Name,
		Available: item.Quantity,
		Requested: requested,
	}
}

func toItemEntity(model *InventoryItemModel) *inventory.Item {
	return &inventory.Item{
		ID:        model.ID,
		Name:      model.Name,
		Location:  model.Location,
		Quantity:  model.Quantity,
		Version:   model.Version,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
