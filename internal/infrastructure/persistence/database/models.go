package database

import (
	"time"
)

// InventoryItemModel 库存条目
// 1. (name, location) 唯一索引,并发入库靠它兜底
// 2. version 乐观锁版本号,预留时作为条件更新的一部分
// 3. 不做软删除: 软删除的行会占住唯一索引
type InventoryItemModel struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex:idx_name_location;size:100;not null;comment:商品名称"`
	Location  string    `gorm:"uniqueIndex:idx_name_location;size:100;not null;comment:仓库位置"`
	Quantity  int       `gorm:"not null;default:0;check:chk_inventory_quantity,quantity >= 0;comment:可用数量"`
	Version   uint      `gorm:"not null;default:1;comment:乐观锁版本号"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (InventoryItemModel) TableName() string {
	return "inventory_items"
}

// OrderModel 订单
// 删除订单时级联删除明细
type OrderModel struct {
	ID           uint             `gorm:"primaryKey"`
	CustomerName string           `gorm:"index;size:100;not null;comment:下单人"`
	DatePlaced   time.Time        `gorm:"index;not null;comment:下单时间"`
	SessionID    *string          `gorm:"size:64;comment:匿名会话ID"`
	Status       string           `gorm:"index;size:16;not null;default:Pending;comment:订单状态(Pending/Complete/Rejected)"`
	Items        []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time        `gorm:"comment:创建时间"`
	UpdatedAt    time.Time        `gorm:"comment:更新时间"`
}

func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel 订单明细
// inventory_item_id 不建外键,库存条目删除后历史订单仍然保留
type OrderItemModel struct {
	ID              uint `gorm:"primaryKey"`
	OrderID         uint `gorm:"index;not null;comment:订单ID"`
	InventoryItemID uint `gorm:"index;not null;comment:库存条目ID"`
	Quantity        int  `gorm:"not null;check:chk_order_item_quantity,quantity > 0;comment:数量"`
}

func (OrderItemModel) TableName() string {
	return "order_items"
}

// AuditLogModel 审计日志,只追加
type AuditLogModel struct {
	ID        uint      `gorm:"primaryKey"`
	Timestamp time.Time `gorm:"index;not null"`
	Actor     string    `gorm:"size:100;not null"`
	Action    string    `gorm:"index;size:64;not null"`
	Details   string    `gorm:"type:text"`
}

func (AuditLogModel) TableName() string {
	return "audit_logs"
}
