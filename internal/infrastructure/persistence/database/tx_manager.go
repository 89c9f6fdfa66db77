package database

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// TxManager 事务管理器
// 1. fn内所有仓储操作都在同一事务中执行
// 2. fn返回error时ROLLBACK,返回nil时COMMIT
// 3. 事务DB通过context传递,嵌套调用时GORM使用Savepoint
//
// 使用示例:
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    if _, err := ledger.Reserve(ctx, item, 2); err != nil {
//	        return err
//	    }
//	    return orderRepo.Create(ctx, o)
//	})
type TxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return conn(ctx, m.db).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn 有事务用事务DB,否则用默认DB
// 两种情况都绑定调用方的ctx,事务内的单条语句也能被取消或超时
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
