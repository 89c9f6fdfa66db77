// Package dbtest 测试用的内存SQLite数据库
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xiebiao/logitrax/internal/domain/inventory"
	"github.com/xiebiao/logitrax/internal/infrastructure/config"
	"github.com/xiebiao/logitrax/internal/infrastructure/persistence/database"
)

// Locations 测试默认的仓库白名单
var Locations = []string{"Warehouse A", "Warehouse B", "Central Hub", "Secondary Hub"}

// LocationSet 测试默认的仓库白名单
func LocationSet() inventory.LocationSet {
	return inventory.NewLocationSet(Locations...)
}

// New 每个测试一个独立的内存库
// 只开一个连接: 内存库在所有连接关闭后消失,且SQLite同一时刻只允许一个写事务
func New(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		Database: config.DatabaseConfig{
			Driver:       "sqlite",
			Path:         fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString()),
			MaxOpenConns: 1,
		},
	}

	db, err := database.NewDB(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
