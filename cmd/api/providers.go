package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appinventory "github.com/xiebiao/logitrax/internal/application/inventory"
	"github.com/xiebiao/logitrax/internal/domain/inventory"
	"github.com/xiebiao/logitrax/internal/infrastructure/cache"
	"github.com/xiebiao/logitrax/internal/infrastructure/config"
	"github.com/xiebiao/logitrax/internal/infrastructure/mq"
	"github.com/xiebiao/logitrax/internal/infrastructure/persistence/database"
	"github.com/xiebiao/logitrax/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/logitrax/pkg/jwt"
	pkgmq "github.com/xiebiao/logitrax/pkg/mq"
)

// App 组装完成的应用
type App struct {
	Engine *gin.Engine
	Config *config.Config
	Logger *zap.Logger
	Seed   *appinventory.SeedInventory
}

// provideDB 数据库连接,cleanup时关闭连接池
func provideDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.NewDB(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := database.Close(db); err != nil {
			logger.Warn("关闭数据库失败", zap.Error(err))
		}
	}
	return db, cleanup, nil
}

// provideLocations 仓库位置白名单
func provideLocations(cfg *config.Config) inventory.LocationSet {
	return inventory.NewLocationSet(cfg.Inventory.AllowedLocations...)
}

// provideCache 按cache.driver选择进程内缓存或Redis
func provideCache(cfg *config.Config, logger *zap.Logger) (cache.Cache, func(), error) {
	if cfg.Cache.Driver != "redis" {
		return cache.NewMemoryCache(), func() {}, nil
	}

	client, err := redis.NewClient(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Warn("关闭Redis失败", zap.Error(err))
		}
	}
	return redis.NewCacheStore(client, cfg.Cache.KeyPrefix), cleanup, nil
}

// provideEventPublisher mq.enabled=false时事件直接丢弃
func provideEventPublisher(cfg *config.Config, logger *zap.Logger) (mq.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		return mq.NoopPublisher{}, func() {}, nil
	}

	publisher, err := pkgmq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("关闭MQ连接失败", zap.Error(err))
		}
	}
	return mq.NewBrokerPublisher(publisher, cfg.MQ.BreakerOpen, logger), cleanup, nil
}

// provideJWTManager 从配置创建JWT管理器
// 只用于校验外部签发的令牌
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.TokenExpire)
}

// provideListItemsUseCase TTL来自配置,Wire无法按类型区分多个time.Duration
func provideListItemsUseCase(ledger inventory.Ledger, c cache.Cache, cfg *config.Config, logger *zap.Logger) *appinventory.ListItemsUseCase {
	return appinventory.NewListItemsUseCase(ledger, c, cfg.Cache.InventoryTTL, logger)
}
