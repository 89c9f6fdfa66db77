//go:build wireinject
// +build wireinject

// Wire依赖注入配置
// 修改后运行 `wire gen ./cmd/api` 重新生成wire_gen.go

package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	appaudit "github.com/xiebiao/logitrax/internal/application/audit"
	appinventory "github.com/xiebiao/logitrax/internal/application/inventory"
	apporder "github.com/xiebiao/logitrax/internal/application/order"
	"github.com/xiebiao/logitrax/internal/infrastructure/config"
	"github.com/xiebiao/logitrax/internal/infrastructure/persistence/database"
	"github.com/xiebiao/logitrax/internal/interface/http/handler"
	"github.com/xiebiao/logitrax/internal/interface/http/middleware"
	"github.com/xiebiao/logitrax/internal/interface/http/router"
)

// infrastructureSet 数据库、缓存、消息
var infrastructureSet = wire.NewSet(
	provideDB,
	provideCache,
	provideEventPublisher,
)

// repositorySet 仓储和事务管理器
var repositorySet = wire.NewSet(
	provideLocations,
	database.NewInventoryRepository,
	database.NewOrderRepository,
	database.NewAuditRepository,
	database.NewTxManager,
	wire.Bind(new(apporder.Transactor), new(*database.TxManager)),
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	appaudit.NewRecorder,
	provideListItemsUseCase,
	appinventory.NewUpsertItemUseCase,
	appinventory.NewDeleteItemUseCase,
	appinventory.NewSeedInventory,
	apporder.NewCreateOrderUseCase,
	apporder.NewUpdateOrderStatusUseCase,
	apporder.NewGetOrderUseCase,
	apporder.NewListOrdersUseCase,
)

// httpSet 中间件、处理器、路由
var httpSet = wire.NewSet(
	provideJWTManager,
	middleware.NewAuthMiddleware,
	handler.NewInventoryHandler,
	handler.NewOrderHandler,
	handler.NewAuditHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

// InitializeApp 组装应用
// 配置和日志由main创建后传入（tracing初始化也需要它们）
func InitializeApp(cfg *config.Config, logger *zap.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		applicationSet,
		httpSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
