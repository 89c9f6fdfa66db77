// Package router 注册全部HTTP路由和全局中间件
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/xiebiao/logitrax/internal/domain/order"
	"github.com/xiebiao/logitrax/internal/infrastructure/config"
	"github.com/xiebiao/logitrax/internal/interface/http/handler"
	"github.com/xiebiao/logitrax/internal/interface/http/middleware"
	"github.com/xiebiao/logitrax/pkg/response"
)

// Handlers 路由需要的全部处理器
type Handlers struct {
	Inventory *handler.InventoryHandler
	Order     *handler.OrderHandler
	Audit     *handler.AuditHandler
}

// New 创建并配置Gin引擎
//
// 中间件顺序: Recovery → Logger → otelgin → Metrics → 路由级认证
func New(cfg *config.Config, logger *zap.Logger, h Handlers, auth *middleware.AuthMiddleware) *gin.Engine {
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery(logger), middleware.Logger(logger))
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// 生产环境不暴露文档
	if cfg.Server.Mode != "release" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	manager := middleware.RequireRole(order.RoleManager)

	v1 := r.Group("/api/v1")
	{
		inventory := v1.Group("/inventory")
		inventory.Use(auth.RequireAuth())
		{
			inventory.GET("", h.Inventory.List)
			inventory.POST("", manager, h.Inventory.Upsert)
			inventory.DELETE("/:id", manager, h.Inventory.Delete)
		}

		// 下单允许匿名,其余订单接口需要登录
		v1.POST("/orders", auth.OptionalAuth(), h.Order.CreateOrder)

		orders := v1.Group("/orders")
		orders.Use(auth.RequireAuth())
		{
			orders.GET("", h.Order.ListOrders)
			orders.GET("/status/:status", h.Order.ListOrdersByStatus)
			orders.GET("/:id", h.Order.GetOrder)
			orders.PATCH("/:id/status", manager, h.Order.UpdateStatus)
		}

		v1.GET("/audit", auth.RequireAuth(), manager, h.Audit.Recent)
	}

	return r
}
