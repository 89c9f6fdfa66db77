// Package metrics Prometheus指标
//
// 指标在InitMetrics里注册到默认Registry,由/metrics端点暴露。
// 所有辅助函数都允许指标为nil（未初始化时直接跳过）,
// 这样单元测试和命令行工具不需要先初始化指标。
//
// 命名约定:
//   - Counter以_total结尾
//   - Histogram以单位结尾（_seconds）
//   - 标签只用有限取值（phase、result、family）,不要用订单ID这种高基数字段
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	initOnce sync.Once

	// HTTP

	// HTTPRequestsTotal 标签: method, path, status
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTPRequestDuration 标签: method, path
	HTTPRequestDuration *prometheus.HistogramVec
	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// 订单

	OrdersCreatedTotal    prometheus.Counter
	OrdersFailedTotal     prometheus.Counter
	OrderCreationDuration prometheus.Histogram
	OrdersInProgress      prometheus.Gauge
	// OrdersRejectedTotal 标签: phase（Validating/Reserving/Persisting）, reason
	OrdersRejectedTotal *prometheus.CounterVec
	// ReservationConflictsTotal 乐观锁版本冲突次数（每次重试前+1）
	ReservationConflictsTotal prometheus.Counter
	// OrderStatusTransitionsTotal 标签: status
	OrderStatusTransitionsTotal *prometheus.CounterVec

	// 库存 & 审计

	// InventoryUpsertsTotal 标签: result（created/incremented）
	InventoryUpsertsTotal *prometheus.CounterVec
	AuditFailuresTotal    prometheus.Counter

	// 缓存

	// CacheRequestsTotal 标签: family（inventory/orders）, result（hit/miss/error）
	CacheRequestsTotal *prometheus.CounterVec

	// 熔断器

	// CircuitBreakerState 0=CLOSED, 1=OPEN, 2=HALF_OPEN; 标签: name
	CircuitBreakerState *prometheus.GaugeVec

	// Saga

	// SagaExecutionsTotal 标签: result（success/failure）
	SagaExecutionsTotal    *prometheus.CounterVec
	SagaExecutionDuration  prometheus.Histogram
	SagaCompensationsTotal prometheus.Counter

	// 消息队列

	// MessagesPublishedTotal 标签: exchange, routing_key, result
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 注册所有指标,重复调用无副作用
func InitMetrics() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_in_progress",
		Help: "正在处理的HTTP请求数",
	})

	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "订单创建总数",
	})

	OrdersFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "订单创建失败总数",
	})

	OrderCreationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_creation_duration_seconds",
		Help:    "订单创建耗时（秒）",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	OrdersInProgress = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orders_in_progress",
		Help: "正在处理的订单数",
	})

	OrdersRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_rejected_total",
			Help: "按阶段统计的订单拒绝数",
		},
		[]string{"phase", "reason"},
	)

	ReservationConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_reservation_conflicts_total",
		Help: "库存预留版本冲突次数",
	})

	OrderStatusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_status_transitions_total",
			Help: "订单状态变更次数",
		},
		[]string{"status"},
	)

	InventoryUpsertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_upserts_total",
			Help: "入库次数",
		},
		[]string{"result"},
	)

	AuditFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audit_append_failures_total",
		Help: "审计日志写入失败次数",
	})

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "缓存查询次数",
		},
		[]string{"family", "result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	SagaExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_executions_total",
			Help: "Saga执行总数",
		},
		[]string{"result"},
	)

	SagaExecutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "saga_execution_duration_seconds",
		Help:    "Saga执行耗时（秒）",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	SagaCompensationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "saga_compensations_total",
		Help: "Saga补偿执行总数",
	})

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key", "result"},
	)
}

// IncCounter 递增Counter
func IncCounter(counter prometheus.Counter) {
	if counter == nil {
		return
	}
	counter.Inc()
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	if counter == nil {
		return
	}
	counter.With(labels).Inc()
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	if gauge == nil {
		return
	}
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	if gauge == nil {
		return
	}
	gauge.Dec()
}

// SetGaugeVec 设置GaugeVec值（带标签）
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	if gauge == nil {
		return
	}
	gauge.With(labels).Set(value)
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	if histogram == nil {
		return
	}
	histogram.Observe(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	if histogram == nil {
		return
	}
	histogram.With(labels).Observe(value)
}

// CacheResult 记录一次缓存查询结果
func CacheResult(family, result string) {
	IncCounterVec(CacheRequestsTotal, map[string]string{"family": family, "result": result})
}
