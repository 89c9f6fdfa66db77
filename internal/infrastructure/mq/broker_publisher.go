package mq

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/logitrax/pkg/circuitbreaker"
	"github.com/xiebiao/logitrax/pkg/metrics"
)

// publishTimeout 单次投递的上限,超过即放弃
const publishTimeout = 2 * time.Second

// Sender pkg/mq.Publisher满足该接口
type Sender interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// BrokerPublisher 经熔断器投递到RabbitMQ
type BrokerPublisher struct {
	sender  Sender
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewBrokerPublisher openTimeout为熔断打开后多久进入半开
func NewBrokerPublisher(sender Sender, openTimeout time.Duration, logger *zap.Logger) *BrokerPublisher {
	breaker := circuitbreaker.New("mq", circuitbreaker.Config{
		Timeout: openTimeout,
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": name}, float64(to))
		},
	})
	metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": breaker.Name()}, float64(circuitbreaker.StateClosed))

	return &BrokerPublisher{sender: sender, breaker: breaker, logger: logger}
}

// Publish 请求ctx可能在响应返回后被取消,这里去掉取消信号,只保留trace等值
func (p *BrokerPublisher) Publish(ctx context.Context, event Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err := p.breaker.Execute(ctx, func(ctx context.Context) error {
		return p.sender.Publish(ctx, event.RoutingKey(), event)
	})
	if err != nil {
		p.logger.Warn("publish event failed",
			zap.String("routing_key", event.RoutingKey()),
			zap.String("breaker", p.breaker.State().String()),
			zap.Error(err),
		)
	}
}

// BreakerState 当前熔断状态
func (p *BrokerPublisher) BreakerState() circuitbreaker.State {
	return p.breaker.State()
}
