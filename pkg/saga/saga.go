// Package saga 顺序执行步骤,失败时逆序补偿
//
// 下单流程里每条明细的库存预留是一个步骤,补偿是把预留的数量还回去。
// 约束:
//  1. 补偿只依赖自己步骤捕获的数据,不依赖后续步骤
//  2. 补偿必须可以重复执行（调用方可能整体重试）
//  3. 补偿使用去掉取消信号的ctx执行,保留ctx里的值（比如事务句柄）
package saga

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/logitrax/pkg/metrics"
)

// Step Saga中的一个步骤
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error // 可以为nil
}

// Saga 一次执行的步骤集合,不可并发复用
type Saga struct {
	name     string
	steps    []Step
	executed []Step
	timeout  time.Duration
	logger   *zap.Logger
}

// Option Saga选项
type Option func(*Saga)

// WithLogger 补偿失败时写日志
func WithLogger(logger *zap.Logger) Option {
	return func(s *Saga) { s.logger = logger }
}

// WithName 日志里的Saga名称
func WithName(name string) Option {
	return func(s *Saga) { s.name = name }
}

// NewSaga 创建Saga,timeout<=0表示不限时
//
//	s := saga.NewSaga(5*time.Second, saga.WithName("reserve"), saga.WithLogger(log))
//	s.AddStep("reserve:3", reserve3, release3)
//	s.AddStep("reserve:7", reserve7, release7)
//	err := s.Execute(ctx)
func NewSaga(timeout time.Duration, opts ...Option) *Saga {
	s := &Saga{
		name:    "saga",
		timeout: timeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddStep 追加步骤,按添加顺序执行,按逆序补偿
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) {
	s.steps = append(s.steps, Step{
		Name:       name,
		Action:     action,
		Compensate: compensate,
	})
}

// Execute 执行所有步骤
// 任一步骤失败（或超时）时补偿已完成的步骤,返回的错误包裹原始错误,可以用errors.As取出
func (s *Saga) Execute(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		result := "success"
		if err != nil {
			result = "failure"
		}
		metrics.IncCounterVec(metrics.SagaExecutionsTotal, map[string]string{"result": result})
		metrics.ObserveHistogram(metrics.SagaExecutionDuration, time.Since(start).Seconds())
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.executed = s.executed[:0]
	for i, step := range s.steps {
		if ctxErr := ctx.Err(); ctxErr != nil {
			s.compensate(ctx)
			return fmt.Errorf("%s超时: %w", s.name, ctxErr)
		}

		if step.Action != nil {
			if actionErr := step.Action(ctx); actionErr != nil {
				s.compensate(ctx)
				return fmt.Errorf("步骤[%d:%s]执行失败: %w", i, step.Name, actionErr)
			}
		}
		s.executed = append(s.executed, step)
	}

	return nil
}

// compensate 逆序补偿已执行的步骤
// 某个补偿失败不影响其它补偿继续执行
func (s *Saga) compensate(ctx context.Context) {
	if len(s.executed) == 0 {
		return
	}
	metrics.IncCounter(metrics.SagaCompensationsTotal)

	ctx = context.WithoutCancel(ctx)
	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			s.logger.Error("saga compensation failed",
				zap.String("saga", s.name),
				zap.String("step", step.Name),
				zap.Error(err),
			)
		}
	}
	s.executed = s.executed[:0]
}
