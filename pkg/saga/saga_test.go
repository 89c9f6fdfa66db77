package saga

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type ctxKey struct{}

// recorder 记录步骤执行顺序
type recorder struct{ calls []string }

func (r *recorder) step(name string, err error) func(context.Context) error {
	return func(context.Context) error {
		r.calls = append(r.calls, name)
		return err
	}
}

func TestSaga_Execute_Success(t *testing.T) {
	rec := &recorder{}
	s := NewSaga(time.Second)
	s.AddStep("预留:1", rec.step("预留:1", nil), rec.step("释放:1", nil))
	s.AddStep("预留:2", rec.step("预留:2", nil), rec.step("释放:2", nil))

	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, []string{"预留:1", "预留:2"}, rec.calls)
}

func TestSaga_Execute_CompensatesInReverse(t *testing.T) {
	rec := &recorder{}
	errShort := errors.New("库存不足")

	s := NewSaga(time.Second)
	s.AddStep("预留:1", rec.step("预留:1", nil), rec.step("释放:1", nil))
	s.AddStep("预留:2", rec.step("预留:2", nil), rec.step("释放:2", nil))
	s.AddStep("预留:3", rec.step("预留:3", errShort), rec.step("释放:3", nil))

	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errShort)
	assert.Equal(t, []string{"预留:1", "预留:2", "预留:3", "释放:2", "释放:1"}, rec.calls,
		"失败步骤本身不补偿,已完成步骤逆序补偿")
}

func TestSaga_Execute_Timeout(t *testing.T) {
	rec := &recorder{}
	s := NewSaga(50 * time.Millisecond)
	s.AddStep("快速", rec.step("快速", nil), rec.step("快速补偿", nil))
	s.AddStep("慢速",
		func(ctx context.Context) error {
			select {
			case <-time.After(time.Second):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
		rec.step("慢速补偿", nil),
	)

	err := s.Execute(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []string{"快速", "快速补偿"}, rec.calls)
}

func TestSaga_CompensationKeepsContextValues(t *testing.T) {
	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "tx-handle"))

	var seen interface{}
	var seenErr error
	s := NewSaga(0)
	s.AddStep("预留",
		func(context.Context) error { return nil },
		func(ctx context.Context) error {
			seen = ctx.Value(ctxKey{})
			seenErr = ctx.Err()
			return nil
		},
	)
	s.AddStep("持久化", func(context.Context) error {
		cancel()
		return errors.New("写入失败")
	}, nil)

	require.Error(t, s.Execute(ctx))
	assert.Equal(t, "tx-handle", seen)
	assert.NoError(t, seenErr, "补偿不应继承取消信号")
}

func TestSaga_CompensationFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	rec := &recorder{}

	s := NewSaga(time.Second, WithName("reserve"), WithLogger(zap.New(core)))
	s.AddStep("预留:1", rec.step("预留:1", nil), rec.step("释放:1", nil))
	s.AddStep("预留:2", rec.step("预留:2", nil), rec.step("释放:2", errors.New("连接断开")))
	s.AddStep("预留:3", rec.step("预留:3", errors.New("库存不足")), nil)

	require.Error(t, s.Execute(context.Background()))
	assert.Equal(t, []string{"预留:1", "预留:2", "预留:3", "释放:2", "释放:1"}, rec.calls,
		"一个补偿失败不影响后续补偿")

	entries := logs.FilterMessage("saga compensation failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "预留:2", entries[0].ContextMap()["step"])
	assert.Equal(t, "reserve", entries[0].ContextMap()["saga"])
}
