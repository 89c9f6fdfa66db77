package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// useRecorder 安装内存Span记录器,测试结束后恢复原Provider
func useRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestInitTracer(t *testing.T) {
	_, err := InitTracer(context.Background(), Options{ServiceName: "logitrax"})
	assert.Error(t, err, "端点为空应报错")

	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	shutdown, err := InitTracer(context.Background(), Options{
		ServiceName: "logitrax",
		Endpoint:    "localhost:4317",
		Insecure:    true,
		SampleRatio: 0.5,
	})
	require.NoError(t, err)
	// collector不在线时shutdown可能返回导出错误,只要不阻塞即可
	_ = shutdown(context.Background())
}

func TestStartSpan_ChildSharesTrace(t *testing.T) {
	recorder := useRecorder(t)

	ctx, root := StartSpan(context.Background(), "logitrax", "CreateOrder")
	_, child := StartSpan(ctx, "logitrax", "ReserveStock")
	child.End()
	root.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "ReserveStock", spans[0].Name())
	assert.Equal(t, spans[1].SpanContext().TraceID(), spans[0].SpanContext().TraceID())
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
}

func TestEndSpan_Status(t *testing.T) {
	recorder := useRecorder(t)

	_, ok := StartSpan(context.Background(), "logitrax", "ok")
	EndSpan(ok, nil)
	_, failed := StartSpan(context.Background(), "logitrax", "failed")
	EndSpan(failed, errors.New("库存不足"))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "库存不足", spans[1].Status().Description)
	assert.Len(t, spans[1].Events(), 1, "错误应记录为事件")
}

func TestExtractIDs(t *testing.T) {
	useRecorder(t)

	assert.Empty(t, ExtractTraceID(context.Background()))
	assert.Empty(t, ExtractSpanID(context.Background()))

	ctx, span := StartSpan(context.Background(), "logitrax", "op")
	defer span.End()
	assert.Len(t, ExtractTraceID(ctx), 32)
	assert.Len(t, ExtractSpanID(ctx), 16)
}
