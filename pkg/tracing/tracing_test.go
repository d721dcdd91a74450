package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// newTestProvider 使用内存exporter,不依赖Jaeger
func newTestProvider(t *testing.T) (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp, err := NewProvider("library-test", exporter)
	if err != nil {
		t.Fatalf("创建Provider失败: %v", err)
	}
	Install(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
	})
	return exporter, tp
}

func TestStartSpan(t *testing.T) {
	newTestProvider(t)

	t.Run("子Span继承TraceID", func(t *testing.T) {
		ctx, root := StartSpan(context.Background(), "borrow", "Checkout")
		defer root.End()

		ctx, child := StartSpan(ctx, "borrow", "LockCopies")
		defer child.End()

		if ExtractTraceID(ctx) != root.SpanContext().TraceID().String() {
			t.Error("子Span的TraceID应与根Span一致")
		}
		if ExtractSpanID(ctx) == root.SpanContext().SpanID().String() {
			t.Error("子Span的SpanID不应与根Span相同")
		}
	})

	t.Run("无Span时返回空串", func(t *testing.T) {
		if id := ExtractTraceID(context.Background()); id != "" {
			t.Errorf("期望空TraceID, got=%s", id)
		}
	})
}

func TestEndSpanRecordsStatus(t *testing.T) {
	exporter, tp := newTestProvider(t)

	_, ok := StartSpan(context.Background(), "borrow", "ok")
	EndSpan(ok, nil)

	_, failed := StartSpan(context.Background(), "borrow", "failed")
	EndSpan(failed, errors.New("deadlock"))

	if err := tp.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush失败: %v", err)
	}

	statuses := map[string]codes.Code{}
	for _, s := range exporter.GetSpans() {
		statuses[s.Name] = s.Status.Code
	}
	if statuses["ok"] != codes.Ok {
		t.Errorf("成功Span状态错误: %v", statuses["ok"])
	}
	if statuses["failed"] != codes.Error {
		t.Errorf("失败Span状态错误: %v", statuses["failed"])
	}
}
