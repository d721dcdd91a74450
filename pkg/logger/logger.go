// Package logger 基于log/slog的结构化日志
//
// 日志记录时自动从ctx取出trace_id/span_id,需要使用XxxContext系列方法。
package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/xiebiao/library/pkg/tracing"
)

// New 创建Logger;format为json或text,level为debug/info/warn/error
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(&traceHandler{Handler: h})
}

// Setup 创建Logger并设为slog默认Logger
func Setup(w io.Writer, level, format string) *slog.Logger {
	l := New(w, level, format)
	slog.SetDefault(l)
	return l
}

// ParseLevel 解析日志级别,无法识别时返回Info
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// traceHandler 附加链路信息
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if traceID := tracing.ExtractTraceID(ctx); traceID != "" {
		r.AddAttrs(
			slog.String("trace_id", traceID),
			slog.String("span_id", tracing.ExtractSpanID(ctx)),
		)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}
