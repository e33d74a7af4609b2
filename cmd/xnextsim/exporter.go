package main

import (
	"context"
	"log/slog"
	"maps"
	"sync"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/omeyang/xapm/pkg/observability/xlog"
)

// logExporter 把结束的 span 写入日志，并按名称计数。
type logExporter struct {
	logger xlog.Logger

	mu     sync.Mutex
	counts map[string]int
	errors int
}

func newLogExporter(logger xlog.Logger) *logExporter {
	return &logExporter{logger: logger, counts: make(map[string]int)}
}

func (e *logExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		sc := span.SpanContext()
		e.logger.Info(ctx, "span finished",
			slog.String("span", span.Name()),
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
			slog.String("status", span.Status().Code.String()),
			xlog.Duration(span.EndTime().Sub(span.StartTime())),
		)

		e.mu.Lock()
		e.counts[span.Name()]++
		if span.Status().Description != "" {
			e.errors++
		}
		e.mu.Unlock()
	}
	return nil
}

func (e *logExporter) Shutdown(context.Context) error {
	return nil
}

// Counts 返回每个 span 名称的计数副本。
func (e *logExporter) Counts() map[string]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return maps.Clone(e.counts)
}

// Errors 返回失败 span 的数量。
func (e *logExporter) Errors() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errors
}

var _ sdktrace.SpanExporter = (*logExporter)(nil)
