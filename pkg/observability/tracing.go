package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const traceScope = "openclaw.slack"

// Span 名称
const (
	SpanScheduleMessage = "openclaw.slack.schedule_message"
	SpanFunctionExecute = "openclaw.function.execute"
)

// Span 属性
const (
	AttrAccountID    = "openclaw.slack.account_id"
	AttrPostAt       = "openclaw.slack.post_at"
	AttrFunctionName = "openclaw.function.name"
)

// StartSpan 使用全局 TracerProvider 开启 span
// 未配置 provider 时为 no-op
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(traceScope).Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan 记录结果并结束 span
func EndSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
