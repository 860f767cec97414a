package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const insightsTracerName = "github.com/nagomi-dev/dayflow/internal/service/insights"

func InsightsTracer() trace.Tracer {
	return otel.Tracer(insightsTracerName)
}

func StartAnalyzeSpan(ctx context.Context, userID string, lookbackDays int) (context.Context, trace.Span) {
	return InsightsTracer().Start(ctx, "insights.analyze",
		trace.WithAttributes(
			attribute.String("user_id", userID),
			attribute.Int("lookback_days", lookbackDays),
		),
	)
}

func StartNarrativeSpan(ctx context.Context, userID string) (context.Context, trace.Span) {
	return InsightsTracer().Start(ctx, "insights.narrative",
		trace.WithAttributes(
			attribute.String("user_id", userID),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func StartResolveSpan(ctx context.Context, mode string) (context.Context, trace.Span) {
	return InsightsTracer().Start(ctx, "schedule.resolve",
		trace.WithAttributes(
			attribute.String("mode", mode),
		),
	)
}

func RecordResolveResult(span trace.Span, changed bool, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetAttributes(attribute.Bool("resolve.changed", changed))
	span.SetStatus(codes.Ok, "")
}

func RecordNarrativeResult(span trace.Span, source string, err error) {
	span.SetAttributes(attribute.String("narrative.source", source))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
