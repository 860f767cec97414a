package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const scheduleMeterName = "dayflow.schedule"

type ScheduleMetrics struct {
	schedulesSaved    metric.Int64Counter
	blocksResolved    metric.Int64Counter
	taskMutations     metric.Int64Counter
	insightsRequests  metric.Int64Counter
	insightsDuration  metric.Float64Histogram
	narrativeDuration metric.Float64Histogram
}

func NewScheduleMetrics() (*ScheduleMetrics, error) {
	meter := otel.Meter(scheduleMeterName)

	schedulesSaved, err := meter.Int64Counter(
		"dayflow_schedules_saved_total",
		metric.WithDescription("Total number of day schedules persisted"),
		metric.WithUnit("{schedule}"),
	)
	if err != nil {
		return nil, err
	}

	blocksResolved, err := meter.Int64Counter(
		"dayflow_block_resolutions_total",
		metric.WithDescription("Overlap resolutions by mode and outcome"),
		metric.WithUnit("{resolution}"),
	)
	if err != nil {
		return nil, err
	}

	taskMutations, err := meter.Int64Counter(
		"dayflow_task_mutations_total",
		metric.WithDescription("Task create/update/delete operations by outcome"),
		metric.WithUnit("{mutation}"),
	)
	if err != nil {
		return nil, err
	}

	insightsRequests, err := meter.Int64Counter(
		"dayflow_insights_requests_total",
		metric.WithDescription("Insights requests by narrative source"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	insightsDuration, err := meter.Float64Histogram(
		"dayflow_insights_duration_seconds",
		metric.WithDescription("Full insights request duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
		),
	)
	if err != nil {
		return nil, err
	}

	narrativeDuration, err := meter.Float64Histogram(
		"dayflow_narrative_call_duration_seconds",
		metric.WithDescription("External narrative call duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
		),
	)
	if err != nil {
		return nil, err
	}

	return &ScheduleMetrics{
		schedulesSaved:    schedulesSaved,
		blocksResolved:    blocksResolved,
		taskMutations:     taskMutations,
		insightsRequests:  insightsRequests,
		insightsDuration:  insightsDuration,
		narrativeDuration: narrativeDuration,
	}, nil
}

func (m *ScheduleMetrics) RecordScheduleSaved(ctx context.Context, day string) {
	m.schedulesSaved.Add(ctx, 1, metric.WithAttributes(
		attribute.String("day", day),
	))
}

func (m *ScheduleMetrics) RecordBlockResolution(ctx context.Context, mode, outcome string) {
	m.blocksResolved.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("outcome", outcome),
	))
}

func (m *ScheduleMetrics) RecordTaskMutation(ctx context.Context, operation, outcome string) {
	m.taskMutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func (m *ScheduleMetrics) RecordInsightsRequest(ctx context.Context, narrativeSource string) {
	m.insightsRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("narrative_source", narrativeSource),
	))
}

func (m *ScheduleMetrics) RecordInsightsDuration(ctx context.Context, duration time.Duration) {
	m.insightsDuration.Record(ctx, duration.Seconds())
}

func (m *ScheduleMetrics) RecordNarrativeDuration(ctx context.Context, source string, duration time.Duration) {
	m.narrativeDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("source", source),
	))
}
