package insights

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nagomi-dev/dayflow/internal/client"
	"github.com/nagomi-dev/dayflow/internal/domain"
	"github.com/nagomi-dev/dayflow/internal/infra/narrativelimit"
	"github.com/nagomi-dev/dayflow/internal/observability/metrics"
	"github.com/nagomi-dev/dayflow/internal/observability/tracing"
	"github.com/nagomi-dev/dayflow/internal/service/proposal"
	"github.com/nagomi-dev/dayflow/internal/service/velocity"
)

const defaultNarrativeTimeout = 5 * time.Second

// Service orchestrates analyzer, proposal generator and the optional
// narrative collaborator. The analyzer is local and deterministic; the
// only errors that fail a request are storage errors from its history
// read. Narrative failures never surface — they select the fallback.
type Service struct {
	analyzer         *velocity.Analyzer
	generator        *proposal.Generator
	narrative        NarrativeGenerator
	budget           narrativelimit.Budget
	recorder         domain.InsightRecorder
	scheduleMetrics  *metrics.ScheduleMetrics
	narrativeTimeout time.Duration
}

func NewService(
	analyzer *velocity.Analyzer,
	generator *proposal.Generator,
	narrative NarrativeGenerator,
	budget narrativelimit.Budget,
	recorder domain.InsightRecorder,
	scheduleMetrics *metrics.ScheduleMetrics,
	narrativeTimeout time.Duration,
) *Service {
	if budget == nil {
		budget = narrativelimit.NewUnlimited()
	}
	if narrativeTimeout <= 0 {
		narrativeTimeout = defaultNarrativeTimeout
	}
	return &Service{
		analyzer:         analyzer,
		generator:        generator,
		narrative:        narrative,
		budget:           budget,
		recorder:         recorder,
		scheduleMetrics:  scheduleMetrics,
		narrativeTimeout: narrativeTimeout,
	}
}

// Fetch runs one full insights request for the user. On return the
// result status is Succeeded or Failed; Failed only ever means the
// underlying history read failed.
func (s *Service) Fetch(ctx context.Context, userID uuid.UUID) (*Result, error) {
	started := time.Now()

	result := &Result{Status: StatusFetching}

	analyzeCtx, analyzeSpan := tracing.StartAnalyzeSpan(ctx, userID.String(), velocity.DefaultLookbackDays)
	stats, err := s.analyzer.Analyze(analyzeCtx, userID)
	analyzeSpan.End()
	if err != nil {
		slog.ErrorContext(ctx, "failed to analyze completion history",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
		result.Status = StatusFailed
		return result, err
	}

	proposals := s.generator.Generate(stats)

	motivation, suggestions, source := s.narrate(ctx, userID, stats, proposals)

	result.Status = StatusSucceeded
	result.Suggestions = suggestions
	result.Proposals = proposals
	result.Motivation = motivation
	result.HourlyStats = stats.Hours[:]
	result.NarrativeSource = source

	duration := time.Since(started)
	if s.scheduleMetrics != nil {
		s.scheduleMetrics.RecordInsightsRequest(ctx, source)
		s.scheduleMetrics.RecordInsightsDuration(ctx, duration)
	}

	s.record(ctx, userID, stats, proposals, source, duration)

	return result, nil
}

// narrate returns motivation, suggestions and the source that produced
// them. The external call is bounded by the narrative timeout and the
// per-user budget; every failure path lands on the fallback.
func (s *Service) narrate(
	ctx context.Context,
	userID uuid.UUID,
	stats *velocity.Result,
	proposals []domain.Proposal,
) (string, []string, string) {
	if s.narrative == nil {
		motivation, suggestions := fallbackNarrative(stats, proposals)
		return motivation, suggestions, NarrativeSourceFallback
	}

	allowed, err := s.budget.Take(ctx, userID.String(), time.Now())
	switch {
	case err != nil:
		slog.WarnContext(ctx, "narrative budget check failed, using fallback",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
		motivation, suggestions := fallbackNarrative(stats, proposals)
		return motivation, suggestions, NarrativeSourceFallback
	case !allowed:
		slog.DebugContext(ctx, "narrative budget exhausted, using fallback",
			slog.String("user_id", userID.String()),
		)
		motivation, suggestions := fallbackNarrative(stats, proposals)
		return motivation, suggestions, NarrativeSourceFallback
	}

	narrativeCtx, cancel := context.WithTimeout(ctx, s.narrativeTimeout)
	defer cancel()

	narrativeCtx, span := tracing.StartNarrativeSpan(narrativeCtx, userID.String())
	callStart := time.Now()

	resp, err := s.narrative.GenerateNarrative(narrativeCtx, &client.NarrativeRequest{
		HourlyStats:     stats.Hours[:],
		Proposals:       proposals,
		WindowCompleted: stats.WindowCompleted,
		RecentCompleted: stats.RecentCompleted,
	})

	callDuration := time.Since(callStart)
	source := NarrativeSourceExternal
	if err != nil {
		source = NarrativeSourceFallback
	}
	tracing.RecordNarrativeResult(span, source, err)
	span.End()

	if s.scheduleMetrics != nil {
		s.scheduleMetrics.RecordNarrativeDuration(ctx, source, callDuration)
	}

	if err != nil {
		slog.WarnContext(ctx, "narrative generation failed, using fallback",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
		motivation, suggestions := fallbackNarrative(stats, proposals)
		return motivation, suggestions, NarrativeSourceFallback
	}

	return resp.Motivation, resp.Suggestions, NarrativeSourceExternal
}

func (s *Service) record(
	ctx context.Context,
	userID uuid.UUID,
	stats *velocity.Result,
	proposals []domain.Proposal,
	source string,
	duration time.Duration,
) {
	if s.recorder == nil {
		return
	}

	record := domain.InsightRecord{
		UserID:          userID.String(),
		RequestedAt:     time.Now().UTC(),
		SampleCount:     stats.WindowCompleted,
		ProposalEmitted: len(proposals) > 0,
		NarrativeSource: source,
		Duration:        duration,
	}
	if stats.FastestHour != nil {
		record.FastestHour = *stats.FastestHour
		record.FastestHourSet = true
	}
	if stats.HighestThroughputHour != nil {
		record.ThroughputHour = *stats.HighestThroughputHour
	}

	if err := s.recorder.RecordInsight(ctx, record); err != nil {
		slog.WarnContext(ctx, "failed to record insight outcome",
			slog.String("error", err.Error()),
		)
	}
}
