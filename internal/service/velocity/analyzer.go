package velocity

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nagomi-dev/dayflow/internal/domain"
)

const (
	// MinFastestSamples gates the fastest-hour computation. Hours with
	// fewer completions are excluded entirely rather than treated as
	// zero, so a single outlier task cannot name an hour "fastest".
	MinFastestSamples = 3

	DefaultLookbackDays = 30
	DefaultRecentDays   = 7
)

// Result is one aggregation pass over a user's completed-task history:
// 24 hour-of-day buckets plus the two derived hours. A nil FastestHour
// means the sample gate filtered every hour and downstream consumers
// must treat the data as insufficient, not as an error.
type Result struct {
	Hours                 [24]domain.HourlyStat
	FastestHour           *int
	HighestThroughputHour *int
	WindowCompleted       int
	RecentCompleted       int
}

// Analyzer derives per-hour throughput and speed statistics from
// persisted task history.
type Analyzer struct {
	history      domain.HistoryReader
	lookbackDays int
	recentDays   int
}

func NewAnalyzer(history domain.HistoryReader, lookbackDays, recentDays int) *Analyzer {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	if recentDays <= 0 {
		recentDays = DefaultRecentDays
	}
	return &Analyzer{
		history:      history,
		lookbackDays: lookbackDays,
		recentDays:   recentDays,
	}
}

// Analyze reads the lookback window from history and aggregates it.
// The only failure is a storage error from the history read.
func (a *Analyzer) Analyze(ctx context.Context, userID uuid.UUID) (*Result, error) {
	now := time.Now().UTC()
	since := now.AddDate(0, 0, -a.lookbackDays)

	tasks, err := a.history.CompletedTasksSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	result := Aggregate(tasks, now.AddDate(0, 0, -a.recentDays))

	slog.DebugContext(ctx, "aggregated completion history",
		slog.String("user_id", userID.String()),
		slog.Int("window_completed", result.WindowCompleted),
		slog.Int("recent_completed", result.RecentCompleted),
		slog.Bool("fastest_hour_found", result.FastestHour != nil),
	)

	return &result, nil
}

// Aggregate buckets completed tasks by the hour their owning block
// starts. Pure; the analyzer's storage read is the only effect.
func Aggregate(tasks []domain.CompletedTask, recentSince time.Time) Result {
	var result Result
	for h := range result.Hours {
		result.Hours[h].Hour = h
	}

	for _, task := range tasks {
		stat := &result.Hours[task.BlockStart.Hour()]
		stat.CompletedCount++
		stat.TotalDurationMinutes += task.DurationMinutes

		result.WindowCompleted++
		if !task.CompletedAt.Before(recentSince) {
			result.RecentCompleted++
		}
	}

	for h := range result.Hours {
		stat := result.Hours[h]
		if stat.CompletedCount == 0 {
			continue
		}

		if result.HighestThroughputHour == nil ||
			stat.CompletedCount > result.Hours[*result.HighestThroughputHour].CompletedCount {
			hour := h
			result.HighestThroughputHour = &hour
		}

		if stat.CompletedCount < MinFastestSamples {
			continue
		}
		if result.FastestHour == nil ||
			stat.AverageMinutes() < result.Hours[*result.FastestHour].AverageMinutes() {
			hour := h
			result.FastestHour = &hour
		}
	}

	return result
}
