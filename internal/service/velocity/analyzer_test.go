package velocity

import (
	"testing"
	"time"

	"github.com/nagomi-dev/dayflow/internal/domain"
)

func completedAt(t *testing.T, hour int, duration int, when time.Time) domain.CompletedTask {
	t.Helper()
	return domain.CompletedTask{
		BlockStart:      domain.TimeOfDay(hour * 60),
		DurationMinutes: duration,
		CompletedAt:     when,
	}
}

func TestAggregateSampleGate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	recentSince := now.AddDate(0, 0, -7)

	// Hour 14 has the lower average but only two samples, below the
	// gate of three; hour 9 is both fastest-eligible and the
	// throughput leader.
	tasks := []domain.CompletedTask{
		completedAt(t, 9, 10, now.AddDate(0, 0, -1)),
		completedAt(t, 9, 10, now.AddDate(0, 0, -2)),
		completedAt(t, 9, 10, now.AddDate(0, 0, -3)),
		completedAt(t, 14, 5, now.AddDate(0, 0, -1)),
		completedAt(t, 14, 5, now.AddDate(0, 0, -10)),
	}

	result := Aggregate(tasks, recentSince)

	if result.FastestHour == nil || *result.FastestHour != 9 {
		t.Errorf("fastest hour = %v, want 9", result.FastestHour)
	}
	if result.HighestThroughputHour == nil || *result.HighestThroughputHour != 9 {
		t.Errorf("highest throughput hour = %v, want 9", result.HighestThroughputHour)
	}
	if result.Hours[9].CompletedCount != 3 || result.Hours[9].TotalDurationMinutes != 30 {
		t.Errorf("hour 9 stat = %+v", result.Hours[9])
	}
	if result.Hours[14].CompletedCount != 2 || result.Hours[14].TotalDurationMinutes != 10 {
		t.Errorf("hour 14 stat = %+v", result.Hours[14])
	}
	if result.WindowCompleted != 5 {
		t.Errorf("window completed = %d, want 5", result.WindowCompleted)
	}
	if result.RecentCompleted != 4 {
		t.Errorf("recent completed = %d, want 4", result.RecentCompleted)
	}
}

func TestAggregateNoHourMeetsGate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tasks := []domain.CompletedTask{
		completedAt(t, 9, 10, now),
		completedAt(t, 9, 10, now),
		completedAt(t, 14, 5, now),
	}

	result := Aggregate(tasks, now.AddDate(0, 0, -7))

	if result.FastestHour != nil {
		t.Errorf("fastest hour = %d, want undefined", *result.FastestHour)
	}
	if result.HighestThroughputHour == nil || *result.HighestThroughputHour != 9 {
		t.Errorf("highest throughput hour = %v, want 9", result.HighestThroughputHour)
	}
}

func TestAggregateEmptyHistory(t *testing.T) {
	result := Aggregate(nil, time.Now())

	if result.FastestHour != nil || result.HighestThroughputHour != nil {
		t.Errorf("expected both derived hours undefined, got %v / %v",
			result.FastestHour, result.HighestThroughputHour)
	}
	for h, stat := range result.Hours {
		if stat.Hour != h {
			t.Fatalf("bucket %d labelled %d", h, stat.Hour)
		}
		if stat.CompletedCount != 0 || stat.TotalDurationMinutes != 0 {
			t.Fatalf("bucket %d not empty: %+v", h, stat)
		}
	}
}

func TestAggregatePicksLowestAverage(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	var tasks []domain.CompletedTask
	for range 3 {
		tasks = append(tasks, completedAt(t, 8, 40, now))
		tasks = append(tasks, completedAt(t, 16, 15, now))
	}

	result := Aggregate(tasks, now.AddDate(0, 0, -7))

	if result.FastestHour == nil || *result.FastestHour != 16 {
		t.Errorf("fastest hour = %v, want 16", result.FastestHour)
	}
	// Throughput tie: the earlier hour wins.
	if result.HighestThroughputHour == nil || *result.HighestThroughputHour != 8 {
		t.Errorf("highest throughput hour = %v, want 8", result.HighestThroughputHour)
	}
}
