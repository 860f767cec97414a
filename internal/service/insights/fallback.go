package insights

import (
	"fmt"

	"github.com/nagomi-dev/dayflow/internal/domain"
	"github.com/nagomi-dev/dayflow/internal/service/velocity"
)

// fallbackNarrative builds the deterministic rule-based narrative from
// the same data the analyzer already computed. It always returns a
// non-empty motivation and at least one suggestion, regardless of how
// thin the history is.
func fallbackNarrative(result *velocity.Result, proposals []domain.Proposal) (string, []string) {
	var suggestions []string

	if result.FastestHour != nil {
		stat := result.Hours[*result.FastestHour]
		suggestions = append(suggestions, fmt.Sprintf(
			"Your quickest completions land in the %02d:00 hour, averaging %.0f minutes per task.",
			stat.Hour, stat.AverageMinutes(),
		))
	}

	if result.HighestThroughputHour != nil {
		stat := result.Hours[*result.HighestThroughputHour]
		suggestions = append(suggestions, fmt.Sprintf(
			"You finish the most tasks in the %02d:00 hour (%d completed in the last %d days).",
			stat.Hour, stat.CompletedCount, velocity.DefaultLookbackDays,
		))
	}

	for _, p := range proposals {
		suggestions = append(suggestions, p.Rationale)
	}

	if len(suggestions) == 0 {
		suggestions = append(suggestions,
			"Not enough completed tasks yet to spot a pattern. Finish a few more tasks and check back.",
		)
	}

	return fallbackMotivation(result), suggestions
}

func fallbackMotivation(result *velocity.Result) string {
	switch {
	case result.RecentCompleted >= 10:
		return fmt.Sprintf("Strong week: %d tasks completed in the last %d days. Keep the streak going.",
			result.RecentCompleted, velocity.DefaultRecentDays)
	case result.RecentCompleted > 0:
		return fmt.Sprintf("You completed %d tasks in the last %d days. Small steps add up.",
			result.RecentCompleted, velocity.DefaultRecentDays)
	case result.WindowCompleted > 0:
		return "It has been a quiet week. Pick one small task from your high-energy block to get moving again."
	default:
		return "Every schedule starts empty. Add a task to your next block and complete it today."
	}
}
