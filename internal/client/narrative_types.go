package client

import (
	"github.com/nagomi-dev/dayflow/internal/domain"
)

// NarrativeRequest carries the analytics the narrative service turns
// into prose. The service adds no data of its own; everything it says
// must be derivable from this payload.
type NarrativeRequest struct {
	HourlyStats     []domain.HourlyStat `json:"hourly_stats"`
	Proposals       []domain.Proposal   `json:"proposals"`
	WindowCompleted int                 `json:"window_completed"`
	RecentCompleted int                 `json:"recent_completed"`
}

type NarrativeResponse struct {
	Motivation  string   `json:"motivation"`
	Suggestions []string `json:"suggestions"`
}
