package insights

import (
	"context"

	"github.com/nagomi-dev/dayflow/internal/client"
	"github.com/nagomi-dev/dayflow/internal/domain"
)

// Status is the lifecycle of one insights request. A request is born
// Idle, moves to Fetching when work starts, and ends Succeeded or
// Failed; there is no retry of the external call within one request.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusFetching  Status = "fetching"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// NarrativeSource names which path produced the narrative text.
const (
	NarrativeSourceExternal = "external"
	NarrativeSourceFallback = "fallback"
)

// NarrativeGenerator is the external text-generation collaborator. A
// nil generator, an error, a timeout, or an exhausted budget all mean
// the same thing: take the rule-based fallback.
type NarrativeGenerator interface {
	GenerateNarrative(ctx context.Context, req *client.NarrativeRequest) (*client.NarrativeResponse, error)
}

// Result is what a finished insights request carries.
type Result struct {
	Status          Status              `json:"status"`
	Suggestions     []string            `json:"suggestions"`
	Proposals       []domain.Proposal   `json:"proposals"`
	Motivation      string              `json:"motivation"`
	HourlyStats     []domain.HourlyStat `json:"hourly_stats"`
	NarrativeSource string              `json:"narrative_source"`
}
