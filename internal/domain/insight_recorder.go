package domain

import (
	"context"
	"time"
)

// InsightRecord is one measured insights request, written out-of-band
// for offline analysis of recommendation quality.
type InsightRecord struct {
	UserID          string
	RequestedAt     time.Time
	FastestHour     int
	FastestHourSet  bool
	ThroughputHour  int
	SampleCount     int
	ProposalEmitted bool
	NarrativeSource string
	Duration        time.Duration
}

// InsightRecorder records insights-request outcomes. Implementations
// must never fail the request path; write errors are logged and
// swallowed.
type InsightRecorder interface {
	RecordInsight(ctx context.Context, record InsightRecord) error
	Close() error
}
