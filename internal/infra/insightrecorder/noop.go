package insightrecorder

import (
	"context"

	"github.com/nagomi-dev/dayflow/internal/domain"
)

type noopRecorder struct{}

func NewNoopRecorder() domain.InsightRecorder {
	return &noopRecorder{}
}

func (n *noopRecorder) RecordInsight(_ context.Context, _ domain.InsightRecord) error {
	return nil
}

func (n *noopRecorder) Close() error {
	return nil
}
