package schedule

import (
	"github.com/nagomi-dev/dayflow/internal/domain"
)

// TaskUpdate carries the fields a task edit may change. Nil fields are
// left untouched; a non-nil duration is re-validated against the owning
// block's remaining capacity before anything is written.
type TaskUpdate struct {
	Name            *string
	Description     *string
	DurationMinutes *int
	Status          *domain.TaskStatus
}

func (u TaskUpdate) empty() bool {
	return u.Name == nil && u.Description == nil && u.DurationMinutes == nil && u.Status == nil
}
