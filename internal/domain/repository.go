package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ScheduleRepository persists day schedules. SaveDaySchedule is
// all-or-nothing: the schedule row and all three block templates land
// in one transaction or not at all.
type ScheduleRepository interface {
	SaveDaySchedule(ctx context.Context, schedule *DaySchedule) (*SavedDaySchedule, error)
	GetDaySchedule(ctx context.Context, userID uuid.UUID, day time.Weekday) (*SavedDaySchedule, error)
}

// SessionContext is what the capacity check needs about a session: the
// owning block's range and the durations already booked against it.
type SessionContext struct {
	SessionID uuid.UUID
	UserID    uuid.UUID
	Block     EnergyBlock
	Tasks     []Task
}

// TaskRepository persists tasks and resolves their owning session.
type TaskRepository interface {
	CreateTask(ctx context.Context, task *Task) error
	GetTask(ctx context.Context, taskID uuid.UUID) (*Task, error)
	UpdateTask(ctx context.Context, task *Task) error
	DeleteTask(ctx context.Context, taskID uuid.UUID) error
	ListTasksBySession(ctx context.Context, sessionID uuid.UUID) ([]Task, error)
	GetSessionContext(ctx context.Context, sessionID uuid.UUID) (*SessionContext, error)
	GetSessionContextForTask(ctx context.Context, taskID uuid.UUID) (*SessionContext, error)
}

// HistoryReader feeds the velocity analyzer with completed-task
// history.
type HistoryReader interface {
	CompletedTasksSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]CompletedTask, error)
}
