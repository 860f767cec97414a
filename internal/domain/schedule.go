package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DaySchedule is the full snapshot of one (user, day-of-week) schedule:
// wake/sleep boundaries plus the block triple. Services take and return
// whole snapshots; persistence writes all three blocks or none.
type DaySchedule struct {
	UserID    uuid.UUID
	Day       time.Weekday
	WakeTime  TimeOfDay
	SleepTime TimeOfDay
	Blocks    BlockTriple
}

// SavedDaySchedule is a DaySchedule joined with its persisted
// identifiers.
type SavedDaySchedule struct {
	Schedule   DaySchedule
	ScheduleID uuid.UUID
	SessionIDs map[EnergyLabel]uuid.UUID
}

// ParseDayOfWeek parses a lowercase English day name.
func ParseDayOfWeek(s string) (time.Weekday, error) {
	days := map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}
	day, ok := days[strings.ToLower(s)]
	if !ok {
		return 0, &ParseError{Input: s, Reason: "unknown day of week"}
	}
	return day, nil
}

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskActive    TaskStatus = "active"
	TaskCompleted TaskStatus = "completed"
	TaskSkipped   TaskStatus = "skipped"
)

func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case TaskActive, TaskCompleted, TaskSkipped:
		return TaskStatus(s), nil
	}
	return "", &ParseError{Input: s, Reason: "unknown task status"}
}

func (s TaskStatus) String() string {
	return string(s)
}

// Task is owned exclusively by one session (block). Duration mutations
// are re-validated against the owning block's remaining capacity.
type Task struct {
	ID              uuid.UUID
	SessionID       uuid.UUID
	Name            string
	Description     string
	DurationMinutes int
	Status          TaskStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HourlyStat aggregates completed tasks for one hour of day. Derived
// per analytics request, never persisted.
type HourlyStat struct {
	Hour                 int `json:"hour"`
	CompletedCount       int `json:"completed_count"`
	TotalDurationMinutes int `json:"total_duration_minutes"`
}

// AverageMinutes is the mean completion duration for the hour. Zero
// when the hour has no samples.
func (s HourlyStat) AverageMinutes() float64 {
	if s.CompletedCount == 0 {
		return 0
	}
	return float64(s.TotalDurationMinutes) / float64(s.CompletedCount)
}

// ProposalShiftHighBlock is the only proposal kind emitted today.
const ProposalShiftHighBlock = "shift_high_block"

// Proposal is an ephemeral, not-yet-applied schedule-change
// recommendation produced per analytics request.
type Proposal struct {
	Kind      string    `json:"type"`
	Target    TimeRange `json:"target"`
	Rationale string    `json:"rationale"`
}

// CompletedTask is one completed task joined with the configured start
// time of its owning block, as read from history. Every task in a
// session inherits that session's block-start hour.
type CompletedTask struct {
	BlockStart      TimeOfDay
	DurationMinutes int
	CompletedAt     time.Time
}
