package schedule

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nagomi-dev/dayflow/internal/domain"
	"github.com/nagomi-dev/dayflow/internal/observability/metrics"
	"github.com/nagomi-dev/dayflow/internal/observability/tracing"
	"github.com/nagomi-dev/dayflow/internal/service/resolve"
	"github.com/nagomi-dev/dayflow/internal/service/validate"
)

// Service owns every schedule and task mutation. All writes follow the
// same shape: resolve overlaps, validate the resulting snapshot, then
// persist the whole triple in one transaction. A failed validation
// never leaves partial state behind.
type Service struct {
	schedules       domain.ScheduleRepository
	tasks           domain.TaskRepository
	resolver        *resolve.Resolver
	validator       *validate.Validator
	scheduleMetrics *metrics.ScheduleMetrics
}

func NewService(
	schedules domain.ScheduleRepository,
	tasks domain.TaskRepository,
	resolver *resolve.Resolver,
	validator *validate.Validator,
	scheduleMetrics *metrics.ScheduleMetrics,
) *Service {
	return &Service{
		schedules:       schedules,
		tasks:           tasks,
		resolver:        resolver,
		validator:       validator,
		scheduleMetrics: scheduleMetrics,
	}
}

// SaveDaySchedule re-chains the candidate triple, validates the result
// and persists it. The stored snapshot is always overlap-free.
func (s *Service) SaveDaySchedule(ctx context.Context, candidate *domain.DaySchedule) (*domain.SavedDaySchedule, error) {
	resolved, err := s.resolveRechain(ctx, candidate.Blocks)
	if err != nil {
		return nil, err
	}

	schedule := *candidate
	schedule.Blocks = resolved

	if err := s.validator.ValidateSchedule(&schedule); err != nil {
		return nil, err
	}

	saved, err := s.schedules.SaveDaySchedule(ctx, &schedule)
	if err != nil {
		return nil, err
	}

	if s.scheduleMetrics != nil {
		s.scheduleMetrics.RecordScheduleSaved(ctx, schedule.Day.String())
	}

	slog.InfoContext(ctx, "day schedule saved",
		slog.String("user_id", schedule.UserID.String()),
		slog.String("day", schedule.Day.String()),
	)

	return saved, nil
}

// GetDaySchedule returns the stored snapshot for the (user, day) pair.
func (s *Service) GetDaySchedule(ctx context.Context, userID uuid.UUID, day time.Weekday) (*domain.SavedDaySchedule, error) {
	return s.schedules.GetDaySchedule(ctx, userID, day)
}

// EditBlock replaces one block's range, propagates the edit through the
// rest of the triple, validates and persists. The stored snapshot is
// always overlap-free, no matter where the edit lands.
func (s *Service) EditBlock(ctx context.Context, userID uuid.UUID, day time.Weekday, label domain.EnergyLabel, r domain.TimeRange) (*domain.SavedDaySchedule, error) {
	saved, err := s.schedules.GetDaySchedule(ctx, userID, day)
	if err != nil {
		return nil, err
	}

	blocks := saved.Schedule.Blocks
	blocks.SetRange(label, r)

	resolveCtx, span := tracing.StartResolveSpan(ctx, "propagate")
	resolved, err := s.resolver.PropagateEdit(blocks, label)
	tracing.RecordResolveResult(span, resolved != blocks, err)
	span.End()

	outcome := "resolved"
	if err != nil {
		outcome = "unresolvable"
	}
	if s.scheduleMetrics != nil {
		s.scheduleMetrics.RecordBlockResolution(resolveCtx, "propagate", outcome)
	}
	if err != nil {
		return nil, err
	}

	schedule := saved.Schedule
	schedule.Blocks = resolved

	if err := s.validator.ValidateSchedule(&schedule); err != nil {
		return nil, err
	}

	return s.schedules.SaveDaySchedule(ctx, &schedule)
}

// ApplyProposal moves the high-energy block to the proposed target and
// re-chains the rest of the day around it. The proposal itself is
// ephemeral; accepting it is just another schedule save.
func (s *Service) ApplyProposal(ctx context.Context, userID uuid.UUID, day time.Weekday, p domain.Proposal) (*domain.SavedDaySchedule, error) {
	if p.Kind != domain.ProposalShiftHighBlock {
		return nil, &domain.ParseError{Input: p.Kind, Reason: "unknown proposal type"}
	}

	saved, err := s.schedules.GetDaySchedule(ctx, userID, day)
	if err != nil {
		return nil, err
	}

	schedule := saved.Schedule
	schedule.Blocks.SetRange(domain.EnergyHigh, p.Target)

	resolved, err := s.resolveRechain(ctx, schedule.Blocks)
	if err != nil {
		return nil, err
	}
	schedule.Blocks = resolved

	if err := s.validator.ValidateSchedule(&schedule); err != nil {
		return nil, err
	}

	saved, err = s.schedules.SaveDaySchedule(ctx, &schedule)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "proposal applied",
		slog.String("user_id", userID.String()),
		slog.String("day", day.String()),
		slog.String("target", p.Target.Start.Clock()+"-"+p.Target.End.Clock()),
	)

	return saved, nil
}

// CreateTask books a new task against the session's block. The capacity
// check counts active tasks only; completed and skipped tasks release
// their minutes.
func (s *Service) CreateTask(ctx context.Context, userID, sessionID uuid.UUID, name, description string, durationMinutes int) (*domain.Task, error) {
	sessionCtx, err := s.tasks.GetSessionContext(ctx, sessionID)
	if err != nil {
		s.recordTaskMutation(ctx, "create", "error")
		return nil, err
	}
	if sessionCtx.UserID != userID {
		s.recordTaskMutation(ctx, "create", "error")
		return nil, domain.ErrSessionNotFound
	}

	durations := activeDurations(sessionCtx.Tasks, uuid.Nil)
	durations = append(durations, durationMinutes)
	if err := s.validator.ValidateCapacity(sessionCtx.Block, durations); err != nil {
		s.recordTaskMutation(ctx, "create", "rejected")
		return nil, err
	}

	now := time.Now().UTC()
	task := &domain.Task{
		ID:              uuid.New(),
		SessionID:       sessionID,
		Name:            name,
		Description:     description,
		DurationMinutes: durationMinutes,
		Status:          domain.TaskActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.tasks.CreateTask(ctx, task); err != nil {
		s.recordTaskMutation(ctx, "create", "error")
		return nil, err
	}

	s.recordTaskMutation(ctx, "create", "ok")
	return task, nil
}

// ListTasks returns the session's tasks after an ownership check.
func (s *Service) ListTasks(ctx context.Context, userID, sessionID uuid.UUID) ([]domain.Task, error) {
	sessionCtx, err := s.tasks.GetSessionContext(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sessionCtx.UserID != userID {
		return nil, domain.ErrSessionNotFound
	}
	return sessionCtx.Tasks, nil
}

// UpdateTask applies a partial task edit. Growing a task's duration is
// re-validated against the block exactly like creating it; shrinking or
// status changes always pass.
func (s *Service) UpdateTask(ctx context.Context, userID, taskID uuid.UUID, update TaskUpdate) (*domain.Task, error) {
	sessionCtx, err := s.tasks.GetSessionContextForTask(ctx, taskID)
	if err != nil {
		s.recordTaskMutation(ctx, "update", "error")
		return nil, err
	}
	if sessionCtx.UserID != userID {
		s.recordTaskMutation(ctx, "update", "error")
		return nil, domain.ErrTaskNotFound
	}

	task, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		s.recordTaskMutation(ctx, "update", "error")
		return nil, err
	}

	if update.empty() {
		return task, nil
	}

	if update.Name != nil {
		task.Name = *update.Name
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Status != nil {
		task.Status = *update.Status
	}
	if update.DurationMinutes != nil {
		task.DurationMinutes = *update.DurationMinutes

		if task.Status == domain.TaskActive {
			durations := activeDurations(sessionCtx.Tasks, taskID)
			durations = append(durations, task.DurationMinutes)
			if err := s.validator.ValidateCapacity(sessionCtx.Block, durations); err != nil {
				s.recordTaskMutation(ctx, "update", "rejected")
				return nil, err
			}
		}
	}

	task.UpdatedAt = time.Now().UTC()

	if err := s.tasks.UpdateTask(ctx, task); err != nil {
		s.recordTaskMutation(ctx, "update", "error")
		return nil, err
	}

	s.recordTaskMutation(ctx, "update", "ok")
	return task, nil
}

// DeleteTask removes a task after an ownership check. Deleting releases
// the task's minutes back to the block immediately.
func (s *Service) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	sessionCtx, err := s.tasks.GetSessionContextForTask(ctx, taskID)
	if err != nil {
		s.recordTaskMutation(ctx, "delete", "error")
		return err
	}
	if sessionCtx.UserID != userID {
		s.recordTaskMutation(ctx, "delete", "error")
		return domain.ErrTaskNotFound
	}

	if err := s.tasks.DeleteTask(ctx, taskID); err != nil {
		s.recordTaskMutation(ctx, "delete", "error")
		return err
	}

	s.recordTaskMutation(ctx, "delete", "ok")
	return nil
}

func (s *Service) resolveRechain(ctx context.Context, blocks domain.BlockTriple) (domain.BlockTriple, error) {
	resolveCtx, span := tracing.StartResolveSpan(ctx, "rechain")
	resolved, err := s.resolver.Rechain(blocks)
	tracing.RecordResolveResult(span, resolved != blocks, err)
	span.End()

	outcome := "resolved"
	if err != nil {
		outcome = "unresolvable"
	}
	if s.scheduleMetrics != nil {
		s.scheduleMetrics.RecordBlockResolution(resolveCtx, "rechain", outcome)
	}

	return resolved, err
}

func (s *Service) recordTaskMutation(ctx context.Context, operation, outcome string) {
	if s.scheduleMetrics != nil {
		s.scheduleMetrics.RecordTaskMutation(ctx, operation, outcome)
	}
}

// activeDurations collects the durations of active tasks, skipping the
// task being edited so its new duration can be counted instead.
func activeDurations(tasks []domain.Task, exclude uuid.UUID) []int {
	durations := make([]int, 0, len(tasks))
	for _, t := range tasks {
		if t.ID == exclude || t.Status != domain.TaskActive {
			continue
		}
		durations = append(durations, t.DurationMinutes)
	}
	return durations
}
