package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nagomi-dev/dayflow/internal/domain"
	"github.com/nagomi-dev/dayflow/internal/service/resolve"
	"github.com/nagomi-dev/dayflow/internal/service/validate"
)

type fakeScheduleRepo struct {
	saved map[string]*domain.SavedDaySchedule
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{saved: make(map[string]*domain.SavedDaySchedule)}
}

func scheduleKey(userID uuid.UUID, day time.Weekday) string {
	return userID.String() + "/" + day.String()
}

func (r *fakeScheduleRepo) SaveDaySchedule(_ context.Context, schedule *domain.DaySchedule) (*domain.SavedDaySchedule, error) {
	key := scheduleKey(schedule.UserID, schedule.Day)
	saved, ok := r.saved[key]
	if !ok {
		saved = &domain.SavedDaySchedule{
			ScheduleID: uuid.New(),
			SessionIDs: map[domain.EnergyLabel]uuid.UUID{
				domain.EnergyHigh:   uuid.New(),
				domain.EnergyMedium: uuid.New(),
				domain.EnergyLow:    uuid.New(),
			},
		}
	}
	saved.Schedule = *schedule
	r.saved[key] = saved
	return saved, nil
}

func (r *fakeScheduleRepo) GetDaySchedule(_ context.Context, userID uuid.UUID, day time.Weekday) (*domain.SavedDaySchedule, error) {
	saved, ok := r.saved[scheduleKey(userID, day)]
	if !ok {
		return nil, domain.ErrScheduleNotFound
	}
	return saved, nil
}

type fakeTaskRepo struct {
	sessions map[uuid.UUID]*domain.SessionContext
	tasks    map[uuid.UUID]*domain.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{
		sessions: make(map[uuid.UUID]*domain.SessionContext),
		tasks:    make(map[uuid.UUID]*domain.Task),
	}
}

func (r *fakeTaskRepo) CreateTask(_ context.Context, task *domain.Task) error {
	t := *task
	r.tasks[task.ID] = &t
	if session, ok := r.sessions[task.SessionID]; ok {
		session.Tasks = append(session.Tasks, t)
	}
	return nil
}

func (r *fakeTaskRepo) GetTask(_ context.Context, taskID uuid.UUID) (*domain.Task, error) {
	task, ok := r.tasks[taskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	t := *task
	return &t, nil
}

func (r *fakeTaskRepo) UpdateTask(_ context.Context, task *domain.Task) error {
	if _, ok := r.tasks[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	t := *task
	r.tasks[task.ID] = &t
	if session, ok := r.sessions[task.SessionID]; ok {
		for i := range session.Tasks {
			if session.Tasks[i].ID == task.ID {
				session.Tasks[i] = t
			}
		}
	}
	return nil
}

func (r *fakeTaskRepo) DeleteTask(_ context.Context, taskID uuid.UUID) error {
	task, ok := r.tasks[taskID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, taskID)
	if session, ok := r.sessions[task.SessionID]; ok {
		kept := session.Tasks[:0]
		for _, t := range session.Tasks {
			if t.ID != taskID {
				kept = append(kept, t)
			}
		}
		session.Tasks = kept
	}
	return nil
}

func (r *fakeTaskRepo) ListTasksBySession(_ context.Context, sessionID uuid.UUID) ([]domain.Task, error) {
	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session.Tasks, nil
}

func (r *fakeTaskRepo) GetSessionContext(_ context.Context, sessionID uuid.UUID) (*domain.SessionContext, error) {
	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (r *fakeTaskRepo) GetSessionContextForTask(_ context.Context, taskID uuid.UUID) (*domain.SessionContext, error) {
	task, ok := r.tasks[taskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return r.GetSessionContext(context.Background(), task.SessionID)
}

func mustClock(t *testing.T, s string) domain.TimeOfDay {
	t.Helper()
	tod, err := domain.ParseClock(s)
	require.NoError(t, err)
	return tod
}

func rangeOf(t *testing.T, start, end string) domain.TimeRange {
	t.Helper()
	return domain.TimeRange{Start: mustClock(t, start), End: mustClock(t, end)}
}

func newTestService(schedules domain.ScheduleRepository, tasks domain.TaskRepository) *Service {
	return NewService(schedules, tasks, resolve.NewResolver(), validate.NewValidator(), nil)
}

func testSchedule(t *testing.T, userID uuid.UUID) *domain.DaySchedule {
	t.Helper()
	return &domain.DaySchedule{
		UserID:    userID,
		Day:       time.Monday,
		WakeTime:  mustClock(t, "06:00"),
		SleepTime: mustClock(t, "23:00"),
		Blocks: domain.BlockTriple{
			High:   rangeOf(t, "09:00", "12:00"),
			Medium: rangeOf(t, "13:00", "17:00"),
			Low:    rangeOf(t, "18:00", "21:00"),
		},
	}
}

func TestSaveDayScheduleRechainsOverlaps(t *testing.T) {
	repo := newFakeScheduleRepo()
	svc := newTestService(repo, newFakeTaskRepo())
	userID := uuid.New()

	schedule := testSchedule(t, userID)
	schedule.Blocks.Medium = rangeOf(t, "11:00", "15:00")

	saved, err := svc.SaveDaySchedule(context.Background(), schedule)
	require.NoError(t, err)

	assert.Equal(t, rangeOf(t, "09:00", "12:00"), saved.Schedule.Blocks.High)
	assert.Equal(t, rangeOf(t, "12:00", "16:00"), saved.Schedule.Blocks.Medium)
	assert.Equal(t, rangeOf(t, "18:00", "21:00"), saved.Schedule.Blocks.Low)
	assert.NotEqual(t, uuid.Nil, saved.ScheduleID)
	assert.Len(t, saved.SessionIDs, 3)
}

func TestSaveDayScheduleRejectsUnresolvable(t *testing.T) {
	repo := newFakeScheduleRepo()
	svc := newTestService(repo, newFakeTaskRepo())
	userID := uuid.New()

	schedule := testSchedule(t, userID)
	schedule.Blocks.High = rangeOf(t, "06:00", "20:00")
	schedule.Blocks.Medium = rangeOf(t, "10:00", "22:00")
	schedule.Blocks.Low = rangeOf(t, "12:00", "23:00")

	_, err := svc.SaveDaySchedule(context.Background(), schedule)
	var overlapErr *domain.UnresolvableOverlapError
	require.ErrorAs(t, err, &overlapErr)
	assert.Empty(t, repo.saved)
}

func TestSaveDayScheduleUpsertKeepsIDs(t *testing.T) {
	repo := newFakeScheduleRepo()
	svc := newTestService(repo, newFakeTaskRepo())
	userID := uuid.New()

	first, err := svc.SaveDaySchedule(context.Background(), testSchedule(t, userID))
	require.NoError(t, err)

	updated := testSchedule(t, userID)
	updated.Blocks.Low = rangeOf(t, "19:00", "22:00")
	second, err := svc.SaveDaySchedule(context.Background(), updated)
	require.NoError(t, err)

	assert.Equal(t, first.ScheduleID, second.ScheduleID)
	assert.Equal(t, first.SessionIDs, second.SessionIDs)
	assert.Equal(t, rangeOf(t, "19:00", "22:00"), second.Schedule.Blocks.Low)
}

func TestEditBlockPropagatesThroughTriple(t *testing.T) {
	repo := newFakeScheduleRepo()
	svc := newTestService(repo, newFakeTaskRepo())
	userID := uuid.New()

	schedule := testSchedule(t, userID)
	schedule.Blocks = domain.BlockTriple{
		High:   rangeOf(t, "06:00", "12:00"),
		Medium: rangeOf(t, "12:00", "18:00"),
		Low:    rangeOf(t, "18:00", "22:00"),
	}
	_, err := svc.SaveDaySchedule(context.Background(), schedule)
	require.NoError(t, err)

	saved, err := svc.EditBlock(context.Background(), userID, time.Monday, domain.EnergyHigh, rangeOf(t, "06:00", "13:00"))
	require.NoError(t, err)

	assert.Equal(t, rangeOf(t, "06:00", "13:00"), saved.Schedule.Blocks.High)
	assert.Equal(t, rangeOf(t, "13:00", "19:00"), saved.Schedule.Blocks.Medium)
	assert.Equal(t, rangeOf(t, "19:00", "23:00"), saved.Schedule.Blocks.Low)
}

func TestEditBlockNeverPersistsOverlap(t *testing.T) {
	repo := newFakeScheduleRepo()
	svc := newTestService(repo, newFakeTaskRepo())
	userID := uuid.New()

	schedule := testSchedule(t, userID)
	schedule.Blocks = domain.BlockTriple{
		High:   rangeOf(t, "06:00", "12:00"),
		Medium: rangeOf(t, "12:00", "18:00"),
		Low:    rangeOf(t, "18:00", "22:00"),
	}
	_, err := svc.SaveDaySchedule(context.Background(), schedule)
	require.NoError(t, err)

	// Dragging low into high's range collides with a block two positions
	// away in canonical order; the stored triple must still come back
	// overlap-free.
	saved, err := svc.EditBlock(context.Background(), userID, time.Monday, domain.EnergyLow, rangeOf(t, "07:00", "09:00"))
	require.NoError(t, err)

	assert.Equal(t, rangeOf(t, "06:00", "12:00"), saved.Schedule.Blocks.High)
	assert.Equal(t, rangeOf(t, "12:00", "18:00"), saved.Schedule.Blocks.Medium)
	assert.Equal(t, rangeOf(t, "18:00", "20:00"), saved.Schedule.Blocks.Low)
	assert.False(t, resolve.NewResolver().Detect(saved.Schedule.Blocks))
}

func TestEditBlockUnknownScheduleFails(t *testing.T) {
	svc := newTestService(newFakeScheduleRepo(), newFakeTaskRepo())

	_, err := svc.EditBlock(context.Background(), uuid.New(), time.Monday, domain.EnergyHigh, rangeOf(t, "06:00", "10:00"))
	assert.ErrorIs(t, err, domain.ErrScheduleNotFound)
}

func TestApplyProposalShiftsHighBlock(t *testing.T) {
	repo := newFakeScheduleRepo()
	svc := newTestService(repo, newFakeTaskRepo())
	userID := uuid.New()

	_, err := svc.SaveDaySchedule(context.Background(), testSchedule(t, userID))
	require.NoError(t, err)

	proposal := domain.Proposal{
		Kind:   domain.ProposalShiftHighBlock,
		Target: rangeOf(t, "08:00", "10:00"),
	}
	saved, err := svc.ApplyProposal(context.Background(), userID, time.Monday, proposal)
	require.NoError(t, err)

	assert.Equal(t, rangeOf(t, "08:00", "10:00"), saved.Schedule.Blocks.High)
	assert.Equal(t, rangeOf(t, "13:00", "17:00"), saved.Schedule.Blocks.Medium)
	assert.Equal(t, rangeOf(t, "18:00", "21:00"), saved.Schedule.Blocks.Low)
}

func TestApplyProposalUnknownKindFails(t *testing.T) {
	svc := newTestService(newFakeScheduleRepo(), newFakeTaskRepo())

	_, err := svc.ApplyProposal(context.Background(), uuid.New(), time.Monday, domain.Proposal{Kind: "merge_blocks"})
	var parseErr *domain.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func seedSession(t *testing.T, repo *fakeTaskRepo, userID uuid.UUID, start, end string) uuid.UUID {
	t.Helper()
	sessionID := uuid.New()
	repo.sessions[sessionID] = &domain.SessionContext{
		SessionID: sessionID,
		UserID:    userID,
		Block: domain.EnergyBlock{
			Label: domain.EnergyHigh,
			Range: rangeOf(t, start, end),
		},
	}
	return sessionID
}

func TestCreateTaskWithinCapacity(t *testing.T) {
	taskRepo := newFakeTaskRepo()
	svc := newTestService(newFakeScheduleRepo(), taskRepo)
	userID := uuid.New()
	sessionID := seedSession(t, taskRepo, userID, "09:00", "11:00")

	task, err := svc.CreateTask(context.Background(), userID, sessionID, "write report", "", 60)
	require.NoError(t, err)

	assert.Equal(t, domain.TaskActive, task.Status)
	assert.Equal(t, 60, task.DurationMinutes)
	assert.NotEqual(t, uuid.Nil, task.ID)

	tasks, err := svc.ListTasks(context.Background(), userID, sessionID)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestCreateTaskRejectsOverCapacity(t *testing.T) {
	taskRepo := newFakeTaskRepo()
	svc := newTestService(newFakeScheduleRepo(), taskRepo)
	userID := uuid.New()
	sessionID := seedSession(t, taskRepo, userID, "09:00", "10:00")

	_, err := svc.CreateTask(context.Background(), userID, sessionID, "first", "", 45)
	require.NoError(t, err)

	_, err = svc.CreateTask(context.Background(), userID, sessionID, "second", "", 30)
	var capErr *domain.CapacityExceededError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 15, capErr.ExcessMinutes)
}

func TestCompletedTaskReleasesCapacity(t *testing.T) {
	taskRepo := newFakeTaskRepo()
	svc := newTestService(newFakeScheduleRepo(), taskRepo)
	userID := uuid.New()
	sessionID := seedSession(t, taskRepo, userID, "09:00", "10:00")

	first, err := svc.CreateTask(context.Background(), userID, sessionID, "first", "", 45)
	require.NoError(t, err)

	completed := domain.TaskCompleted
	_, err = svc.UpdateTask(context.Background(), userID, first.ID, TaskUpdate{Status: &completed})
	require.NoError(t, err)

	_, err = svc.CreateTask(context.Background(), userID, sessionID, "second", "", 30)
	assert.NoError(t, err)
}

func TestUpdateTaskGrowthRevalidated(t *testing.T) {
	taskRepo := newFakeTaskRepo()
	svc := newTestService(newFakeScheduleRepo(), taskRepo)
	userID := uuid.New()
	sessionID := seedSession(t, taskRepo, userID, "09:00", "10:00")

	task, err := svc.CreateTask(context.Background(), userID, sessionID, "stretchy", "", 30)
	require.NoError(t, err)

	grown := 90
	_, err = svc.UpdateTask(context.Background(), userID, task.ID, TaskUpdate{DurationMinutes: &grown})
	var capErr *domain.CapacityExceededError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 30, capErr.ExcessMinutes)

	fits := 50
	updated, err := svc.UpdateTask(context.Background(), userID, task.ID, TaskUpdate{DurationMinutes: &fits})
	require.NoError(t, err)
	assert.Equal(t, 50, updated.DurationMinutes)
}

func TestTaskOwnershipEnforced(t *testing.T) {
	taskRepo := newFakeTaskRepo()
	svc := newTestService(newFakeScheduleRepo(), taskRepo)
	owner := uuid.New()
	intruder := uuid.New()
	sessionID := seedSession(t, taskRepo, owner, "09:00", "12:00")

	task, err := svc.CreateTask(context.Background(), owner, sessionID, "private", "", 30)
	require.NoError(t, err)

	_, err = svc.CreateTask(context.Background(), intruder, sessionID, "sneaky", "", 10)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	name := "renamed"
	_, err = svc.UpdateTask(context.Background(), intruder, task.ID, TaskUpdate{Name: &name})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	err = svc.DeleteTask(context.Background(), intruder, task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestDeleteTaskReleasesCapacity(t *testing.T) {
	taskRepo := newFakeTaskRepo()
	svc := newTestService(newFakeScheduleRepo(), taskRepo)
	userID := uuid.New()
	sessionID := seedSession(t, taskRepo, userID, "09:00", "10:00")

	task, err := svc.CreateTask(context.Background(), userID, sessionID, "first", "", 60)
	require.NoError(t, err)

	_, err = svc.CreateTask(context.Background(), userID, sessionID, "second", "", 1)
	require.Error(t, err)

	require.NoError(t, svc.DeleteTask(context.Background(), userID, task.ID))

	_, err = svc.CreateTask(context.Background(), userID, sessionID, "second", "", 60)
	assert.NoError(t, err)
}

func TestDeleteMissingTask(t *testing.T) {
	svc := newTestService(newFakeScheduleRepo(), newFakeTaskRepo())

	err := svc.DeleteTask(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}
