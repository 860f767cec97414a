package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nagomi-dev/dayflow/internal/domain"
)

// ScheduleRepository implements domain.ScheduleRepository on
// PostgreSQL. Block boundaries live in session_templates, one row per
// (user, energy label); a schedule links to its three templates through
// sessions. Saves run in one transaction: the schedule row, the
// template rows and the session links land together or not at all.
type ScheduleRepository struct {
	pool *pgxpool.Pool
}

func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

// SaveDaySchedule upserts the (user, day) schedule. Existing schedule,
// template and session IDs survive re-saves so tasks keep their owning
// session.
func (r *ScheduleRepository) SaveDaySchedule(ctx context.Context, schedule *domain.DaySchedule) (*domain.SavedDaySchedule, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO schedules (id, user_id, day_of_week, wake_time, sleep_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (user_id, day_of_week) DO UPDATE SET
			wake_time = EXCLUDED.wake_time,
			sleep_time = EXCLUDED.sleep_time,
			updated_at = NOW()
		RETURNING id
	`

	var scheduleID uuid.UUID
	err = tx.QueryRow(ctx, query,
		uuid.New(),
		schedule.UserID,
		int(schedule.Day),
		int(schedule.WakeTime),
		int(schedule.SleepTime),
	).Scan(&scheduleID)
	if err != nil {
		return nil, err
	}

	templateQuery := `
		INSERT INTO session_templates (id, user_id, energy_type, start_time, end_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (user_id, energy_type) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			updated_at = NOW()
		RETURNING id
	`

	// The DO UPDATE on the link row is a no-op write so the upsert
	// returns the existing session id instead of no rows.
	sessionQuery := `
		INSERT INTO sessions (id, schedule_id, template_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (schedule_id, template_id) DO UPDATE SET
			template_id = EXCLUDED.template_id
		RETURNING id
	`

	sessionIDs := make(map[domain.EnergyLabel]uuid.UUID, 3)
	for _, block := range schedule.Blocks.Blocks() {
		var templateID uuid.UUID
		err = tx.QueryRow(ctx, templateQuery,
			uuid.New(),
			schedule.UserID,
			block.Label.String(),
			int(block.Range.Start),
			int(block.Range.End),
		).Scan(&templateID)
		if err != nil {
			return nil, err
		}

		var sessionID uuid.UUID
		err = tx.QueryRow(ctx, sessionQuery, uuid.New(), scheduleID, templateID).Scan(&sessionID)
		if err != nil {
			return nil, err
		}
		sessionIDs[block.Label] = sessionID
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &domain.SavedDaySchedule{
		Schedule:   *schedule,
		ScheduleID: scheduleID,
		SessionIDs: sessionIDs,
	}, nil
}

// GetDaySchedule loads the stored snapshot for the (user, day) pair.
func (r *ScheduleRepository) GetDaySchedule(ctx context.Context, userID uuid.UUID, day time.Weekday) (*domain.SavedDaySchedule, error) {
	query := `
		SELECT id, wake_time, sleep_time
		FROM schedules
		WHERE user_id = $1 AND day_of_week = $2
	`

	var (
		scheduleID uuid.UUID
		wakeTime   int
		sleepTime  int
	)
	err := r.pool.QueryRow(ctx, query, userID, int(day)).Scan(&scheduleID, &wakeTime, &sleepTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}

	saved := &domain.SavedDaySchedule{
		Schedule: domain.DaySchedule{
			UserID:    userID,
			Day:       day,
			WakeTime:  domain.TimeOfDay(wakeTime),
			SleepTime: domain.TimeOfDay(sleepTime),
		},
		ScheduleID: scheduleID,
		SessionIDs: make(map[domain.EnergyLabel]uuid.UUID, 3),
	}

	sessionQuery := `
		SELECT s.id, t.energy_type, t.start_time, t.end_time
		FROM sessions s
		JOIN session_templates t ON t.id = s.template_id
		WHERE s.schedule_id = $1
	`

	rows, err := r.pool.Query(ctx, sessionQuery, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sessionID  uuid.UUID
			energyType string
			start, end int
		)
		if err := rows.Scan(&sessionID, &energyType, &start, &end); err != nil {
			return nil, err
		}

		label, err := domain.ParseEnergyLabel(energyType)
		if err != nil {
			return nil, err
		}

		saved.Schedule.Blocks.SetRange(label, domain.TimeRange{
			Start: domain.TimeOfDay(start),
			End:   domain.TimeOfDay(end),
		})
		saved.SessionIDs[label] = sessionID
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return saved, nil
}
