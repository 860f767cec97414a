package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nagomi-dev/dayflow/internal/domain"
)

// TaskRepository implements domain.TaskRepository on PostgreSQL.
type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

func (r *TaskRepository) CreateTask(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (id, session_id, name, description, duration_minutes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		task.ID,
		task.SessionID,
		task.Name,
		task.Description,
		task.DurationMinutes,
		task.Status.String(),
		task.CreatedAt,
		task.UpdatedAt,
	)
	return err
}

func (r *TaskRepository) GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	query := `
		SELECT id, session_id, name, description, duration_minutes, status, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`

	task, err := scanTask(r.pool.QueryRow(ctx, query, taskID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTaskNotFound
	}
	return task, err
}

func (r *TaskRepository) UpdateTask(ctx context.Context, task *domain.Task) error {
	query := `
		UPDATE tasks
		SET name = $2, description = $3, duration_minutes = $4, status = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		task.ID,
		task.Name,
		task.Description,
		task.DurationMinutes,
		task.Status.String(),
		task.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) DeleteTask(ctx context.Context, taskID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", taskID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) ListTasksBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.Task, error) {
	query := `
		SELECT id, session_id, name, description, duration_minutes, status, created_at, updated_at
		FROM tasks
		WHERE session_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// GetSessionContext resolves the session's owner, block and tasks in
// one round trip for the ownership and capacity checks.
func (r *TaskRepository) GetSessionContext(ctx context.Context, sessionID uuid.UUID) (*domain.SessionContext, error) {
	query := `
		SELECT s.id, t.user_id, t.energy_type, t.start_time, t.end_time
		FROM sessions s
		JOIN session_templates t ON t.id = s.template_id
		WHERE s.id = $1
	`

	sessionCtx, err := r.scanSessionContext(ctx, r.pool.QueryRow(ctx, query, sessionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	return sessionCtx, err
}

func (r *TaskRepository) GetSessionContextForTask(ctx context.Context, taskID uuid.UUID) (*domain.SessionContext, error) {
	query := `
		SELECT s.id, st.user_id, st.energy_type, st.start_time, st.end_time
		FROM tasks t
		JOIN sessions s ON s.id = t.session_id
		JOIN session_templates st ON st.id = s.template_id
		WHERE t.id = $1
	`

	sessionCtx, err := r.scanSessionContext(ctx, r.pool.QueryRow(ctx, query, taskID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTaskNotFound
	}
	return sessionCtx, err
}

func (r *TaskRepository) scanSessionContext(ctx context.Context, row pgx.Row) (*domain.SessionContext, error) {
	var (
		sessionID  uuid.UUID
		userID     uuid.UUID
		energyType string
		start, end int
	)
	if err := row.Scan(&sessionID, &userID, &energyType, &start, &end); err != nil {
		return nil, err
	}

	label, err := domain.ParseEnergyLabel(energyType)
	if err != nil {
		return nil, err
	}

	tasks, err := r.ListTasksBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &domain.SessionContext{
		SessionID: sessionID,
		UserID:    userID,
		Block: domain.EnergyBlock{
			Label: label,
			Range: domain.TimeRange{
				Start: domain.TimeOfDay(start),
				End:   domain.TimeOfDay(end),
			},
		},
		Tasks: tasks,
	}, nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		task   domain.Task
		status string
	)
	err := row.Scan(
		&task.ID,
		&task.SessionID,
		&task.Name,
		&task.Description,
		&task.DurationMinutes,
		&status,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status, err = domain.ParseTaskStatus(status)
	if err != nil {
		return nil, err
	}
	return &task, nil
}
