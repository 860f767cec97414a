package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nagomi-dev/dayflow/internal/domain"
)

// HistoryReader feeds the velocity analyzer from completed tasks. A
// task's completion instant is its last update, and its hour bucket is
// the configured start of its owning block.
type HistoryReader struct {
	pool *pgxpool.Pool
}

func NewHistoryReader(pool *pgxpool.Pool) *HistoryReader {
	return &HistoryReader{pool: pool}
}

func (r *HistoryReader) CompletedTasksSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]domain.CompletedTask, error) {
	query := `
		SELECT st.start_time, t.duration_minutes, t.updated_at
		FROM tasks t
		JOIN sessions s ON s.id = t.session_id
		JOIN session_templates st ON st.id = s.template_id
		WHERE st.user_id = $1
		  AND t.status = 'completed'
		  AND t.updated_at >= $2
		ORDER BY t.updated_at
	`

	rows, err := r.pool.Query(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.CompletedTask
	for rows.Next() {
		var (
			blockStart int
			task       domain.CompletedTask
		)
		if err := rows.Scan(&blockStart, &task.DurationMinutes, &task.CompletedAt); err != nil {
			return nil, err
		}
		task.BlockStart = domain.TimeOfDay(blockStart)
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}
