package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/student-roster/internal/domain"
)

// TaskResultRepository implements domain.TaskResultRepository using SQLite.
type TaskResultRepository struct {
	db *sql.DB
}

// NewTaskResultRepository creates a new SQLite-backed TaskResultRepository.
func NewTaskResultRepository(db *DB) *TaskResultRepository {
	return &TaskResultRepository{db: db.SqlDB}
}

func (r *TaskResultRepository) Create(ctx context.Context, result *domain.TaskResult) error {
	if result.StartedAt.IsZero() {
		result.StartedAt = time.Now().UTC()
	}
	if result.Status == "" {
		result.Status = domain.TaskStatusStarted
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO task_results (task_id, task_name, status, error, started_at)
		 VALUES (?, ?, ?, ?, ?)`,
		result.TaskID, result.TaskName, result.Status, result.Error, result.StartedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: duplicate task id %s", domain.ErrInvalidInput, result.TaskID)
		}
		return fmt.Errorf("insert task result: %w", err)
	}
	return nil
}

func (r *TaskResultRepository) Finish(ctx context.Context, taskID, status, errMsg string) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE task_results SET status = ?, error = ?, finished_at = ? WHERE task_id = ?`,
		status, errMsg, now, taskID,
	)
	if err != nil {
		return fmt.Errorf("finish task result: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TaskResultRepository) GetByID(ctx context.Context, taskID string) (*domain.TaskResult, error) {
	t := &domain.TaskResult{}
	err := r.db.QueryRowContext(ctx,
		`SELECT task_id, task_name, status, error, started_at, finished_at
		 FROM task_results WHERE task_id = ?`, taskID,
	).Scan(&t.TaskID, &t.TaskName, &t.Status, &t.Error, &t.StartedAt, &t.FinishedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query task result: %w", err)
	}
	return t, nil
}

func (r *TaskResultRepository) ListRecent(ctx context.Context, limit int) ([]domain.TaskResult, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT task_id, task_name, status, error, started_at, finished_at
		 FROM task_results ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query task results: %w", err)
	}
	defer rows.Close()

	var results []domain.TaskResult
	for rows.Next() {
		var t domain.TaskResult
		if err := rows.Scan(&t.TaskID, &t.TaskName, &t.Status, &t.Error, &t.StartedAt, &t.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan task result: %w", err)
		}
		results = append(results, t)
	}
	return results, rows.Err()
}

// Prune deletes finished results that started before olderThan.
func (r *TaskResultRepository) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM task_results WHERE finished_at IS NOT NULL AND started_at < ?`,
		olderThan.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("prune task results: %w", err)
	}
	return result.RowsAffected()
}
