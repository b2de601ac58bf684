package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/msomdec/student-roster/internal/domain"
)

// RetentionTaskName is the scheduler name of the result pruning job.
const RetentionTaskName = "prune-task-results"

// RetentionTask prunes finished task results older than a fixed age.
type RetentionTask struct {
	results domain.TaskResultRepository
	maxAge  time.Duration
	now     func() time.Time
}

// NewRetentionTask creates a RetentionTask keeping results for maxAge.
func NewRetentionTask(results domain.TaskResultRepository, maxAge time.Duration) *RetentionTask {
	return &RetentionTask{results: results, maxAge: maxAge, now: time.Now}
}

func (t *RetentionTask) Name() string { return RetentionTaskName }

func (t *RetentionTask) Run(ctx context.Context) error {
	n, err := t.results.Prune(ctx, t.now().Add(-t.maxAge))
	if err != nil {
		return fmt.Errorf("prune task results: %w", err)
	}
	if n > 0 {
		slog.Info("pruned task results", "count", n)
	}
	return nil
}
