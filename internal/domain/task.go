package domain

import (
	"context"
	"time"
)

const (
	TaskStatusStarted = "started"
	TaskStatusSuccess = "success"
	TaskStatusFailure = "failure"
)

// TaskResult records one scheduler invocation of a background job.
type TaskResult struct {
	TaskID     string
	TaskName   string
	Status     string
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// TaskResultRepository is the result backend for scheduled jobs.
type TaskResultRepository interface {
	Create(ctx context.Context, result *TaskResult) error
	Finish(ctx context.Context, taskID, status, errMsg string) error
	GetByID(ctx context.Context, taskID string) (*TaskResult, error)
	ListRecent(ctx context.Context, limit int) ([]TaskResult, error)
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
}
