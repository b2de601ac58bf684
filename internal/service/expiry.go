package service

import (
	"context"
	"fmt"

	"github.com/msomdec/student-roster/internal/domain"
)

// ExpiryTaskName is the scheduler name of the student expiry job.
const ExpiryTaskName = "delete-student-objects"

// ExpiryTask removes every student each time it runs. It holds no state
// between runs, so repeated or overlapping runs only repeat the delete.
type ExpiryTask struct {
	students domain.StudentRepository
}

// NewExpiryTask creates an ExpiryTask over the given store.
func NewExpiryTask(students domain.StudentRepository) *ExpiryTask {
	return &ExpiryTask{students: students}
}

func (t *ExpiryTask) Name() string { return ExpiryTaskName }

// Run deletes all students in one statement. Failures are returned to the
// caller as-is; the next scheduled run is the retry.
func (t *ExpiryTask) Run(ctx context.Context) error {
	if _, err := t.students.DeleteAll(ctx); err != nil {
		return fmt.Errorf("expire students: %w", err)
	}
	return nil
}
