package domain

import (
	"context"
	"time"
)

// Student is a roster entry. Rows are created through the admin API and
// removed in bulk by the expiry job.
type Student struct {
	ID        int64
	Name      string
	Surname   string
	Age       int
	CreatedAt time.Time
}

// StudentRepository defines persistence operations for students.
type StudentRepository interface {
	Create(ctx context.Context, student *Student) error
	GetByID(ctx context.Context, id int64) (*Student, error)
	List(ctx context.Context) ([]Student, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id int64) error
	// DeleteAll removes every student in a single statement and reports
	// how many rows were removed.
	DeleteAll(ctx context.Context) (int64, error)
}
