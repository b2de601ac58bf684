package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	json "github.com/goccy/go-json"
	"github.com/msomdec/student-roster/internal/domain"
)

const maxNameLength = 50

// EventPublisher is the part of the channel layer the service needs.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// StudentService handles roster reads and admin edits.
type StudentService struct {
	students  domain.StudentRepository
	publisher EventPublisher
}

// NewStudentService creates a new StudentService. publisher may be nil.
func NewStudentService(students domain.StudentRepository, publisher EventPublisher) *StudentService {
	return &StudentService{students: students, publisher: publisher}
}

// List returns every student in creation order.
func (s *StudentService) List(ctx context.Context) ([]domain.Student, error) {
	return s.students.List(ctx)
}

// GetByID returns a student by ID.
func (s *StudentService) GetByID(ctx context.Context, id int64) (*domain.Student, error) {
	return s.students.GetByID(ctx, id)
}

// Create validates and stores a student, then notifies subscribers.
func (s *StudentService) Create(ctx context.Context, student *domain.Student) error {
	student.Name = strings.TrimSpace(student.Name)
	student.Surname = strings.TrimSpace(student.Surname)
	if err := validateStudent(student); err != nil {
		return err
	}

	if err := s.students.Create(ctx, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}

	s.notify(ctx, domain.EventStudentCreated, student.ID)
	return nil
}

// Delete removes a single student and notifies subscribers.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	if err := s.students.Delete(ctx, id); err != nil {
		return err
	}
	s.notify(ctx, domain.EventStudentDeleted, id)
	return nil
}

// notify publishes best-effort; the write has already succeeded.
func (s *StudentService) notify(ctx context.Context, eventType string, id int64) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(map[string]int64{"id": id})
	if err != nil {
		slog.Error("encode student event", "error", err)
		return
	}
	event := domain.Event{Type: eventType, Group: domain.GroupStudents, Payload: payload}
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.Warn("publish student event", "type", eventType, "student_id", id, "error", err)
	}
}

func validateStudent(student *domain.Student) error {
	if student.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if student.Surname == "" {
		return fmt.Errorf("%w: surname is required", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(student.Name) > maxNameLength {
		return fmt.Errorf("%w: name must be at most %d characters", domain.ErrInvalidInput, maxNameLength)
	}
	if utf8.RuneCountInString(student.Surname) > maxNameLength {
		return fmt.Errorf("%w: surname must be at most %d characters", domain.ErrInvalidInput, maxNameLength)
	}
	if student.Age < 0 {
		return fmt.Errorf("%w: age must not be negative", domain.ErrInvalidInput)
	}
	return nil
}
