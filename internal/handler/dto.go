package handler

import (
	"time"

	"github.com/msomdec/student-roster/internal/domain"
	"github.com/msomdec/student-roster/internal/scheduler"
)

type studentDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Age       int       `json:"age"`
	CreatedAt time.Time `json:"createdAt"`
}

func toStudentDTO(s *domain.Student) studentDTO {
	return studentDTO{
		ID:        s.ID,
		Name:      s.Name,
		Surname:   s.Surname,
		Age:       s.Age,
		CreatedAt: s.CreatedAt,
	}
}

func toStudentDTOs(students []domain.Student) []studentDTO {
	out := make([]studentDTO, len(students))
	for i := range students {
		out[i] = toStudentDTO(&students[i])
	}
	return out
}

type taskResultDTO struct {
	TaskID     string     `json:"taskId"`
	TaskName   string     `json:"taskName"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

func toTaskResultDTOs(results []domain.TaskResult) []taskResultDTO {
	out := make([]taskResultDTO, len(results))
	for i, r := range results {
		out[i] = taskResultDTO{
			TaskID:     r.TaskID,
			TaskName:   r.TaskName,
			Status:     r.Status,
			Error:      r.Error,
			StartedAt:  r.StartedAt,
			FinishedAt: r.FinishedAt,
		}
	}
	return out
}

type jobDTO struct {
	Name            string  `json:"name"`
	Schedule        string  `json:"schedule"`
	IntervalSeconds float64 `json:"intervalSeconds"`
	Running         bool    `json:"running"`
	Runs            int64   `json:"runs"`
	Failures        int64   `json:"failures"`
	Skipped         int64   `json:"skipped"`
}

func toJobDTOs(jobs []scheduler.JobInfo) []jobDTO {
	out := make([]jobDTO, len(jobs))
	for i, j := range jobs {
		out[i] = jobDTO{
			Name:            j.Name,
			Schedule:        j.Label,
			IntervalSeconds: j.Interval.Seconds(),
			Running:         j.Running,
			Runs:            j.Runs,
			Failures:        j.Failures,
			Skipped:         j.Skipped,
		}
	}
	return out
}
