package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/msomdec/student-roster/internal/domain"
	"github.com/msomdec/student-roster/internal/scheduler"
)

const defaultResultLimit = 20

// TaskRunner is the part of the scheduler the task API needs.
type TaskRunner interface {
	Jobs() []scheduler.JobInfo
	RunNow(ctx context.Context, name string) (string, error)
}

// TaskHandler exposes scheduled jobs and their recent results.
type TaskHandler struct {
	runner  TaskRunner
	results domain.TaskResultRepository
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(runner TaskRunner, results domain.TaskResultRepository) *TaskHandler {
	return &TaskHandler{runner: runner, results: results}
}

// HandleList returns registered jobs and the most recent results.
// GET /api/tasks?limit=20
// Response: {"jobs": [...], "results": [...]}
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := defaultResultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	results, err := h.results.ListRecent(r.Context(), limit)
	if err != nil {
		slog.Error("list task results", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"jobs":    toJobDTOs(h.runner.Jobs()),
		"results": toTaskResultDTOs(results),
	})
}

// HandleRun triggers a job immediately.
// POST /api/tasks/{name}/run
// Response: 200 {"taskId": "...", "status": "success"}
func (h *TaskHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	taskID, err := h.runner.RunNow(r.Context(), name)
	switch {
	case errors.Is(err, scheduler.ErrUnknownJob):
		writeError(w, http.StatusNotFound, "Unknown task.")
	case errors.Is(err, scheduler.ErrJobRunning):
		writeError(w, http.StatusConflict, "Task is already running.")
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"taskId": taskID,
			"status": domain.TaskStatusFailure,
			"error":  err.Error(),
		})
	default:
		writeJSON(w, http.StatusOK, map[string]string{
			"taskId": taskID,
			"status": domain.TaskStatusSuccess,
		})
	}
}
