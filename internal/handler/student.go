package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/msomdec/student-roster/internal/domain"
	"github.com/msomdec/student-roster/internal/service"
)

// StudentHandler serves the student JSON API.
type StudentHandler struct {
	students *service.StudentService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// HandleList returns every student.
// GET /api/students
// Response: {"students": [...]}
func (h *StudentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	students, err := h.students.List(r.Context())
	if err != nil {
		slog.Error("list students", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"students": toStudentDTOs(students)})
}

// HandleGet returns one student.
// GET /api/students/{id}
func (h *StudentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	student, err := h.students.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, "get student", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"student": toStudentDTO(student)})
}

// HandleCreate adds a student.
// POST /api/students
// Request:  {"name":"...","surname":"...","age":21}
// Response: 201 {"student": {...}}
func (h *StudentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Surname string `json:"surname"`
		Age     *int   `json:"age"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Age == nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid input: age is required")
		return
	}

	student := &domain.Student{Name: req.Name, Surname: req.Surname, Age: *req.Age}
	if err := h.students.Create(r.Context(), student); err != nil {
		writeServiceError(w, "create student", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"student": toStudentDTO(student)})
}

// HandleDelete removes a student.
// DELETE /api/students/{id}
// Response: 204 No Content
func (h *StudentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.students.Delete(r.Context(), id); err != nil {
		writeServiceError(w, "delete student", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid student ID.")
		return 0, false
	}
	return id, true
}

// writeServiceError maps domain errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized.")
	default:
		slog.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
