package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/student-roster/internal/service"
	"github.com/msomdec/student-roster/internal/view"
)

// HomeHandler renders the student list page.
type HomeHandler struct {
	students *service.StudentService
	auth     *service.AuthService
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(students *service.StudentService, auth *service.AuthService) *HomeHandler {
	return &HomeHandler{students: students, auth: auth}
}

// HandleHome renders every student's name, surname and age.
func (h *HomeHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	students, err := h.students.List(r.Context())
	if err != nil {
		slog.Error("list students for home page", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		view.ErrorPage(http.StatusInternalServerError, "Internal Server Error", "The student list could not be loaded.").Render(r.Context(), w)
		return
	}
	view.HomePage(students, isAdmin(r, h.auth)).Render(r.Context(), w)
}

// HandleNotFound renders the 404 page for unmatched paths.
func HandleNotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	view.ErrorPage(http.StatusNotFound, "Not Found", "The page you requested does not exist.").Render(r.Context(), w)
}
