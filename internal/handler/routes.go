package handler

import (
	"net/http"
	"time"

	"github.com/msomdec/student-roster/internal/channel"
	"github.com/msomdec/student-roster/internal/domain"
	"github.com/msomdec/student-roster/internal/service"
)

// Deps bundles what the HTTP layer needs.
type Deps struct {
	Students     *service.StudentService
	Auth         *service.AuthService
	Limiter      *service.TokenBucket
	Tasks        TaskRunner
	Results      domain.TaskResultRepository
	Layer        channel.Layer
	Store        Pinger
	CookieSecure bool
	// StreamRefresh re-sends the student rows to open pages on this period.
	StreamRefresh time.Duration
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, d Deps) {
	home := NewHomeHandler(d.Students, d.Auth)
	students := NewStudentHandler(d.Students)
	stream := NewStreamHandler(d.Students, d.Layer, d.StreamRefresh)
	admin := NewAdminHandler(d.Auth, d.Limiter, d.CookieSecure)
	tasks := NewTaskHandler(d.Tasks, d.Results)
	health := NewHealthHandler(d.Store)

	requireAdmin := func(h http.HandlerFunc) http.Handler { return RequireAdmin(d.Auth, h) }

	mux.HandleFunc("GET /healthz", health.HandleHealthz)
	mux.HandleFunc("GET /{$}", home.HandleHome)
	mux.HandleFunc("/", HandleNotFound)
	mux.HandleFunc("GET /students/stream", stream.HandleStream)

	mux.HandleFunc("GET /admin/login", admin.HandleLoginPage)
	mux.HandleFunc("POST /admin/login", admin.HandleLogin)
	mux.HandleFunc("POST /admin/logout", admin.HandleLogout)

	mux.HandleFunc("GET /api/students", students.HandleList)
	mux.HandleFunc("GET /api/students/{id}", students.HandleGet)
	mux.Handle("POST /api/students", requireAdmin(students.HandleCreate))
	mux.Handle("DELETE /api/students/{id}", requireAdmin(students.HandleDelete))

	mux.Handle("GET /api/tasks", requireAdmin(tasks.HandleList))
	mux.Handle("POST /api/tasks/{name}/run", requireAdmin(tasks.HandleRun))
}
