package handler_test

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/student-roster/internal/channel"
	"github.com/msomdec/student-roster/internal/domain"
	"github.com/msomdec/student-roster/internal/handler"
	"github.com/msomdec/student-roster/internal/repository/sqlite"
	"github.com/msomdec/student-roster/internal/scheduler"
	"github.com/msomdec/student-roster/internal/service"
)

const (
	testJWTSecret     = "test-secret-for-handler-tests-0123456789"
	testAdminPassword = "admin-password"
)

type testApp struct {
	mux       *http.ServeMux
	db        *sqlite.DB
	layer     *channel.MemoryLayer
	auth      *service.AuthService
	students  *service.StudentService
	scheduler *scheduler.Scheduler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithPassword(t, testAdminPassword)
}

func newTestAppWithPassword(t *testing.T, password string) *testApp {
	t.Helper()
	return newTestAppWith(t, password, 0)
}

func newTestAppWith(t *testing.T, password string, streamRefresh time.Duration) *testApp {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	layer := channel.NewMemoryLayer(8)
	t.Cleanup(func() { layer.Close() })

	auth, err := service.NewAuthService(password, testJWTSecret, 4)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}

	limiter := service.NewTokenBucket(0, 3)
	t.Cleanup(limiter.Close)

	students := service.NewStudentService(db.Students(), layer)

	sched := scheduler.New(db.TaskResults())
	if err := sched.Register(service.NewExpiryTask(db.Students()), 10*time.Second); err != nil {
		t.Fatalf("Register: %v", err)
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Deps{
		Students:      students,
		Auth:          auth,
		Limiter:       limiter,
		Tasks:         sched,
		Results:       db.TaskResults(),
		Layer:         layer,
		Store:         db,
		StreamRefresh: streamRefresh,
	})

	return &testApp{mux: mux, db: db, layer: layer, auth: auth, students: students, scheduler: sched}
}

func (a *testApp) adminToken(t *testing.T) string {
	t.Helper()
	token, err := a.auth.Login(testAdminPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	return token
}

func (a *testApp) seed(t *testing.T, students ...domain.Student) {
	t.Helper()
	for i := range students {
		if err := a.students.Create(context.Background(), &students[i]); err != nil {
			t.Fatalf("seed student: %v", err)
		}
	}
}

func (a *testApp) count(t *testing.T) int {
	t.Helper()
	n, err := a.db.Students().Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	return n
}
