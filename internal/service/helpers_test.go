package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/msomdec/student-roster/internal/domain"
	"github.com/msomdec/student-roster/internal/repository/sqlite"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedStudents(t *testing.T, db *sqlite.DB, students ...domain.Student) {
	t.Helper()
	repo := db.Students()
	for i := range students {
		if err := repo.Create(context.Background(), &students[i]); err != nil {
			t.Fatalf("seed student: %v", err)
		}
	}
}

func countStudents(t *testing.T, db *sqlite.DB) int {
	t.Helper()
	n, err := db.Students().Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	return n
}
