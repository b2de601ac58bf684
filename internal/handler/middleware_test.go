package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/msomdec/student-roster/internal/handler"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestAllowedHosts(t *testing.T) {
	h := handler.AllowedHosts([]string{"example.com", ".students.test"}, okHandler)

	cases := map[string]int{
		"example.com":       http.StatusOK,
		"EXAMPLE.com:8080":  http.StatusOK,
		"students.test":     http.StatusOK,
		"api.students.test": http.StatusOK,
		"evil.com":          http.StatusBadRequest,
		"notexample.com":    http.StatusBadRequest,
		"evilstudents.test": http.StatusBadRequest,
	}
	for host, want := range cases {
		t.Run(host, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = host
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != want {
				t.Fatalf("host %s: expected %d, got %d", host, want, w.Code)
			}
		})
	}
}

func TestAllowedHosts_Wildcard(t *testing.T) {
	h := handler.AllowedHosts([]string{"*"}, okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "anything.example"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	handler.SecurityHeaders(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "same-origin",
	} {
		if got := w.Header().Get(header); got != want {
			t.Fatalf("%s: expected %q, got %q", header, want, got)
		}
	}
}

func TestRequireAdmin_RejectsBadToken(t *testing.T) {
	app := newTestApp(t)
	h := handler.RequireAdmin(app.auth, okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer forged")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
