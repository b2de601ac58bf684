package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/msomdec/student-roster/internal/domain"
)

type studentBody struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Age     int    `json:"age"`
}

func TestStudentAPI_List(t *testing.T) {
	app := newTestApp(t)
	app.seed(t,
		domain.Student{Name: "Ann", Surname: "Lee", Age: 21},
		domain.Student{Name: "Bob", Surname: "Ray", Age: 30},
	)

	w := httptest.NewRecorder()
	app.mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/students", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Students []studentBody `json:"students"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Students) != 2 {
		t.Fatalf("expected 2 students, got %d", len(body.Students))
	}
	if body.Students[0].Name != "Ann" || body.Students[0].Surname != "Lee" || body.Students[0].Age != 21 {
		t.Fatalf("unexpected first student: %+v", body.Students[0])
	}
}

func TestStudentAPI_ListEmpty(t *testing.T) {
	app := newTestApp(t)

	w := httptest.NewRecorder()
	app.mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/students", nil))

	if !strings.Contains(w.Body.String(), `"students":[]`) {
		t.Fatalf("expected an empty array, got %s", w.Body.String())
	}
}

func TestStudentAPI_Get(t *testing.T) {
	app := newTestApp(t)
	app.seed(t, domain.Student{Name: "Ann", Surname: "Lee", Age: 21})

	w := httptest.NewRecorder()
	app.mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/students/1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	app.mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/students/99", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	app.mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/students/abc", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestStudentAPI_CreateRequiresAdmin(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/students", strings.NewReader(`{"name":"Ann","surname":"Lee","age":21}`))
	w := httptest.NewRecorder()
	app.mux.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if n := app.count(t); n != 0 {
		t.Fatalf("expected no students, got %d", n)
	}
}

func TestStudentAPI_Create(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/students", strings.NewReader(`{"name":"Ann","surname":"Lee","age":21}`))
	req.Header.Set("Authorization", "Bearer "+app.adminToken(t))
	w := httptest.NewRecorder()
	app.mux.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Student studentBody `json:"student"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Student.ID == 0 || body.Student.Name != "Ann" {
		t.Fatalf("unexpected student: %+v", body.Student)
	}
}

func TestStudentAPI_CreateInvalid(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken(t)

	cases := map[string]struct {
		body string
		want int
	}{
		"malformed":     {`{"name":`, http.StatusBadRequest},
		"unknown field": {`{"name":"Ann","surname":"Lee","age":1,"email":"x"}`, http.StatusBadRequest},
		"missing age":   {`{"name":"Ann","surname":"Lee"}`, http.StatusUnprocessableEntity},
		"missing name":  {`{"surname":"Lee","age":1}`, http.StatusUnprocessableEntity},
		"negative age":  {`{"name":"Ann","surname":"Lee","age":-3}`, http.StatusUnprocessableEntity},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/students", strings.NewReader(tc.body))
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			app.mux.ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestStudentAPI_Delete(t *testing.T) {
	app := newTestApp(t)
	app.seed(t, domain.Student{Name: "Ann", Surname: "Lee", Age: 21})
	token := app.adminToken(t)

	del := func(id int64) int {
		req := httptest.NewRequest(http.MethodDelete, "/api/students/"+strconv.FormatInt(id, 10), nil)
		req.AddCookie(&http.Cookie{Name: "admin_token", Value: token})
		w := httptest.NewRecorder()
		app.mux.ServeHTTP(w, req)
		return w.Code
	}

	if code := del(1); code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", code)
	}
	if code := del(1); code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", code)
	}
}
