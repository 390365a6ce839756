package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	dto "todo-service.com/todo-service/internal/data_models"
	"todo-service.com/todo-service/internal/database"
	"todo-service.com/todo-service/internal/ratelimit"
	"todo-service.com/todo-service/internal/services"
)

func setupServer(t *testing.T, maxTasks int, limiter ratelimit.Limiter) *echo.Echo {
	t.Helper()
	return setupServerWithOptions(t, maxTasks, ServerOptions{Limiter: limiter})
}

func setupServerWithOptions(t *testing.T, maxTasks int, opts ServerOptions) *echo.Echo {
	t.Helper()

	gw, err := database.Open(database.Options{
		DSN:          filepath.Join(t.TempDir(), "todo.db"),
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = gw.Close() })

	if err := gw.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return NewServer(services.NewTaskService(gw, maxTasks, logger), logger, opts)
}

func do(t *testing.T, e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func createTask(t *testing.T, e *echo.Echo, body string) dto.TaskPublic {
	t.Helper()

	rec := do(t, e, http.MethodPost, "/todos/", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	return decode[dto.TaskPublic](t, rec)
}

func TestCreateTask_ReturnsServerAssignedFields(t *testing.T) {
	e := setupServer(t, 50, nil)

	rec := do(t, e, http.MethodPost, "/todos/", `{"title":"Buy milk"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, key := range []string{"id", "timestamp", "title", "description", "position", "priority"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("expected key %q in response %s", key, rec.Body.String())
		}
	}

	task := decode[dto.TaskPublic](t, rec)
	if task.ID == 0 {
		t.Error("expected integer id")
	}
	if task.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
	if task.Position != 0 || task.Priority != 0 {
		t.Errorf("expected defaults of 0, got position=%d priority=%d", task.Position, task.Priority)
	}
}

func TestCreateTask_IgnoresClientIDAndTimestamp(t *testing.T) {
	e := setupServer(t, 50, nil)

	task := createTask(t, e, `{"id":777,"timestamp":"2001-01-01T00:00:00Z","title":"Sneaky"}`)

	if task.ID == 777 {
		t.Error("expected id to be server-assigned")
	}
	if task.Timestamp.Year() == 2001 {
		t.Error("expected timestamp to be server-assigned")
	}
}

func TestCreateThenGet(t *testing.T) {
	e := setupServer(t, 50, nil)

	created := createTask(t, e, `{"title":"Water plants","description":"balcony","position":2,"priority":3}`)

	rec := do(t, e, http.MethodGet, fmt.Sprintf("/todos/%d", created.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	fetched := decode[dto.TaskPublic](t, rec)
	if fetched.ID != created.ID || fetched.Title != created.Title ||
		fetched.Position != created.Position || fetched.Priority != created.Priority ||
		!fetched.Timestamp.Equal(created.Timestamp) ||
		fetched.Description == nil || *fetched.Description != "balcony" {
		t.Errorf("fetched %+v does not match created %+v", fetched, created)
	}
}

func TestCreateTask_Validation(t *testing.T) {
	e := setupServer(t, 50, nil)

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"missing title", `{"description":"x"}`, http.StatusUnprocessableEntity},
		{"title too long", fmt.Sprintf(`{"title":%q}`, strings.Repeat("t", 101)), http.StatusUnprocessableEntity},
		{"description too long", fmt.Sprintf(`{"title":"ok","description":%q}`, strings.Repeat("d", 601)), http.StatusUnprocessableEntity},
		{"priority out of range", `{"title":"ok","priority":7}`, http.StatusUnprocessableEntity},
		{"wrong type", `{"title":42}`, http.StatusUnprocessableEntity},
		{"malformed", `{"title":`, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, e, http.MethodPost, "/todos/", tc.body)
			if rec.Code != tc.status {
				t.Errorf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
		})
	}

	count := decode[int64](t, do(t, e, http.MethodGet, "/todos/count", ""))
	if count != 0 {
		t.Errorf("expected rejected requests to leave no rows, got %d", count)
	}
}

func TestCreateTask_WrongBodyShape(t *testing.T) {
	e := setupServer(t, 50, nil)

	rec := do(t, e, http.MethodPost, "/todos/", `[]`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decode[dto.ErrorResponse](t, rec)
	if got := body.Errors["body"]; got != "must be a JSON object" {
		t.Errorf("expected neutral body message, got %q", got)
	}
	if strings.Contains(rec.Body.String(), "dto.") {
		t.Errorf("response leaks a Go type name: %s", rec.Body.String())
	}

	rec = do(t, e, http.MethodPost, "/todos/", `{"title":42}`)
	body = decode[dto.ErrorResponse](t, rec)
	if got := body.Errors["title"]; got != "must be a string" {
		t.Errorf("expected title type message, got %q", got)
	}
}

func TestCreateTask_QuotaExceeded(t *testing.T) {
	const quota = 3
	e := setupServer(t, quota, nil)

	for i := 0; i < quota; i++ {
		createTask(t, e, `{"title":"Title"}`)
	}

	rec := do(t, e, http.MethodPost, "/todos/", `{"title":"One more"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	body := decode[dto.ErrorResponse](t, rec)
	if !strings.Contains(body.Message, "maximum of 3 tasks") {
		t.Errorf("unexpected message %q", body.Message)
	}

	count := decode[int64](t, do(t, e, http.MethodGet, "/todos/count", ""))
	if count != quota {
		t.Errorf("expected count %d, got %d", quota, count)
	}
}

func TestListTasks_Pagination(t *testing.T) {
	e := setupServer(t, 0, nil)
	for i := 0; i < 5; i++ {
		createTask(t, e, fmt.Sprintf(`{"title":"task %d"}`, i))
	}

	first := decode[[]dto.TaskPublic](t, do(t, e, http.MethodGet, "/todos/?offset=0&limit=2", ""))
	second := decode[[]dto.TaskPublic](t, do(t, e, http.MethodGet, "/todos/?offset=2&limit=2", ""))
	all := decode[[]dto.TaskPublic](t, do(t, e, http.MethodGet, "/todos", ""))

	if len(first) != 2 || len(second) != 2 || len(all) != 5 {
		t.Fatalf("unexpected page sizes %d, %d, %d", len(first), len(second), len(all))
	}
	for i, task := range append(first, second...) {
		if task.ID != all[i].ID {
			t.Errorf("position %d: expected id %d, got %d", i, all[i].ID, task.ID)
		}
	}
}

func TestListTasks_EmptyIsArray(t *testing.T) {
	e := setupServer(t, 0, nil)

	rec := do(t, e, http.MethodGet, "/todos/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("expected [], got %s", rec.Body.String())
	}
}

func TestListTasks_BadQuery(t *testing.T) {
	e := setupServer(t, 0, nil)

	for _, target := range []string{"/todos/?offset=-1", "/todos/?limit=0", "/todos/?limit=abc"} {
		rec := do(t, e, http.MethodGet, target, "")
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s: expected 422, got %d", target, rec.Code)
		}
	}
}

func TestUpdateTask_Partial(t *testing.T) {
	e := setupServer(t, 0, nil)
	created := createTask(t, e, `{"title":"Read book","description":"chapter 3","position":5}`)

	rec := do(t, e, http.MethodPatch, fmt.Sprintf("/todos/%d", created.ID), `{"priority":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	updated := decode[dto.TaskPublic](t, rec)
	if updated.Priority != 2 {
		t.Errorf("expected priority 2, got %d", updated.Priority)
	}
	if updated.Title != "Read book" || updated.Position != 5 ||
		updated.Description == nil || *updated.Description != "chapter 3" {
		t.Errorf("expected other fields unchanged, got %+v", updated)
	}
	if !updated.Timestamp.Equal(created.Timestamp) || updated.ID != created.ID {
		t.Errorf("id or timestamp changed: %+v", updated)
	}
}

func TestUpdateTask_NullHandling(t *testing.T) {
	e := setupServer(t, 0, nil)
	created := createTask(t, e, `{"title":"Read book","description":"chapter 3"}`)
	target := fmt.Sprintf("/todos/%d", created.ID)

	rec := do(t, e, http.MethodPatch, target, `{"description":null}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if updated := decode[dto.TaskPublic](t, rec); updated.Description != nil {
		t.Errorf("expected description to be cleared, got %q", *updated.Description)
	}

	rec = do(t, e, http.MethodPatch, target, `{"title":null}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for null title, got %d", rec.Code)
	}
}

func TestMissingTask(t *testing.T) {
	e := setupServer(t, 0, nil)

	cases := []struct {
		method string
		body   string
	}{
		{http.MethodGet, ""},
		{http.MethodPatch, `{"title":"x"}`},
		{http.MethodDelete, ""},
	}

	for _, tc := range cases {
		rec := do(t, e, tc.method, "/todos/9999", tc.body)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", tc.method, rec.Code)
		}
	}
}

func TestInvalidTaskID(t *testing.T) {
	e := setupServer(t, 0, nil)

	rec := do(t, e, http.MethodGet, "/todos/abc", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
}

func TestDeleteTask(t *testing.T) {
	e := setupServer(t, 0, nil)
	created := createTask(t, e, `{"title":"Take out trash"}`)
	target := fmt.Sprintf("/todos/%d", created.ID)

	rec := do(t, e, http.MethodDelete, target, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := decode[dto.DeleteResponse](t, rec); !body.OK {
		t.Errorf("expected ok=true, got %s", rec.Body.String())
	}

	if rec := do(t, e, http.MethodGet, target, ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
	if rec := do(t, e, http.MethodDelete, target, ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	e := setupServer(t, 0, nil)

	rec := do(t, e, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	e := setupServer(t, 0, ratelimit.NewMemoryLimiter(2, time.Minute))

	for i := 0; i < 2; i++ {
		if rec := do(t, e, http.MethodGet, "/todos/count", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}

	if rec := do(t, e, http.MethodGet, "/todos/count", ""); rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	const origin = "http://localhost:3000"
	e := setupServerWithOptions(t, 0, ServerOptions{AllowOrigins: []string{origin}})

	req := httptest.NewRequest(http.MethodGet, "/todos/count", nil)
	req.Header.Set(echo.HeaderOrigin, origin)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != origin {
		t.Errorf("expected allow-origin %q, got %q", origin, got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/todos/1", nil)
	req.Header.Set(echo.HeaderOrigin, origin)
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPatch)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderAccessControlAllowMethods); !strings.Contains(got, http.MethodPatch) {
		t.Errorf("expected PATCH in allowed methods, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/todos/count", nil)
	req.Header.Set(echo.HeaderOrigin, "http://evil.example")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "" {
		t.Errorf("expected no allow-origin for unknown origin, got %q", got)
	}
}

func TestCORS_DisabledWithoutOrigins(t *testing.T) {
	e := setupServer(t, 0, nil)

	req := httptest.NewRequest(http.MethodGet, "/todos/count", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "" {
		t.Errorf("expected no CORS headers, got allow-origin %q", got)
	}
}
