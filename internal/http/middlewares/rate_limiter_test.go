package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"todo-service.com/todo-service/internal/exceptions"
	"todo-service.com/todo-service/internal/ratelimit"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("connection refused")
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func serve(mw echo.MiddlewareFunc) error {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/todos/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	return mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c)
}

func TestRateLimiter_RejectsOverLimit(t *testing.T) {
	mw := RateLimiter(ratelimit.NewMemoryLimiter(2, time.Minute), quietLogger())

	for i := 0; i < 2; i++ {
		if err := serve(mw); err != nil {
			t.Fatalf("request %d: unexpected error %v", i, err)
		}
	}

	err := serve(mw)
	if !errors.Is(err, exceptions.ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	mw := RateLimiter(failingLimiter{}, quietLogger())

	if err := serve(mw); err != nil {
		t.Errorf("expected request to pass when limiter fails, got %v", err)
	}
}
