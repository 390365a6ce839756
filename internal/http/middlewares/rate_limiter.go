package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"todo-service.com/todo-service/internal/exceptions"
	"todo-service.com/todo-service/internal/ratelimit"
)

// RateLimiter rejects clients over their per-window budget. Limiter
// failures let the request through.
func RateLimiter(limiter ratelimit.Limiter, logger logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowed, err := limiter.Allow(c.Request().Context(), c.RealIP())
			if err != nil {
				logger.WithError(err).Warn("rate limiter unavailable")
				return next(c)
			}

			if !allowed {
				return exceptions.ErrRateLimited
			}

			return next(c)
		}
	}
}
