package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	middleware "todo-service.com/todo-service/internal/http/middlewares"
	"todo-service.com/todo-service/internal/http/validators"
	"todo-service.com/todo-service/internal/ratelimit"
	"todo-service.com/todo-service/internal/services"
)

type ServerOptions struct {
	// Limiter throttles requests per client IP. Nil disables rate limiting.
	Limiter ratelimit.Limiter
	// AllowOrigins lists the browser origins allowed to call the API.
	// Empty disables CORS headers.
	AllowOrigins []string
}

// NewServer builds the echo instance serving the todo API.
func NewServer(taskService *services.TaskService, logger logrus.FieldLogger, opts ServerOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.New()
	e.HTTPErrorHandler = ErrorHandler(logger)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(logger))
	if len(opts.AllowOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: opts.AllowOrigins,
			AllowMethods: []string{
				http.MethodGet, http.MethodHead, http.MethodPost,
				http.MethodPatch, http.MethodDelete, http.MethodOptions,
			},
			AllowHeaders:  []string{echo.HeaderContentType, echo.HeaderXRequestID},
			ExposeHeaders: []string{echo.HeaderXRequestID},
		}))
	}
	if opts.Limiter != nil {
		e.Use(middleware.RateLimiter(opts.Limiter, logger))
	}

	Register(e, NewHandler(taskService))
	return e
}
