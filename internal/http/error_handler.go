package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	dto "todo-service.com/todo-service/internal/data_models"
	"todo-service.com/todo-service/internal/exceptions"
)

// ErrorHandler renders exceptions with their status. Unknown errors,
// including store failures, become a generic 500.
func ErrorHandler(logger logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		body := dto.ErrorResponse{Message: "internal server error"}

		var exc *exceptions.Exception
		var he *echo.HTTPError

		switch {
		case errors.As(err, &exc):
			status = exc.StatusCode
			body = dto.ErrorResponse{Message: exc.Message, Errors: exc.Fields}
		case errors.As(err, &he):
			status = he.Code
			body = dto.ErrorResponse{Message: fmt.Sprint(he.Message)}
		default:
			logger.WithError(err).
				WithField("uri", c.Request().RequestURI).
				Error("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.WithError(err).Error("failed to write error response")
		}
	}
}
