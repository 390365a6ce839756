package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"

	"github.com/labstack/echo/v4"

	dto "todo-service.com/todo-service/internal/data_models"
	"todo-service.com/todo-service/internal/exceptions"
	"todo-service.com/todo-service/internal/services"
)

type Handler struct {
	taskService *services.TaskService
	binder      echo.DefaultBinder
}

func NewHandler(taskService *services.TaskService) *Handler {
	return &Handler{
		taskService: taskService,
	}
}

func (h *Handler) CreateTask(c echo.Context) error {
	var req dto.TaskCreate
	if err := h.bindBody(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, task)
}

func (h *Handler) ListTasks(c echo.Context) error {
	offset, limit := 0, services.MaxListLimit

	err := echo.QueryParamsBinder(c).
		Int("offset", &offset).
		Int("limit", &limit).
		BindError()
	if err != nil {
		return bindingFailure(err)
	}

	tasks, err := h.taskService.ListTasks(c.Request().Context(), offset, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tasks)
}

func (h *Handler) CountTasks(c echo.Context) error {
	n, err := h.taskService.CountTasks(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, n)
}

func (h *Handler) GetTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.GetTask(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) UpdateTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	var req dto.TaskUpdate
	if err := h.bindBody(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), id, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.DeleteResponse{OK: true})
}

func (h *Handler) Health(c echo.Context) error {
	if err := h.taskService.Healthy(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "unavailable"})
	}
	return c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
}

// bindBody decodes only the JSON body. A body whose values have the wrong
// type is a validation failure; anything else that fails to decode is
// malformed.
func (h *Handler) bindBody(c echo.Context, v interface{}) error {
	err := h.binder.BindBody(c, v)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return exceptions.Validation(map[string]string{
			field: "must be " + jsonKind(typeErr.Type),
		})
	}

	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code == http.StatusUnsupportedMediaType {
		return err
	}

	return exceptions.ErrInvalidJSON
}

// jsonKind names t the way a client sees it on the wire.
func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct, reflect.Map:
		return "a JSON object"
	case reflect.Slice, reflect.Array:
		return "a JSON array"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	}
	return "a valid JSON value"
}

func taskID(c echo.Context) (int64, error) {
	var id int64
	if err := echo.PathParamsBinder(c).Int64("id", &id).BindError(); err != nil {
		return 0, exceptions.ErrInvalidTaskID
	}
	return id, nil
}

func bindingFailure(err error) error {
	var be *echo.BindingError
	if errors.As(err, &be) {
		return exceptions.Validation(map[string]string{
			be.Field: be.Field + " must be an integer",
		})
	}
	return err
}
