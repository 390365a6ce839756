package http

import (
	"github.com/labstack/echo/v4"
)

func Register(e *echo.Echo, h *Handler) {
	e.GET("/health", h.Health)

	todos := e.Group("/todos")
	todos.POST("", h.CreateTask)
	todos.POST("/", h.CreateTask)
	todos.GET("", h.ListTasks)
	todos.GET("/", h.ListTasks)
	todos.GET("/count", h.CountTasks)
	todos.GET("/:id", h.GetTask)
	todos.PATCH("/:id", h.UpdateTask)
	todos.DELETE("/:id", h.DeleteTask)
}
