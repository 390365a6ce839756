package dto

import (
	"time"

	model "todo-service.com/todo-service/internal/models"
)

type TaskCreate struct {
	Title       string  `json:"title" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=600"`
	Position    int     `json:"position"`
	Priority    int     `json:"priority" validate:"priority"`
}

type TaskUpdate struct {
	Title       Optional[string] `json:"title" validate:"omitempty,min=1,max=100"`
	Description Optional[string] `json:"description" validate:"omitempty,max=600"`
	Position    Optional[int]    `json:"position"`
	Priority    Optional[int]    `json:"priority" validate:"omitempty,priority"`
}

// Empty reports whether the request names no field at all.
func (u *TaskUpdate) Empty() bool {
	return !u.Title.Set && !u.Description.Set && !u.Position.Set && !u.Priority.Set
}

// Changes returns the column assignments for the fields present in the request.
func (u *TaskUpdate) Changes() map[string]interface{} {
	changes := make(map[string]interface{})

	if u.Title.Present() {
		changes["title"] = u.Title.Value
	}
	if u.Description.Set {
		changes["description"] = u.Description.Ptr()
	}
	if u.Position.Present() {
		changes["position"] = u.Position.Value
	}
	if u.Priority.Present() {
		changes["priority"] = u.Priority.Value
	}

	return changes
}

type TaskPublic struct {
	ID          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Position    int       `json:"position"`
	Priority    int       `json:"priority"`
}

func NewTaskPublic(task *model.Task) TaskPublic {
	return TaskPublic{
		ID:          task.ID,
		Timestamp:   task.Timestamp,
		Title:       task.Title,
		Description: task.Description,
		Position:    task.Position,
		Priority:    task.Priority,
	}
}

func NewTaskPublicList(tasks []model.Task) []TaskPublic {
	out := make([]TaskPublic, 0, len(tasks))
	for i := range tasks {
		out = append(out, NewTaskPublic(&tasks[i]))
	}
	return out
}

type DeleteResponse struct {
	OK bool `json:"ok"`
}

type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
