package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"todo-service.com/todo-service/internal/exceptions"
	model "todo-service.com/todo-service/internal/models"
)

// TaskRepository issues statements through a single session handed out by
// the database gateway.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id int64) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, exceptions.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task %d: %w", id, err)
	}
	return &task, nil
}

func (r *TaskRepository) List(ctx context.Context, offset, limit int) ([]model.Task, error) {
	if limit <= 0 {
		return nil, exceptions.ErrInvalidLimit
	}
	if offset < 0 {
		return nil, exceptions.ErrInvalidOffset
	}

	tasks := make([]model.Task, 0, limit)
	err := r.db.WithContext(ctx).
		Order("id asc").
		Offset(offset).
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

// Update writes only the given columns. id and timestamp are never touched.
func (r *TaskRepository) Update(ctx context.Context, id int64, changes map[string]interface{}) error {
	delete(changes, "id")
	delete(changes, "timestamp")
	if len(changes) == 0 {
		return nil
	}

	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", id).
		Updates(changes)

	if res.Error != nil {
		return fmt.Errorf("update task %d: %w", id, res.Error)
	}

	if res.RowsAffected == 0 {
		return exceptions.ErrTaskNotFound
	}

	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Task{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete task %d: %w", id, res.Error)
	}

	if res.RowsAffected == 0 {
		return exceptions.ErrTaskNotFound
	}

	return nil
}
