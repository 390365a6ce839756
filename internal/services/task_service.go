package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	dto "todo-service.com/todo-service/internal/data_models"
	"todo-service.com/todo-service/internal/database"
	"todo-service.com/todo-service/internal/exceptions"
	model "todo-service.com/todo-service/internal/models"
	repository "todo-service.com/todo-service/internal/repositories"
)

// MaxListLimit caps the page size of List.
const MaxListLimit = 100

type TaskService struct {
	gateway  *database.Gateway
	maxTasks int
	logger   logrus.FieldLogger
	now      func() time.Time
}

type Option func(*TaskService)

// WithClock overrides the time source used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *TaskService) {
		s.now = now
	}
}

// NewTaskService builds the service. maxTasks <= 0 disables the creation quota.
func NewTaskService(gateway *database.Gateway, maxTasks int, logger logrus.FieldLogger, opts ...Option) *TaskService {
	s := &TaskService{
		gateway:  gateway,
		maxTasks: maxTasks,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTask enforces the quota and inserts the task. The count and the
// insert are separate statements, so concurrent creates may overshoot the
// quota.
func (s *TaskService) CreateTask(ctx context.Context, in *dto.TaskCreate) (*dto.TaskPublic, error) {
	var out dto.TaskPublic

	err := s.gateway.Session(ctx, func(tx *gorm.DB) error {
		repo := repository.NewTaskRepository(tx)

		if err := s.checkQuota(ctx, repo); err != nil {
			return err
		}

		task := &model.Task{
			Title:       in.Title,
			Description: in.Description,
			Position:    in.Position,
			Priority:    in.Priority,
			Timestamp:   s.now().UTC(),
		}
		if err := repo.Create(ctx, task); err != nil {
			return err
		}

		out = dto.NewTaskPublic(task)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("task_id", out.ID).Info("task created")
	return &out, nil
}

func (s *TaskService) checkQuota(ctx context.Context, repo *repository.TaskRepository) error {
	if s.maxTasks <= 0 {
		return nil
	}

	n, err := repo.Count(ctx)
	if err != nil {
		return err
	}

	if n >= int64(s.maxTasks) {
		s.logger.WithFields(logrus.Fields{"count": n, "max_tasks": s.maxTasks}).Warn("task quota reached")
		return exceptions.TaskQuotaExceeded(s.maxTasks)
	}
	return nil
}

func (s *TaskService) GetTask(ctx context.Context, id int64) (*dto.TaskPublic, error) {
	var out dto.TaskPublic

	err := s.gateway.Session(ctx, func(tx *gorm.DB) error {
		task, err := repository.NewTaskRepository(tx).FindByID(ctx, id)
		if err != nil {
			return err
		}
		out = dto.NewTaskPublic(task)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

// ListTasks returns tasks in ascending id order. limit is clamped to MaxListLimit.
func (s *TaskService) ListTasks(ctx context.Context, offset, limit int) ([]dto.TaskPublic, error) {
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	var out []dto.TaskPublic

	err := s.gateway.Session(ctx, func(tx *gorm.DB) error {
		tasks, err := repository.NewTaskRepository(tx).List(ctx, offset, limit)
		if err != nil {
			return err
		}
		out = dto.NewTaskPublicList(tasks)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (s *TaskService) CountTasks(ctx context.Context) (int64, error) {
	var n int64

	err := s.gateway.Session(ctx, func(tx *gorm.DB) error {
		var err error
		n, err = repository.NewTaskRepository(tx).Count(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}

	return n, nil
}

// UpdateTask applies the fields present in the request and returns the
// merged record.
func (s *TaskService) UpdateTask(ctx context.Context, id int64, in *dto.TaskUpdate) (*dto.TaskPublic, error) {
	var out dto.TaskPublic

	err := s.gateway.Session(ctx, func(tx *gorm.DB) error {
		repo := repository.NewTaskRepository(tx)

		if _, err := repo.FindByID(ctx, id); err != nil {
			return err
		}

		if !in.Empty() {
			if err := repo.Update(ctx, id, in.Changes()); err != nil {
				return err
			}
		}

		task, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		out = dto.NewTaskPublic(task)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("task_id", id).Info("task updated")
	return &out, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id int64) error {
	err := s.gateway.Session(ctx, func(tx *gorm.DB) error {
		return repository.NewTaskRepository(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.WithField("task_id", id).Info("task deleted")
	return nil
}

func (s *TaskService) Healthy(ctx context.Context) error {
	return s.gateway.Ping(ctx)
}
