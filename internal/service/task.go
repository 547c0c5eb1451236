package service

import (
	"context"
	"errors"
	"time"

	"github.com/taskhive/taskhive-go/internal/model"
	"github.com/taskhive/taskhive-go/internal/repository"
)

var (
	ErrTaskFieldsRequired = errors.New("Title and description are required")
	ErrTaskNotFound       = errors.New("Task not found")
)

// TaskStore is the task store consumed by TaskService.
type TaskStore interface {
	Insert(ctx context.Context, task *model.Task) error
	List(ctx context.Context) ([]model.Task, error)
	GetByID(ctx context.Context, id int64) (*model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id int64) error
}

// TaskService handles task CRUD business logic.
// Tasks are a single shared list; access is gated by authentication,
// not partitioned by user.
type TaskService struct {
	store TaskStore
}

// NewTaskService creates a new TaskService.
func NewTaskService(store TaskStore) *TaskService {
	return &TaskService{store: store}
}

// Create stores a new task. Completed always starts false.
func (s *TaskService) Create(ctx context.Context, req model.CreateTaskRequest) (model.TaskResponse, error) {
	if req.Title == "" || req.Description == "" {
		return model.TaskResponse{}, ErrTaskFieldsRequired
	}

	task := &model.Task{
		Title:       req.Title,
		Description: req.Description,
		Completed:   false,
	}

	if err := s.store.Insert(ctx, task); err != nil {
		return model.TaskResponse{}, err
	}
	task.CreatedAt = time.Now().UTC()
	task.UpdatedAt = task.CreatedAt

	return taskToResponse(task), nil
}

// List returns all tasks.
func (s *TaskService) List(ctx context.Context) ([]model.TaskResponse, error) {
	tasks, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]model.TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = taskToResponse(&t)
	}
	return result, nil
}

// Get retrieves a task by ID.
func (s *TaskService) Get(ctx context.Context, id int64) (model.TaskResponse, error) {
	task, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return model.TaskResponse{}, ErrTaskNotFound
		}
		return model.TaskResponse{}, err
	}

	return taskToResponse(task), nil
}

// Update applies a partial update to a task. Fields absent from the
// request keep their current values; the merged result is re-validated.
func (s *TaskService) Update(ctx context.Context, id int64, req model.UpdateTaskRequest) (model.TaskResponse, error) {
	task, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return model.TaskResponse{}, ErrTaskNotFound
		}
		return model.TaskResponse{}, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}

	if task.Title == "" || task.Description == "" {
		return model.TaskResponse{}, ErrTaskFieldsRequired
	}

	if err := s.store.Update(ctx, task); err != nil {
		return model.TaskResponse{}, err
	}
	task.UpdatedAt = time.Now().UTC()

	return taskToResponse(task), nil
}

// Delete removes a task by ID.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, repository.ErrTaskNotFound) {
		return ErrTaskNotFound
	}
	return err
}

// taskToResponse converts a Task to its API view.
func taskToResponse(t *model.Task) model.TaskResponse {
	return model.TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
