// Package todo holds the business rules for to-do tasks owned by users.
package todo

import (
	"context"

	"github.com/marcodd23/go-todo-service/internal/domain/user"
	"github.com/marcodd23/go-todo-service/pkg/extconn"
	"github.com/marcodd23/go-todo-service/pkg/validator"
	"github.com/pkg/errors"
)

// TodoTask - a task owned by a user.
type TodoTask struct {
	ID          int32
	OwnerUserID int32
	Description string
}

// NewTask - content of a task to create.
type NewTask struct {
	Description string `validate:"required,max=1000"`
}

// UpdateTask - new content for an existing task.
type UpdateTask struct {
	Description string `validate:"required,max=1000"`
}

var (
	// ErrInvalidTask - the task content failed validation.
	ErrInvalidTask = errors.New("invalid task")
	// ErrTaskNotFound - no task has the given id.
	ErrTaskNotFound = errors.New("task not found")
)

// InvalidTaskError carries the validation details. It matches ErrInvalidTask with errors.Is.
type InvalidTaskError struct {
	Validation *validator.ValidationError
}

func (e *InvalidTaskError) Error() string {
	return "invalid task: " + e.Validation.Error()
}

func (e *InvalidTaskError) Is(target error) bool {
	return target == ErrInvalidTask
}

func (e *InvalidTaskError) Unwrap() error {
	return e.Validation
}

// Reader - an external system which can read tasks.
type Reader interface {
	TasksForUser(ctx context.Context, ext extconn.ExternalConnectivity, userID int32) ([]TodoTask, error)
	// UserTaskByID returns nil when the user owns no task with the given id.
	UserTaskByID(ctx context.Context, ext extconn.ExternalConnectivity, userID, taskID int32) (*TodoTask, error)
}

// Writer - an external system which can store tasks.
type Writer interface {
	CreateTaskForUser(ctx context.Context, ext extconn.ExternalConnectivity, userID int32, task NewTask) (int32, error)
	// UpdateTask and DeleteTask report whether a task with the given id existed.
	UpdateTask(ctx context.Context, ext extconn.ExternalConnectivity, taskID int32, update UpdateTask) (bool, error)
	DeleteTask(ctx context.Context, ext extconn.ExternalConnectivity, taskID int32) (bool, error)
}

// Port - task business logic exposed to the API.
type Port interface {
	TasksForUser(ctx context.Context, ext extconn.ExternalConnectivity, userID int32, detector user.Detector, reader Reader) ([]TodoTask, error)
	TaskForUser(ctx context.Context, ext extconn.ExternalConnectivity, userID, taskID int32, detector user.Detector, reader Reader) (*TodoTask, error)
	CreateTask(ctx context.Context, ext extconn.ExternalConnectivity, userID int32, task NewTask, detector user.Detector, writer Writer) (int32, error)
	UpdateTask(ctx context.Context, ext extconn.ExternalConnectivity, taskID int32, update UpdateTask, writer Writer) error
	DeleteTask(ctx context.Context, ext extconn.ExternalConnectivity, taskID int32, writer Writer) error
}

// Service - implements Port.
type Service struct{}

var _ Port = Service{}

func (Service) TasksForUser(ctx context.Context, ext extconn.ExternalConnectivity, userID int32, detector user.Detector, reader Reader) ([]TodoTask, error) {
	if err := user.VerifyUserExists(ctx, ext, userID, detector); err != nil {
		return nil, err
	}

	tasks, err := reader.TasksForUser(ctx, ext, userID)
	if err != nil {
		return nil, errors.Wrap(err, "trying to look up a user's tasks")
	}

	return tasks, nil
}

// TaskForUser - nil when the user owns no such task.
func (Service) TaskForUser(ctx context.Context, ext extconn.ExternalConnectivity, userID, taskID int32, detector user.Detector, reader Reader) (*TodoTask, error) {
	if err := user.VerifyUserExists(ctx, ext, userID, detector); err != nil {
		return nil, err
	}

	task, err := reader.UserTaskByID(ctx, ext, userID, taskID)
	if err != nil {
		return nil, errors.Wrap(err, "trying to look up a user's task by id")
	}

	return task, nil
}

// CreateTask - validates the task and stores it for an existing user.
// Run it inside a transaction so that the owner check and the insert are atomic.
func (Service) CreateTask(ctx context.Context, ext extconn.ExternalConnectivity, userID int32, task NewTask, detector user.Detector, writer Writer) (int32, error) {
	if err := validateTask(task); err != nil {
		return 0, err
	}

	if err := user.VerifyUserExists(ctx, ext, userID, detector); err != nil {
		return 0, err
	}

	id, err := writer.CreateTaskForUser(ctx, ext, userID, task)
	if err != nil {
		return 0, errors.Wrap(err, "trying to create a task for a user")
	}

	return id, nil
}

func (Service) UpdateTask(ctx context.Context, ext extconn.ExternalConnectivity, taskID int32, update UpdateTask, writer Writer) error {
	if err := validateTask(update); err != nil {
		return err
	}

	found, err := writer.UpdateTask(ctx, ext, taskID, update)
	if err != nil {
		return errors.Wrap(err, "trying to update a task")
	}

	if !found {
		return ErrTaskNotFound
	}

	return nil
}

func (Service) DeleteTask(ctx context.Context, ext extconn.ExternalConnectivity, taskID int32, writer Writer) error {
	found, err := writer.DeleteTask(ctx, ext, taskID)
	if err != nil {
		return errors.Wrap(err, "trying to delete a task")
	}

	if !found {
		return ErrTaskNotFound
	}

	return nil
}

func validateTask(task any) error {
	details := validator.NewValidator().ValidateStruct(task)
	if len(details) > 0 {
		return &InvalidTaskError{Validation: validator.NewValidationError(details)}
	}

	return nil
}
