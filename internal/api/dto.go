package api

import (
	"github.com/marcodd23/go-todo-service/internal/domain/todo"
	"github.com/marcodd23/go-todo-service/internal/domain/user"
)

// CreateUserRequest - body of POST /users.
type CreateUserRequest struct {
	FirstName string `json:"first_name" validate:"max=30"`
	LastName  string `json:"last_name" validate:"max=50"`
}

// NewTaskRequest - body of POST /users/:user_id/tasks.
type NewTaskRequest struct {
	Description string `json:"item_desc" validate:"required,max=1000"`
}

// UpdateTaskRequest - body of PATCH /tasks/:task_id.
type UpdateTaskRequest struct {
	Description string `json:"description" validate:"required,max=1000"`
}

type UserResponse struct {
	ID        int32  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type TaskResponse struct {
	ID          int32  `json:"id"`
	Description string `json:"description"`
}

// InsertedResponse - id of a newly created entity.
type InsertedResponse struct {
	ID int32 `json:"id"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// MessageResponse - body of the tracing demo routes.
type MessageResponse struct {
	Message string `json:"message"`
}

func toUserResponses(users []user.TodoUser) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, UserResponse{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName})
	}

	return out
}

func toTaskResponse(task todo.TodoTask) TaskResponse {
	return TaskResponse{ID: task.ID, Description: task.Description}
}

func toTaskResponses(tasks []todo.TodoTask) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, toTaskResponse(task))
	}

	return out
}
