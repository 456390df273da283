package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/marcodd23/go-todo-service/internal/domain/todo"
	"github.com/marcodd23/go-todo-service/internal/domain/user"
	"github.com/marcodd23/go-todo-service/pkg/extconn"
	"github.com/marcodd23/go-todo-service/pkg/logx"
	"github.com/marcodd23/go-todo-service/pkg/validator"
	"github.com/pkg/errors"
)

// Error codes returned in ErrorResponse.ErrorCode.
const (
	CodeInvalidInput      = "invalid_input"
	CodeNotFound          = "not_found"
	CodeAlreadyExists     = "already_exists"
	CodeInternalError     = "internal_error"
	CodeTransactionFailed = "transaction_failed"
	CodeUnavailable       = "unavailable"
)

// ErrorResponse - body of every non-2xx response.
type ErrorResponse struct {
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
	ExtraInfo        any    `json:"extra_info"`
}

// Error is an API failure with its HTTP status.
type Error struct {
	Status int
	Body   ErrorResponse
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Body.ErrorCode, e.Body.ErrorDescription, e.cause)
	}

	return fmt.Sprintf("%s: %s", e.Body.ErrorCode, e.Body.ErrorDescription)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(status int, code, description string, extra any, cause error) *Error {
	return &Error{
		Status: status,
		Body:   ErrorResponse{ErrorCode: code, ErrorDescription: description, ExtraInfo: extra},
		cause:  cause,
	}
}

func invalidInput(extra any, cause error) *Error {
	return newError(fiber.StatusBadRequest, CodeInvalidInput, "Submitted data was invalid.", extra, cause)
}

func invalidPathParam(name string) *Error {
	return invalidInput(fmt.Sprintf("path parameter '%s' must be a positive integer", name), nil)
}

func taskNotFound() *Error {
	return newError(fiber.StatusNotFound, CodeNotFound, "The specified task does not exist.", nil, todo.ErrTaskNotFound)
}

// toError maps anything a route returns to the API failure it represents.
func toError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var validationErr *validator.ValidationError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &validationErr):
		return invalidInput(validationErr.GetErrorsDetails(), err)
	case errors.Is(err, user.ErrUserAlreadyExists):
		return newError(fiber.StatusConflict, CodeAlreadyExists,
			"A user already exists in the system with the given information.", nil, err)
	case user.IsDoesNotExist(err):
		return newError(fiber.StatusNotFound, CodeNotFound,
			"Could not find a user matching the given information.", nil, err)
	case errors.Is(err, todo.ErrTaskNotFound):
		return taskNotFound()
	case extconn.IsTxCommit(err):
		return newError(fiber.StatusInternalServerError, CodeTransactionFailed,
			"The operation succeeded but could not be saved. Please try again.", nil, err)
	case errors.As(err, &fiberErr):
		if fiberErr.Code == fiber.StatusNotFound {
			return newError(fiberErr.Code, CodeNotFound, "The requested entity could not be found.", nil, err)
		}

		if fiberErr.Code < fiber.StatusInternalServerError {
			return newError(fiberErr.Code, CodeInvalidInput, fiberErr.Message, nil, err)
		}
	}

	return newError(fiber.StatusInternalServerError, CodeInternalError,
		"Could not access data to complete your request", nil, err)
}

// ErrorHandler renders route errors as ErrorResponse. Server side failures are logged.
func ErrorHandler(c *fiber.Ctx, err error) error {
	apiErr := toError(err)

	if apiErr.Status >= fiber.StatusInternalServerError {
		logx.GetLogger().LogError(c.UserContext(),
			fmt.Sprintf("%s %s failed with %s", c.Method(), c.Path(), apiErr.Body.ErrorCode), err)
	}

	return c.Status(apiErr.Status).JSON(apiErr.Body)
}
