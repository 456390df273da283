// Package api exposes the user and task services over HTTP.
package api

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/marcodd23/go-todo-service/internal/domain/todo"
	"github.com/marcodd23/go-todo-service/internal/domain/user"
	"github.com/marcodd23/go-todo-service/internal/metrics"
	"github.com/marcodd23/go-todo-service/pkg/extconn"
	"github.com/marcodd23/go-todo-service/pkg/httpx"
	"github.com/marcodd23/go-todo-service/pkg/logx"
	"github.com/marcodd23/go-todo-service/pkg/utilx"
	"github.com/marcodd23/go-todo-service/pkg/validator"
)

// UserPersistence - every driven port of the user service.
type UserPersistence interface {
	user.Reader
	user.Writer
	user.Detector
}

// TaskPersistence - every driven port of the task service.
type TaskPersistence interface {
	todo.Reader
	todo.Writer
}

// HealthCheck probes the external systems behind ext.
type HealthCheck func(ctx context.Context, ext extconn.ExternalConnectivity) error

// Dependencies - everything the routes need.
type Dependencies struct {
	Ext       extconn.TransactableExternalConnectivity
	Users     user.Port
	Tasks     todo.Port
	UserStore UserPersistence
	TaskStore TaskPersistence
	Metrics   *metrics.Metrics
	Health    HealthCheck
}

// Handler - the HTTP routes of the service.
type Handler struct {
	deps      Dependencies
	validator *validator.Validator
}

func NewHandler(deps Dependencies) *Handler {
	return &Handler{deps: deps, validator: validator.NewValidator()}
}

// Register mounts the middleware and routes on app.
func (h *Handler) Register(app *fiber.App) {
	app.Use(HTTPMetrics(h.deps.Metrics))
	app.Use(recover.New())
	app.Use(RequestID())
	app.Use(Tracing(httpx.Propagator()))

	app.Get("/health", h.health)
	app.Get("/metrics", h.deps.Metrics.Handler())

	users := app.Group("/users")
	users.Get("", h.getUsers)
	users.Post("", h.createUser)
	users.Get("/:user_id/tasks", h.getTasksForUser)
	users.Post("/:user_id/tasks", h.createTaskForUser)
	users.Get("/:user_id/tasks/:task_id", h.getTaskForUser)

	tasks := app.Group("/tasks")
	tasks.Patch("/:task_id", h.updateTask)
	tasks.Delete("/:task_id", h.deleteTask)

	demo := app.Group("/tracing-demo")
	demo.Get("", h.tracingDemo)
	demo.Get("/part2", h.tracingDemoPart2)
}

// inTransaction runs work in its own transaction and counts the outcome under operation.
// When only the commit failed, the result the work produced is logged.
func inTransaction[R any](c *fiber.Ctx, h *Handler, operation string, work extconn.UnitOfWork[R]) (R, error) {
	ctx := c.UserContext()

	result, err := extconn.WithTransaction(ctx, h.deps.Ext, work)
	h.deps.Metrics.ObserveTransaction(operation, err)

	if txErr, ok := extconn.AsTxError[R](err); ok && txErr.Kind == extconn.TxErrorCommit {
		logx.GetLogger().LogWarning(ctx,
			fmt.Sprintf("%s produced %v but the transaction did not commit", operation, txErr.SuccessfulResult), txErr.Err)
	}

	return result, err
}

func (h *Handler) parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return invalidInput("request body is not valid JSON", err)
	}

	return h.validator.Validate(out)
}

func pathID(c *fiber.Ctx, name string) (int32, error) {
	id, ok := utilx.ParseInt32ID(c.Params(name))
	if !ok {
		return 0, invalidPathParam(name)
	}

	return id, nil
}

func (h *Handler) health(c *fiber.Ctx) error {
	if err := h.deps.Health(c.UserContext(), h.deps.Ext); err != nil {
		logx.GetLogger().LogError(c.UserContext(), "Health check failed", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			ErrorCode:        CodeUnavailable,
			ErrorDescription: "The database is not reachable.",
		})
	}

	return c.JSON(HealthResponse{Status: "ok"})
}
