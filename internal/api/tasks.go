package api

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/marcodd23/go-todo-service/internal/domain/todo"
	"github.com/marcodd23/go-todo-service/pkg/extconn"
	"github.com/marcodd23/go-todo-service/pkg/logx"
)

func (h *Handler) getTasksForUser(c *fiber.Ctx) error {
	userID, err := pathID(c, "user_id")
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	logx.GetLogger().LogInfo(ctx, fmt.Sprintf("Get tasks for user %d", userID))

	tasks, err := h.deps.Tasks.TasksForUser(ctx, h.deps.Ext, userID, h.deps.UserStore, h.deps.TaskStore)
	if err != nil {
		return err
	}

	return c.JSON(toTaskResponses(tasks))
}

func (h *Handler) getTaskForUser(c *fiber.Ctx) error {
	userID, err := pathID(c, "user_id")
	if err != nil {
		return err
	}

	taskID, err := pathID(c, "task_id")
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	logx.GetLogger().LogInfo(ctx, fmt.Sprintf("Get task %d for user %d", taskID, userID))

	task, err := h.deps.Tasks.TaskForUser(ctx, h.deps.Ext, userID, taskID, h.deps.UserStore, h.deps.TaskStore)
	if err != nil {
		return err
	}

	if task == nil {
		return taskNotFound()
	}

	return c.JSON(toTaskResponse(*task))
}

// createTaskForUser verifies the owner and inserts in one transaction.
func (h *Handler) createTaskForUser(c *fiber.Ctx) error {
	userID, err := pathID(c, "user_id")
	if err != nil {
		return err
	}

	var req NewTaskRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	logx.GetLogger().LogInfo(c.UserContext(), fmt.Sprintf("Adding task for user %d", userID))

	newTask := todo.NewTask{Description: req.Description}
	id, err := inTransaction(c, h, "create_task", func(ctx context.Context, tx extconn.ExternalConnectivity) (int32, error) {
		return h.deps.Tasks.CreateTask(ctx, tx, userID, newTask, h.deps.UserStore, h.deps.TaskStore)
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(InsertedResponse{ID: id})
}

func (h *Handler) updateTask(c *fiber.Ctx) error {
	taskID, err := pathID(c, "task_id")
	if err != nil {
		return err
	}

	var req UpdateTaskRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	logx.GetLogger().LogInfo(c.UserContext(), fmt.Sprintf("Updating task %d", taskID))

	update := todo.UpdateTask{Description: req.Description}
	_, err = inTransaction(c, h, "update_task", func(ctx context.Context, tx extconn.ExternalConnectivity) (struct{}, error) {
		return struct{}{}, h.deps.Tasks.UpdateTask(ctx, tx, taskID, update, h.deps.TaskStore)
	})
	if err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) deleteTask(c *fiber.Ctx) error {
	taskID, err := pathID(c, "task_id")
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	logx.GetLogger().LogInfo(ctx, fmt.Sprintf("Deleting task %d", taskID))

	if err := h.deps.Tasks.DeleteTask(ctx, h.deps.Ext, taskID, h.deps.TaskStore); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
