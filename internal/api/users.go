package api

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/marcodd23/go-todo-service/internal/domain/user"
	"github.com/marcodd23/go-todo-service/pkg/extconn"
	"github.com/marcodd23/go-todo-service/pkg/logx"
)

func (h *Handler) getUsers(c *fiber.Ctx) error {
	ctx := c.UserContext()
	logx.GetLogger().LogInfo(ctx, "Retrieving all users")

	users, err := h.deps.Users.GetUsers(ctx, h.deps.Ext, h.deps.UserStore)
	if err != nil {
		return err
	}

	return c.JSON(toUserResponses(users))
}

// createUser checks for a duplicate and inserts in one transaction.
func (h *Handler) createUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	logx.GetLogger().LogInfo(c.UserContext(), fmt.Sprintf("Creating user %s %s", req.FirstName, req.LastName))

	newUser := user.CreateUser{FirstName: req.FirstName, LastName: req.LastName}
	id, err := inTransaction(c, h, "create_user", func(ctx context.Context, tx extconn.ExternalConnectivity) (int32, error) {
		return h.deps.Users.CreateUser(ctx, tx, newUser, h.deps.UserStore, h.deps.UserStore)
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(InsertedResponse{ID: id})
}
