package fibersrv_test

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/marcodd23/go-todo-service/pkg/configmgr"
	"github.com/marcodd23/go-todo-service/pkg/serverx/fibersrv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() configmgr.BaseConfig {
	return configmgr.BaseConfig{
		Name:        "todo-api",
		Environment: "local",
		Server:      &configmgr.ServerConfig{Port: "0", DisableStartupMessage: true},
	}
}

func TestFiberServer_SetupAndServe(t *testing.T) {
	srv := fibersrv.NewFiberServer(testConfig())

	srv.Setup(context.Background(), func(app *fiber.App) {
		app.Get("/ping", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"pong": true})
		})
	})

	resp, err := srv.GetServer().Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"pong":true}`, string(body))
}

func TestFiberServer_StrictRouting(t *testing.T) {
	srv := fibersrv.NewFiberServer(testConfig())
	srv.GetServer().Get("/users", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	resp, err := srv.GetServer().Test(httptest.NewRequest("GET", "/users/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestFiberServer_ErrorHandler(t *testing.T) {
	srv := fibersrv.NewFiberServer(testConfig(), fibersrv.WithErrorHandler(func(c *fiber.Ctx, err error) error {
		return c.Status(fiber.StatusTeapot).SendString(err.Error())
	}))
	srv.GetServer().Get("/fail", func(c *fiber.Ctx) error { return fiber.ErrBadGateway })

	resp, err := srv.GetServer().Test(httptest.NewRequest("GET", "/fail", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
}
