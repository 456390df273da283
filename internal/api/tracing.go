package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

const (
	tracingDemoPart2Path = "/tracing-demo/part2"
	tracingDemoGreeting  = "Hello, Go server!"
)

// tracingDemo calls part2 through the outbound client, so the trace spans two server requests.
func (h *Handler) tracingDemo(c *fiber.Ctx) error {
	var reply MessageResponse
	if err := h.deps.Ext.HTTPClient().GetJSON(c.UserContext(), tracingDemoPart2Path, &reply); err != nil {
		return errors.Wrap(err, "tracing demo call to part2 failed")
	}

	return c.JSON(MessageResponse{Message: "Got message: " + reply.Message})
}

func (h *Handler) tracingDemoPart2(c *fiber.Ctx) error {
	return c.JSON(MessageResponse{Message: tracingDemoGreeting})
}
