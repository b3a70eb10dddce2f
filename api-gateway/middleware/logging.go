package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/quintaldo/pos-engine/pkg/logger"
)

// StructuredLoggingMiddleware writes one request log line per gateway
// request. It runs outside the auth middleware, so caller identity is read
// from locals only after the chain completes.
func StructuredLoggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		event := logger.Info(c.UserContext())
		switch {
		case status >= 500:
			event = logger.Error(c.UserContext())
		case status >= 400:
			event = logger.Warn(c.UserContext())
		}

		event = event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("route", routeClass(c.Path())).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("ip", c.IP()).
			Str("request_id", c.Get("X-Request-Id"))

		if userID := c.Locals("user_id"); userID != nil {
			event = event.Str("user_id", fmt.Sprintf("%v", userID))
		}
		if orgID := c.Locals("organization_id"); orgID != nil {
			event = event.Str("organization_id", fmt.Sprintf("%v", orgID))
		}
		if err != nil {
			event = event.Err(err)
		}

		event.Msg("Gateway request")

		return err
	}
}
