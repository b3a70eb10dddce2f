package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/quintaldo/pos-engine/pkg/auth"
)

// bearerClaims extracts and validates the bearer token on a request.
func bearerClaims(c *fiber.Ctx) (*auth.Claims, error) {
	header := c.Get("Authorization")
	if header == "" {
		return nil, fmt.Errorf("authorization header required")
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, fmt.Errorf("invalid authorization header format")
	}

	return auth.ValidateToken(token)
}

// AuthMiddleware authenticates the caller and propagates their identity to
// the engine as trusted headers. The engine re-validates the token itself;
// the headers exist for engine access logs and the organization scope.
func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := bearerClaims(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("username", claims.Username)
		c.Locals("role", claims.Role)
		c.Locals("organization_id", claims.OrganizationID)

		c.Request().Header.Set("X-User-ID", fmt.Sprintf("%d", claims.UserID))
		c.Request().Header.Set("X-Username", claims.Username)
		c.Request().Header.Set("X-User-Role", claims.Role)
		c.Request().Header.Set("X-Organization-ID", fmt.Sprintf("%d", claims.OrganizationID))

		return c.Next()
	}
}

// ManagerMiddleware gates a route on a privileged role. Runs after
// AuthMiddleware, which stores the role in locals.
func ManagerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if !auth.IsPrivilegedActor(role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Manager access required",
			})
		}
		return c.Next()
	}
}
