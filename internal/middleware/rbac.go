package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/acadex/acadex-api/internal/utils"
)

// RequireRole ensures the bound principal carries the given role. It assumes
// SessionProtected already ran: an unbound request is a 401, a wrong role a
// 403, matching the unauthenticated/forbidden split in the policy package.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := PrincipalFromContext(c)
		if principal.UserID == 0 {
			return utils.SendError(c, fiber.StatusUnauthorized, "not logged in")
		}
		if principal.Role != role {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}
