package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/acadex/acadex-api/internal/policy"
	"github.com/acadex/acadex-api/internal/session"
	"github.com/acadex/acadex-api/internal/utils"
)

// SessionCookie is the name of the HttpOnly cookie carrying the opaque
// session token.
const SessionCookie = "acadex_session"

// SessionProtected resolves the session cookie through the store and binds
// the principal to the request. Requests without a live session get 401.
func SessionProtected(store session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(SessionCookie)
		if token == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "not logged in")
		}

		principal, err := store.Get(c.Context(), token)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				return utils.SendError(c, fiber.StatusUnauthorized, "session expired")
			}
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve session")
		}

		c.Locals("user_id", principal.UserID)
		c.Locals("user_role", principal.Role)
		c.Locals("session_token", token)

		return c.Next()
	}
}

// PrincipalFromContext rebuilds the principal bound by SessionProtected. The
// zero principal fails policy.RequireAuthenticated, so downstream services
// treat an unbound request as unauthenticated rather than panicking.
func PrincipalFromContext(c *fiber.Ctx) policy.Principal {
	principal := policy.Principal{}
	if id, ok := c.Locals("user_id").(uint); ok {
		principal.UserID = id
	}
	if role, ok := c.Locals("user_role").(string); ok {
		principal.Role = role
	}
	return principal
}

// SessionTokenFromContext returns the raw session token for logout paths.
func SessionTokenFromContext(c *fiber.Ctx) string {
	if token, ok := c.Locals("session_token").(string); ok {
		return token
	}
	return ""
}
