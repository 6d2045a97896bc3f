package handlers

import (
	"github.com/gofiber/fiber/v2"

	"chmlcart/internal/domain"
	applog "chmlcart/internal/log"
	"chmlcart/internal/repos"
	"chmlcart/internal/token"
)

// RequireUser verifies the bearer cookie and loads the user onto the
// request. Tokens are stateless: validity is signature + expiry only.
func RequireUser(users *repos.UserRepo, tokens *token.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := c.Cookies("token")
		if tok == "" {
			return domain.Auth("Login first to access this resource")
		}
		uid, err := tokens.Verify(tok)
		if err != nil {
			applog.Security(c, "auth.token.invalid", nil)
			return domain.Auth("Login first to access this resource")
		}
		u, err := users.ByID(uid)
		if err != nil {
			applog.Security(c, "auth.token.orphan", map[string]any{"user_id": uid})
			return domain.Auth("Login first to access this resource")
		}
		c.Locals("user", u)
		return c.Next()
	}
}

// RequireAdmin must run after RequireUser.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil || !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", nil)
			role := domain.RoleUser
			if u != nil {
				role = u.Role
			}
			return domain.Forbidden("Role " + role + " is not allowed to access this resource")
		}
		return c.Next()
	}
}
