package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dmorhart/fieldforce/internal/models"
)

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	user, err := handler.authenticateRequest(c)
	if err != nil {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	c.Locals(contextUserKey, user)
	return c.Next()
}

// AdminRequired gates hierarchy repair and account provisioning to the
// roles allowed to reshape the reporting chain.
func (handler *Handler) AdminRequired(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if user.Role != models.RoleSuperAdmin && user.Role != models.RoleStateManager {
		return apiError(c, fiber.StatusForbidden, "insufficient role")
	}
	return c.Next()
}
