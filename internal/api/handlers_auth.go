package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dmorhart/fieldforce/internal/models"
	"github.com/dmorhart/fieldforce/internal/services"
)

type credentialsInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register bootstraps the first account. Once any account exists, new
// members are provisioned by an administrator through CreateUser.
func (handler *Handler) Register(c *fiber.Ctx) error {
	var input credentialsInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	email := normalizeEmail(input.Email)
	if email == "" || len(input.Password) < 8 {
		return apiError(c, fiber.StatusBadRequest, "email and password of at least 8 characters required")
	}

	first, err := handler.authService.FirstUser()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create account")
	}
	if !first {
		return apiError(c, fiber.StatusForbidden, "registration closed; ask an administrator")
	}

	passwordHash, err := services.HashPassword(input.Password)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to secure password")
	}

	user := models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.RoleSuperAdmin,
		CreatedAt:    time.Now().In(handler.location),
	}
	if err := handler.authService.CreateUser(&user); err != nil {
		return apiError(c, fiber.StatusConflict, "email already exists")
	}

	if err := handler.setAuthCookie(c, &user); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	var input credentialsInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	user, err := handler.authService.Authenticate(normalizeEmail(input.Email), input.Password)
	if err != nil {
		return apiError(c, fiber.StatusUnauthorized, "invalid credentials")
	}

	if err := handler.setAuthCookie(c, &user); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.JSON(user)
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearAuthCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}
