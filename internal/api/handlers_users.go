package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dmorhart/fieldforce/internal/models"
	"github.com/dmorhart/fieldforce/internal/services"
)

type createUserInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	TeamID    uint   `json:"team_id"`
	ManagerID *uint  `json:"manager_id"`
}

// CreateUser provisions a member account. Manager links are accepted as
// given; the diagnostics endpoint reports any resulting violation instead
// of this handler guessing an assignment.
func (handler *Handler) CreateUser(c *fiber.Ctx) error {
	var input createUserInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	email := normalizeEmail(input.Email)
	if email == "" || len(input.Password) < 8 {
		return apiError(c, fiber.StatusBadRequest, "email and password of at least 8 characters required")
	}
	if !models.IsValidRole(input.Role) {
		return apiError(c, fiber.StatusBadRequest, "unknown role")
	}

	exists, err := handler.authService.EmailExists(email)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create account")
	}
	if exists {
		return apiError(c, fiber.StatusConflict, "email already exists")
	}

	passwordHash, err := services.HashPassword(input.Password)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to secure password")
	}

	user := models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         input.Role,
		TeamID:       input.TeamID,
		ManagerID:    input.ManagerID,
		CreatedAt:    time.Now().In(handler.location),
	}
	if err := handler.authService.CreateUser(&user); err != nil {
		return apiError(c, fiber.StatusConflict, "email already exists")
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (handler *Handler) ListTeamMembers(c *fiber.Ctx) error {
	teamID, err := parseUintParam(c.Params("id"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid team id")
	}

	if _, err := handler.repositories.Teams.FindByID(teamID); err != nil {
		return apiError(c, fiber.StatusNotFound, "team not found")
	}

	members, err := handler.repositories.Users.ListByTeam(teamID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to list members")
	}
	return c.JSON(fiber.Map{"members": members})
}

func (handler *Handler) ListTeams(c *fiber.Ctx) error {
	teams, err := handler.repositories.Teams.List()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to list teams")
	}
	return c.JSON(fiber.Map{"teams": teams})
}

type createTeamInput struct {
	Name string `json:"name"`
}

func (handler *Handler) CreateTeam(c *fiber.Ctx) error {
	var input createTeamInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return apiError(c, fiber.StatusBadRequest, "team name required")
	}

	team := models.Team{Name: name, CreatedAt: time.Now().In(handler.location)}
	if err := handler.repositories.Teams.Create(&team); err != nil {
		return apiError(c, fiber.StatusConflict, "team name already exists")
	}
	return c.Status(fiber.StatusCreated).JSON(team)
}
