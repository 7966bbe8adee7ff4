package api

import (
	"github.com/gofiber/fiber/v2"
)

type repairInput struct {
	// Assignments maps user id → proposed manager id.
	Assignments map[uint]uint `json:"assignments"`
}

// RepairTeam applies administrator-selected manager fixes. Rejections are
// per-assignment; the response lists exactly which fixes landed.
func (handler *Handler) RepairTeam(c *fiber.Ctx) error {
	teamID, err := parseUintParam(c.Params("id"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid team id")
	}
	if _, err := handler.repositories.Teams.FindByID(teamID); err != nil {
		return apiError(c, fiber.StatusNotFound, "team not found")
	}

	var input repairInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	if len(input.Assignments) == 0 {
		return apiError(c, fiber.StatusBadRequest, "no assignments provided")
	}

	results, err := handler.repairer.Repair(teamID, input.Assignments)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "repair failed")
	}
	return c.JSON(fiber.Map{"results": results})
}

// RebuildTeam runs the full deterministic rebuild. All writes commit
// together or not at all.
func (handler *Handler) RebuildTeam(c *fiber.Ctx) error {
	teamID, err := parseUintParam(c.Params("id"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid team id")
	}
	if _, err := handler.repositories.Teams.FindByID(teamID); err != nil {
		return apiError(c, fiber.StatusNotFound, "team not found")
	}

	report, err := handler.repairer.Rebuild(teamID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "rebuild failed; retry the whole rebuild")
	}
	return c.JSON(report)
}
