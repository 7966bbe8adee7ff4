package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dmorhart/fieldforce/internal/services"
)

const shapeManagerHierarchy = "manager-hierarchy"

// GetReport aggregates a team's (or one manager's subtree's) activity over
// a resolved period window. A broken hierarchy degrades completeness, not
// availability: the report covers whatever valid subtree exists.
func (handler *Handler) GetReport(c *fiber.Ctx) error {
	teamID, err := parseUintParam(c.Query("team_id"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid team id")
	}
	if _, err := handler.repositories.Teams.FindByID(teamID); err != nil {
		return apiError(c, fiber.StatusNotFound, "team not found")
	}

	window, err := handler.resolveRequestWindow(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	root, err := handler.hierarchySvc.BuildTeam(teamID)
	if err != nil {
		var multipleRoots *services.MultipleRootsError
		switch {
		case errors.Is(err, services.ErrNoRootFound):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "no_root_found"})
		case errors.As(err, &multipleRoots):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":    "multiple_roots",
				"root_ids": multipleRoots.RootIDs,
			})
		}
		return apiError(c, fiber.StatusInternalServerError, "failed to build hierarchy")
	}

	scope := root
	if rawManagerID := c.Query("manager_id"); rawManagerID != "" {
		managerID, err := parseUintParam(rawManagerID)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid manager id")
		}
		scope = root.Find(managerID)
		if scope == nil {
			return apiError(c, fiber.StatusNotFound, "manager not in team hierarchy")
		}
	}

	shape := c.Query("shape", services.ShapeOrganization)
	var report services.Report
	if shape == shapeManagerHierarchy {
		report, err = handler.aggregator.ManagerHierarchyReport(scope, window)
	} else {
		report, err = handler.aggregator.Aggregate(scope, window, shape)
	}
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "unknown report shape")
	}

	return c.JSON(report)
}

// resolveRequestWindow resolves the request's period selector at an
// explicit as-of time in the configured location.
func (handler *Handler) resolveRequestWindow(c *fiber.Ctx) (services.DateRange, error) {
	asOf := time.Now()
	if rawAsOf := c.Query("as_of"); rawAsOf != "" {
		parsed, err := time.ParseInLocation("2006-01-02", rawAsOf, handler.location)
		if err != nil {
			return services.DateRange{}, errors.New("invalid as_of date")
		}
		asOf = parsed
	}

	selector := services.PeriodSelector{
		Kind:    c.Query("period", services.PeriodMonthly),
		Date:    c.Query("date"),
		From:    c.Query("from"),
		To:      c.Query("to"),
		Month:   c.Query("month"),
		Quarter: c.Query("quarter"),
		Year:    c.Query("year"),
	}
	window, err := services.ResolvePeriod(selector, asOf, handler.location)
	if err != nil {
		return services.DateRange{}, errors.New("invalid period selector")
	}
	return window, nil
}
