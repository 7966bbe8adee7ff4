package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dmorhart/fieldforce/internal/models"
	"github.com/dmorhart/fieldforce/internal/services"
)

type hierarchyNodeView struct {
	User     models.User         `json:"user"`
	Stats    services.ReportRow  `json:"stats"`
	Children []hierarchyNodeView `json:"children"`
}

// GetHierarchy returns a team's built tree with each node's own totals for
// the current month. Structural failures surface as 409 with the root
// contenders listed; they are never silently merged.
func (handler *Handler) GetHierarchy(c *fiber.Ctx) error {
	teamID, err := parseUintParam(c.Params("id"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid team id")
	}
	if _, err := handler.repositories.Teams.FindByID(teamID); err != nil {
		return apiError(c, fiber.StatusNotFound, "team not found")
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

	window, err := services.ResolvePeriod(services.PeriodSelector{Kind: services.PeriodMonthly}, time.Now(), handler.location)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to resolve window")
	}

	totals, err := handler.aggregator.MemberTotals(root, window)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to aggregate stats")
	}

	return c.JSON(fiber.Map{
		"team_id": teamID,
		"window":  window,
		"tree":    buildNodeView(root, totals),
	})
}

func buildNodeView(node *services.HierarchyNode, totals map[uint]services.ActivityTotals) hierarchyNodeView {
	view := hierarchyNodeView{
		User:     node.User,
		Stats:    services.ShapeMemberRow(node.User, totals[node.User.ID]),
		Children: make([]hierarchyNodeView, 0, len(node.Children)),
	}
	for _, child := range node.Children {
		view.Children = append(view.Children, buildNodeView(child, totals))
	}
	return view
}

func (handler *Handler) GetDiagnostics(c *fiber.Ctx) error {
	teamID, err := parseUintParam(c.Params("id"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid team id")
	}
	if _, err := handler.repositories.Teams.FindByID(teamID); err != nil {
		return apiError(c, fiber.StatusNotFound, "team not found")
	}

	diagnostics, err := handler.hierarchySvc.Diagnostics(teamID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to run diagnostics")
	}
	return c.JSON(diagnostics)
}
