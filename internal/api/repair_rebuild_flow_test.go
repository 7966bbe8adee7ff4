package api

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/dmorhart/fieldforce/internal/models"
	"github.com/dmorhart/fieldforce/internal/services"
)

func teamDiagnostics(t *testing.T, app *fiber.App, adminCookie string, teamID uint) services.TeamDiagnostics {
	t.Helper()

	response := performJSON(t, app, http.MethodGet, "/api/teams/"+uintPath(teamID)+"/diagnostics", adminCookie, nil)
	requireStatus(t, response, http.StatusOK)

	var diagnostics services.TeamDiagnostics
	decodeJSONBody(t, response, &diagnostics)
	return diagnostics
}

func TestRepairAppliesSelectedAssignments(t *testing.T) {
	app := newTestApp(t)
	adminCookie := registerBootstrapAdmin(t, app)
	teamID := createTeamForTest(t, app, adminCookie, "North Region")

	state := provisionMember(t, app, adminCookie, "Sasha", "sasha@example.com", models.RoleStateManager, teamID, nil)
	regional := provisionMember(t, app, adminCookie, "Reka", "reka@example.com", models.RoleRegionalManager, teamID, &state.ID)
	orphanDistrict := provisionMember(t, app, adminCookie, "Daan", "daan@example.com", models.RoleDistrictManager, teamID, nil)

	response := performJSON(t, app, http.MethodPost, "/api/teams/"+uintPath(teamID)+"/repair", adminCookie, map[string]interface{}{
		"assignments": map[string]uint{
			strconv.FormatUint(uint64(orphanDistrict.ID), 10): regional.ID,
		},
	})
	requireStatus(t, response, http.StatusOK)

	var body struct {
		Results []services.RepairResult `json:"results"`
	}
	decodeJSONBody(t, response, &body)
	if len(body.Results) != 1 || !body.Results[0].Applied {
		t.Fatalf("expected the assignment to apply, got %#v", body.Results)
	}

	if diagnostics := teamDiagnostics(t, app, adminCookie, teamID); diagnostics.BrokenCount != 0 {
		t.Fatalf("expected clean diagnostics after repair, got %#v", diagnostics)
	}
}

func TestRepairRejectsInvalidAssignmentWithoutAborting(t *testing.T) {
	app := newTestApp(t)
	adminCookie := registerBootstrapAdmin(t, app)
	teamID := createTeamForTest(t, app, adminCookie, "North Region")

	state := provisionMember(t, app, adminCookie, "Sasha", "sasha@example.com", models.RoleStateManager, teamID, nil)
	district := provisionMember(t, app, adminCookie, "Daan", "daan@example.com", models.RoleDistrictManager, teamID, nil)
	orphanAgent := provisionMember(t, app, adminCookie, "Ana", "ana@example.com", models.RoleAgent, teamID, nil)
	otherAgent := provisionMember(t, app, adminCookie, "Bo", "bo@example.com", models.RoleAgent, teamID, &district.ID)

	response := performJSON(t, app, http.MethodPost, "/api/teams/"+uintPath(teamID)+"/repair", adminCookie, map[string]interface{}{
		"assignments": map[string]uint{
			strconv.FormatUint(uint64(orphanAgent.ID), 10): otherAgent.ID,
			strconv.FormatUint(uint64(district.ID), 10):    state.ID,
		},
	})
	requireStatus(t, response, http.StatusOK)

	var body struct {
		Results []services.RepairResult `json:"results"`
	}
	decodeJSONBody(t, response, &body)
	if len(body.Results) != 2 {
		t.Fatalf("expected two results, got %#v", body.Results)
	}

	outcomes := make(map[uint]services.RepairResult, len(body.Results))
	for _, result := range body.Results {
		outcomes[result.UserID] = result
	}
	if outcomes[orphanAgent.ID].Applied {
		t.Fatal("an agent must not end up managing another agent")
	}
	if outcomes[orphanAgent.ID].Reason == "" {
		t.Fatal("rejections must carry a reason")
	}
	if !outcomes[district.ID].Applied {
		t.Fatalf("valid assignment must land despite the rejected one, got %#v", outcomes[district.ID])
	}
}

func TestRepairValidationAndGating(t *testing.T) {
	app := newTestApp(t)
	adminCookie := registerBootstrapAdmin(t, app)
	teamID := createTeamForTest(t, app, adminCookie, "North Region")
	provisionMember(t, app, adminCookie, "Ana", "ana@example.com", models.RoleAgent, teamID, nil)
	agentCookie := loginForTest(t, app, "ana@example.com", "member-secret-1")

	response := performJSON(t, app, http.MethodPost, "/api/teams/"+uintPath(teamID)+"/repair", adminCookie, map[string]interface{}{
		"assignments": map[string]uint{},
	})
	requireStatus(t, response, http.StatusBadRequest)

	response = performJSON(t, app, http.MethodPost, "/api/teams/999/repair", adminCookie, map[string]interface{}{
		"assignments": map[string]uint{"1": 2},
	})
	requireStatus(t, response, http.StatusNotFound)

	response = performJSON(t, app, http.MethodPost, "/api/teams/"+uintPath(teamID)+"/repair", agentCookie, map[string]interface{}{
		"assignments": map[string]uint{"1": 2},
	})
	requireStatus(t, response, http.StatusForbidden)
}

func TestRebuildRepairsBrokenTeamAndIsIdempotent(t *testing.T) {
	app := newTestApp(t)
	adminCookie := registerBootstrapAdmin(t, app)
	teamID := createTeamForTest(t, app, adminCookie, "North Region")

	state := provisionMember(t, app, adminCookie, "Sasha", "sasha@example.com", models.RoleStateManager, teamID, nil)
	regional := provisionMember(t, app, adminCookie, "Reka", "reka@example.com", models.RoleRegionalManager, teamID, &state.ID)
	district := provisionMember(t, app, adminCookie, "Daan", "daan@example.com", models.RoleDistrictManager, teamID, &regional.ID)
	missingManager := uint(9999)
	orphan := provisionMember(t, app, adminCookie, "Nyx", "nyx@example.com", models.RoleAgent, teamID, &missingManager)

	response := performJSON(t, app, http.MethodPost, "/api/teams/"+uintPath(teamID)+"/rebuild", adminCookie, nil)
	requireStatus(t, response, http.StatusOK)

	var report services.RebuildReport
	decodeJSONBody(t, response, &report)
	if report.RepairsMade != 1 {
		t.Fatalf("expected one repair, got %#v", report)
	}
	entry := report.Details[0]
	if entry.UserID != orphan.ID || entry.After == nil || *entry.After != district.ID {
		t.Fatalf("expected orphan reattached to district manager %d, got %#v", district.ID, entry)
	}

	if diagnostics := teamDiagnostics(t, app, adminCookie, teamID); diagnostics.BrokenCount != 0 {
		t.Fatalf("expected clean diagnostics after rebuild, got %#v", diagnostics)
	}

	// A second rebuild finds nothing left to change.
	response = performJSON(t, app, http.MethodPost, "/api/teams/"+uintPath(teamID)+"/rebuild", adminCookie, nil)
	requireStatus(t, response, http.StatusOK)
	decodeJSONBody(t, response, &report)
	if report.RepairsMade != 0 {
		t.Fatalf("expected idempotent rebuild, got %#v", report)
	}
}

func TestRebuildRequiresAdminRole(t *testing.T) {
	app := newTestApp(t)
	adminCookie := registerBootstrapAdmin(t, app)
	teamID := createTeamForTest(t, app, adminCookie, "North Region")
	provisionMember(t, app, adminCookie, "Ana", "ana@example.com", models.RoleAgent, teamID, nil)
	agentCookie := loginForTest(t, app, "ana@example.com", "member-secret-1")

	response := performJSON(t, app, http.MethodPost, "/api/teams/"+uintPath(teamID)+"/rebuild", agentCookie, nil)
	requireStatus(t, response, http.StatusForbidden)
}
