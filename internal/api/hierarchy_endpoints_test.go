package api

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/dmorhart/fieldforce/internal/models"
	"github.com/dmorhart/fieldforce/internal/services"
)

type seededTeam struct {
	TeamID   uint
	State    models.User
	Regional models.User
	District models.User
	Agents   []models.User
}

// seedHealthyTeam provisions a full reporting chain: one state manager, a
// regional manager, a district manager and two agents.
func seedHealthyTeam(t *testing.T, app *fiber.App, adminCookie string) seededTeam {
	t.Helper()

	teamID := createTeamForTest(t, app, adminCookie, "North Region")
	state := provisionMember(t, app, adminCookie, "Sasha", "sasha@example.com", models.RoleStateManager, teamID, nil)
	regional := provisionMember(t, app, adminCookie, "Reka", "reka@example.com", models.RoleRegionalManager, teamID, &state.ID)
	district := provisionMember(t, app, adminCookie, "Daan", "daan@example.com", models.RoleDistrictManager, teamID, &regional.ID)
	ana := provisionMember(t, app, adminCookie, "Ana", "ana@example.com", models.RoleAgent, teamID, &district.ID)
	bo := provisionMember(t, app, adminCookie, "Bo", "bo@example.com", models.RoleAgent, teamID, &district.ID)

	return seededTeam{
		TeamID:   teamID,
		State:    state,
		Regional: regional,
		District: district,
		Agents:   []models.User{ana, bo},
	}
}

type hierarchyResponse struct {
	TeamID uint               `json:"team_id"`
	Window services.DateRange `json:"window"`
	Tree   hierarchyNodeView  `json:"tree"`
}

func TestGetHierarchyReturnsTreeWithPerNodeStats(t *testing.T) {
	app := newTestApp(t)
	adminCookie := registerBootstrapAdmin(t, app)
	team := seedHealthyTeam(t, app, adminCookie)

	response := performJSON(t, app, http.MethodGet, "/api/teams/"+uintPath(team.TeamID)+"/hierarchy", adminCookie, nil)
	requireStatus(t, response, http.StatusOK)

	var body hierarchyResponse
	decodeJSONBody(t, response, &body)

	if body.Tree.User.ID != team.State.ID {
		t.Fatalf("expected state manager %d at the root, got %d", team.State.ID, body.Tree.User.ID)
	}
	if len(body.Tree.Children) != 1 || body.Tree.Children[0].User.ID != team.Regional.ID {
		t.Fatalf("expected regional manager under the root, got %#v", body.Tree.Children)
	}
	district := body.Tree.Children[0].Children
	if len(district) != 1 || len(district[0].Children) != 2 {
		t.Fatalf("expected district manager with two agents, got %#v", district)
	}
	if body.Tree.Stats.Premium != "0.00" {
		t.Fatalf("expected zero premium for quiet month, got %q", body.Tree.Stats.Premium)
	}
}

func TestGetHierarchyUnknownTeamReturnsNotFound(t *testing.T) {
	app := newTestApp(t)
	adminCookie := registerBootstrapAdmin(t, app)

	response := performJSON(t, app, http.MethodGet, "/api/teams/999/hierarchy", adminCookie, nil)
	requireStatus(t, response, http.StatusNotFound)
}

func TestGetHierarchyWithoutRootReportsConflict(t *testing.T) {
	app := newTestApp(t)
	adminCookie := registerBootstrapAdmin(t, app)
	teamID := createTeamForTest(t, app, adminCookie, "Rootless")
	provisionMember(t, app, adminCookie, "Ana", "ana@example.com", models.RoleAgent, teamID, nil)

	response := performJSON(t, app, http.MethodGet, "/api/teams/"+uintPath(teamID)+"/hierarchy", adminCookie, nil)
	requireStatus(t, response, http.StatusConflict)

	var body struct {
		Error string `json:"error"`
	}
	decodeJSONBody(t, response, &body)
	if body.Error != "no_root_found" {
		t.Fatalf("expected no_root_found, got %q", body.Error)
	}
}

func TestGetHierarchyWithTwoRootsListsContenders(t *testing.T) {
	app := newTestApp(t)
	adminCookie := registerBootstrapAdmin(t, app)
	teamID := createTeamForTest(t, app, adminCookie, "Split")
	first := provisionMember(t, app, adminCookie, "Sasha", "sasha@example.com", models.RoleStateManager, teamID, nil)
	second := provisionMember(t, app, adminCookie, "Io", "io@example.com", models.RoleStateManager, teamID, nil)

	response := performJSON(t, app, http.MethodGet, "/api/teams/"+uintPath(teamID)+"/hierarchy", adminCookie, nil)
	requireStatus(t, response, http.StatusConflict)

	var body struct {
		Error   string `json:"error"`
		RootIDs []uint `json:"root_ids"`
	}
	decodeJSONBody(t, response, &body)
	if body.Error != "multiple_roots" {
		t.Fatalf("expected multiple_roots, got %q", body.Error)
	}
	if len(body.RootIDs) != 2 || body.RootIDs[0] != first.ID || body.RootIDs[1] != second.ID {
		t.Fatalf("expected both contenders listed, got %v", body.RootIDs)
	}
}

func TestDiagnosticsReportsBrokenRelationships(t *testing.T) {
	app := newTestApp(t)
	adminCookie := registerBootstrapAdmin(t, app)
	team := seedHealthyTeam(t, app, adminCookie)

	missingManager := uint(9999)
	provisionMember(t, app, adminCookie, "Nyx", "nyx@example.com", models.RoleAgent, team.TeamID, &missingManager)

	response := performJSON(t, app, http.MethodGet, "/api/teams/"+uintPath(team.TeamID)+"/diagnostics", adminCookie, nil)
	requireStatus(t, response, http.StatusOK)

	var diagnostics services.TeamDiagnostics
	decodeJSONBody(t, response, &diagnostics)

	if diagnostics.TotalUsers != 6 {
		t.Fatalf("expected 6 users, got %d", diagnostics.TotalUsers)
	}
	if diagnostics.BrokenCount != 1 {
		t.Fatalf("expected one broken relationship, got %#v", diagnostics)
	}
	broken := diagnostics.BrokenUsers[0]
	if broken.Issue != services.IssueManagerNotFound {
		t.Fatalf("expected %s, got %s", services.IssueManagerNotFound, broken.Issue)
	}

	// The district manager and the state manager fallback both qualify.
	candidateIDs := make(map[uint]bool, len(broken.CandidateManagers))
	for _, candidate := range broken.CandidateManagers {
		candidateIDs[candidate.ID] = true
	}
	if !candidateIDs[team.District.ID] || !candidateIDs[team.State.ID] {
		t.Fatalf("expected district and state manager candidates, got %#v", broken.CandidateManagers)
	}
}

func TestDiagnosticsOnHealthyTeamIsClean(t *testing.T) {
	app := newTestApp(t)
	adminCookie := registerBootstrapAdmin(t, app)
	team := seedHealthyTeam(t, app, adminCookie)

	response := performJSON(t, app, http.MethodGet, "/api/teams/"+uintPath(team.TeamID)+"/diagnostics", adminCookie, nil)
	requireStatus(t, response, http.StatusOK)

	var diagnostics services.TeamDiagnostics
	decodeJSONBody(t, response, &diagnostics)
	if diagnostics.BrokenCount != 0 {
		t.Fatalf("expected clean diagnostics, got %#v", diagnostics)
	}
}
