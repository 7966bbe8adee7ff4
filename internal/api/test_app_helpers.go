package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dmorhart/fieldforce/internal/db"
	"github.com/dmorhart/fieldforce/internal/models"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	return newTestAppWithCookieSecure(t, false)
}

func newTestAppWithCookieSecure(t *testing.T, cookieSecure bool) *fiber.App {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "fieldforce-api-test.db")
	database, err := db.OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	handler := NewHandler(database, "test-secret-key", time.UTC, cookieSecure)

	app := fiber.New()
	RegisterRoutes(app, handler)
	return app
}

func uintPath(value uint) string {
	return strconv.FormatUint(uint64(value), 10)
}

func performJSON(t *testing.T, app *fiber.App, method string, path string, authCookie string, payload interface{}) *http.Response {
	t.Helper()

	var body *bytes.Reader
	if payload == nil {
		body = bytes.NewReader(nil)
	} else {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("%s %s encode payload: %v", method, path, err)
		}
		body = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, body)
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if authCookie != "" {
		request.Header.Set("Cookie", authCookie)
	}

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return response
}

func requireStatus(t *testing.T, response *http.Response, expectedStatus int) {
	t.Helper()

	if response.StatusCode != expectedStatus {
		t.Fatalf("expected status %d, got %d", expectedStatus, response.StatusCode)
	}
}

func decodeJSONBody(t *testing.T, response *http.Response, out interface{}) {
	t.Helper()

	defer response.Body.Close()
	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func authCookieFromResponse(t *testing.T, response *http.Response) string {
	t.Helper()

	for _, cookie := range response.Cookies() {
		if cookie.Name == authCookieName && cookie.Value != "" {
			return cookie.Name + "=" + cookie.Value
		}
	}
	t.Fatal("expected auth cookie in response")
	return ""
}

// registerBootstrapAdmin claims the first account, which always lands as a
// super admin, and returns its session cookie.
func registerBootstrapAdmin(t *testing.T, app *fiber.App) string {
	t.Helper()

	response := performJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name":     "Root Admin",
		"email":    "admin@example.com",
		"password": "admin-secret-1",
	})
	requireStatus(t, response, http.StatusCreated)
	return authCookieFromResponse(t, response)
}

func loginForTest(t *testing.T, app *fiber.App, email string, password string) string {
	t.Helper()

	response := performJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": password,
	})
	requireStatus(t, response, http.StatusOK)
	return authCookieFromResponse(t, response)
}

func createTeamForTest(t *testing.T, app *fiber.App, adminCookie string, name string) uint {
	t.Helper()

	response := performJSON(t, app, http.MethodPost, "/api/teams", adminCookie, map[string]interface{}{
		"name": name,
	})
	requireStatus(t, response, http.StatusCreated)

	var team models.Team
	decodeJSONBody(t, response, &team)
	if team.ID == 0 {
		t.Fatalf("expected non-zero team id for %s", name)
	}
	return team.ID
}

func provisionMember(t *testing.T, app *fiber.App, adminCookie string, name string, email string, role string, teamID uint, managerID *uint) models.User {
	t.Helper()

	response := performJSON(t, app, http.MethodPost, "/api/users", adminCookie, map[string]interface{}{
		"name":       name,
		"email":      email,
		"password":   "member-secret-1",
		"role":       role,
		"team_id":    teamID,
		"manager_id": managerID,
	})
	requireStatus(t, response, http.StatusCreated)

	var user models.User
	decodeJSONBody(t, response, &user)
	if user.ID == 0 {
		t.Fatalf("expected non-zero user id for %s", email)
	}
	return user
}
