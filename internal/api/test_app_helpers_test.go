package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/foalwatch/internal/db"
	"github.com/terraincognita07/foalwatch/internal/i18n"
	"github.com/terraincognita07/foalwatch/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var testNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "foalwatch-test.db")
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

	i18nManager, err := i18n.NewManager("en", i18n.EmbeddedLocales())
	if err != nil {
		t.Fatalf("init i18n: %v", err)
	}

	handler, err := NewHandler(database, "test-secret-key-with-enough-length", time.UTC, i18nManager, false)
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}
	handler.SetClock(func() time.Time { return testNow })

	app := fiber.New()
	app.Use(handler.LanguageMiddleware)
	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return app, database
}

func createTestUser(t *testing.T, database *gorm.DB, email string, password string, role string, mustChangePassword bool) models.User {
	t.Helper()

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	user := models.User{
		Email:              strings.ToLower(strings.TrimSpace(email)),
		PasswordHash:       string(passwordHash),
		Role:               role,
		MustChangePassword: mustChangePassword,
		CreatedAt:          testNow,
	}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createTestViewer(t *testing.T, database *gorm.DB, email string, password string, ownerID uint) models.User {
	t.Helper()

	viewer := createTestUser(t, database, email, password, models.RoleViewer, false)
	if err := database.Model(&viewer).Update("herd_owner_id", ownerID).Error; err != nil {
		t.Fatalf("bind viewer to owner: %v", err)
	}
	viewer.HerdOwnerID = &ownerID
	return viewer
}

func loginAndExtractAuthCookie(t *testing.T, app *fiber.App, email string, password string) string {
	t.Helper()

	response := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected login status 200, got %d", response.StatusCode)
	}

	for _, cookie := range response.Cookies() {
		if cookie.Name == authCookieName && cookie.Value != "" {
			return cookie.Name + "=" + cookie.Value
		}
	}

	t.Fatal("auth cookie is missing in login response")
	return ""
}

func doJSON(t *testing.T, app *fiber.App, method string, path string, authCookie string, payload any) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		serialized, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(serialized)
	}

	request := httptest.NewRequest(method, path, body)
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set("Accept", "application/json")
	if authCookie != "" {
		request.Header.Set("Cookie", authCookie)
	}

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return response
}

func expectStatus(t *testing.T, response *http.Response, expected int) {
	t.Helper()
	if response.StatusCode != expected {
		body, _ := io.ReadAll(response.Body)
		t.Fatalf("expected status %d, got %d: %s", expected, response.StatusCode, string(body))
	}
}

func decodeJSON[T any](t *testing.T, response *http.Response) T {
	t.Helper()
	defer response.Body.Close()

	var value T
	if err := json.NewDecoder(response.Body).Decode(&value); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return value
}

func readAPIError(t *testing.T, response *http.Response) string {
	t.Helper()
	payload := decodeJSON[map[string]any](t, response)
	message, _ := payload["error"].(string)
	return message
}

func newBearerRequest(method string, path string, token string) *http.Request {
	request := httptest.NewRequest(method, path, nil)
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Authorization", "Bearer "+token)
	return request
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}
