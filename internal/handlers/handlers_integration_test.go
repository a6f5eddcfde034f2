package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"promptly/internal/config"
	"promptly/internal/database"
	"promptly/internal/handlers"
	"promptly/internal/middleware"
	"promptly/internal/models"
	"promptly/internal/providers"
	"promptly/internal/repositories"
	"promptly/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

// failingProvider always fails, like an unreachable upstream.
type failingProvider struct{}

func (failingProvider) GenerateText(context.Context, string) (string, error) {
	return "", errors.New("upstream unavailable")
}

// setupApp sets up a Fiber app for testing with in-memory SQLite and all handlers/services.
func setupApp(t *testing.T, provider providers.TextGenerator) *fiber.App {
	t.Helper()
	app, _ := setupAppWithAuth(t, provider)
	return app
}

// setupAppWithAuth also returns the AuthService so tests can mint tokens.
func setupAppWithAuth(t *testing.T, provider providers.TextGenerator) (*fiber.App, *services.AuthService) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := database.Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}, logger)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db, config.DriverSQLite, logger))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	// Initialize Repositories
	userRepo := repositories.NewGORMUserRepository(db)
	textRepo := repositories.NewGORMGeneratedTextRepository(db)

	// Initialize Services
	userService, err := services.NewUserService(userRepo, services.NewBcryptCredentialStore(bcrypt.MinCost))
	require.NoError(t, err)
	authService := services.NewAuthService(userService, testJWTSecret, time.Hour)
	generationService := services.NewGenerationService(provider, nil)
	textService := services.NewGeneratedTextService(textRepo, generationService, nil, logger)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(logger)})

	auth := middleware.AuthRequired(authService, logger, nil)
	handlers.NewAuthHandler(userService, authService, logger).RegisterRoutes(app)
	handlers.NewUserHandler(userService, logger).RegisterRoutes(app, auth)
	handlers.NewGeneratedTextHandler(textService, logger).RegisterRoutes(app, auth)

	return app, authService
}

// do sends a request and decodes the JSON response body into a map.
func do(t *testing.T, app *fiber.App, method, target, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp.StatusCode, decoded
}

func registerAndLogin(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	creds := map[string]string{"username": username, "password": password}

	status, _ := do(t, app, http.MethodPost, "/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, status)

	status, body := do(t, app, http.MethodPost, "/auth/login", "", creds)
	require.Equal(t, http.StatusOK, status)
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app := setupApp(t, providers.NewStaticProvider("stub-response"))

	status, body := do(t, app, http.MethodPost, "/auth/register", "", map[string]string{"username": "Alice", "password": "pw1"})
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "User registered successfully", body["message"])

	// Test Duplicate Registration (differs only in case)
	status, body = do(t, app, http.MethodPost, "/auth/register", "", map[string]string{"username": "ALICE", "password": "pw2"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "User already exists", body["message"])

	// Test Login with any casing
	status, body = do(t, app, http.MethodPost, "/auth/login", "", map[string]string{"username": "alice", "password": "pw1"})
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["access_token"])

	// The second registration's password was never stored
	status, _ = do(t, app, http.MethodPost, "/auth/login", "", map[string]string{"username": "alice", "password": "pw2"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAuthRegisterValidation(t *testing.T) {
	app := setupApp(t, providers.NewStaticProvider("stub-response"))

	status, body := do(t, app, http.MethodPost, "/auth/register", "", map[string]string{"username": "bob", "password": ""})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", body["message"])
	assert.Contains(t, body["errors"], "password")

	status, _ = do(t, app, http.MethodPost, "/auth/register", "", map[string]string{"password": "pw"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodPost, "/auth/register", "", `{"username": 5, "password": "pw"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = do(t, app, http.MethodPost, "/auth/register", "", `{not json`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	// nothing was stored by the rejected attempts
	status, _ = do(t, app, http.MethodPost, "/auth/register", "", map[string]string{"username": "bob", "password": "pw"})
	assert.Equal(t, http.StatusCreated, status)
}

func TestAuthLoginFailuresLookAlike(t *testing.T) {
	app := setupApp(t, providers.NewStaticProvider("stub-response"))
	registerAndLogin(t, app, "carol", "right")

	wrongStatus, wrongBody := do(t, app, http.MethodPost, "/auth/login", "", map[string]string{"username": "carol", "password": "wrong"})
	unknownStatus, unknownBody := do(t, app, http.MethodPost, "/auth/login", "", map[string]string{"username": "nobody", "password": "right"})

	assert.Equal(t, http.StatusUnauthorized, wrongStatus)
	assert.Equal(t, http.StatusUnauthorized, unknownStatus)
	assert.Equal(t, map[string]interface{}{"message": "Invalid credentials"}, wrongBody)
	assert.Equal(t, wrongBody, unknownBody)

	status, _ := do(t, app, http.MethodPost, "/auth/login", "", map[string]string{"username": "carol"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUserProfile(t *testing.T) {
	app := setupApp(t, providers.NewStaticProvider("stub-response"))
	token := registerAndLogin(t, app, "Dave", "pw")

	status, body := do(t, app, http.MethodGet, "/user/profile", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "dave", body["username"])
	assert.NotZero(t, body["id"])
	assert.NotContains(t, body, "password_hash")
	assert.NotContains(t, body, "PasswordHash")

	status, _ = do(t, app, http.MethodGet, "/user/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = do(t, app, http.MethodGet, "/user/profile", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestUserProfileForMissingUser(t *testing.T) {
	app, authService := setupAppWithAuth(t, providers.NewStaticProvider("stub-response"))

	// a well-signed token whose user is gone
	token, err := authService.IssueToken(models.UserID(9999))
	require.NoError(t, err)

	status, body := do(t, app, http.MethodGet, "/user/profile", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Resource not found", body["message"])
}

func TestGeneratedTextLifecycle(t *testing.T) {
	app := setupApp(t, providers.NewStaticProvider("stub-response"))
	tokenA := registerAndLogin(t, app, "alice", "pw1")
	tokenB := registerAndLogin(t, app, "bob", "pw2")

	status, created := do(t, app, http.MethodPost, "/generate-text", tokenA, map[string]string{"prompt": "Tell me a joke"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Tell me a joke", created["prompt"])
	assert.Equal(t, "stub-response", created["response"])
	assert.NotEmpty(t, created["timestamp"])
	assert.NotContains(t, created, "user_id")
	path := fmt.Sprintf("/generated-text/%v", created["id"])

	status, got := do(t, app, http.MethodGet, path, tokenA, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, created["id"], got["id"])
	assert.Equal(t, "Tell me a joke", got["prompt"])

	// another user can see that the record exists but cannot touch it
	status, body := do(t, app, http.MethodGet, path, tokenB, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.NotContains(t, body, "prompt")
	status, _ = do(t, app, http.MethodPut, path, tokenB, map[string]string{"prompt": "mine now"})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = do(t, app, http.MethodDelete, path, tokenB, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, updated := do(t, app, http.MethodPut, path, tokenA, map[string]string{"response": "edited"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Tell me a joke", updated["prompt"])
	assert.Equal(t, "edited", updated["response"])

	status, _ = do(t, app, http.MethodPut, path, tokenA, map[string]string{"prompt": "   "})
	assert.Equal(t, http.StatusBadRequest, status)

	status, touched := do(t, app, http.MethodPut, path, tokenA, map[string]string{})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "edited", touched["response"])

	status, body = do(t, app, http.MethodDelete, path, tokenA, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, fmt.Sprintf("Generated text with ID %v deleted", created["id"]), body["message"])

	status, _ = do(t, app, http.MethodGet, path, tokenA, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = do(t, app, http.MethodGet, path, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGeneratedTextNotFound(t *testing.T) {
	app := setupApp(t, providers.NewStaticProvider("stub-response"))
	token := registerAndLogin(t, app, "erin", "pw")

	targets := []string{
		"/generated-text/999",
		"/generated-text/0",
		"/generated-text/abc",
		"/generated-text/9223372036854775807",
		"/generated-text/9223372036854775808",
		"/generated-text/18446744073709551615",
	}
	for _, target := range targets {
		status, _ := do(t, app, http.MethodGet, target, token, nil)
		assert.Equal(t, http.StatusNotFound, status, target)
		status, _ = do(t, app, http.MethodDelete, target, token, nil)
		assert.Equal(t, http.StatusNotFound, status, target)
	}

	status, _ := do(t, app, http.MethodPut, "/generated-text/999", token, map[string]string{"prompt": "x"})
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = do(t, app, http.MethodDelete, "/generated-text/999", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGenerateTextValidation(t *testing.T) {
	app := setupApp(t, providers.NewStaticProvider("stub-response"))
	token := registerAndLogin(t, app, "frank", "pw")

	status, body := do(t, app, http.MethodPost, "/generate-text", token, map[string]string{"prompt": ""})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["errors"], "prompt")

	status, _ = do(t, app, http.MethodPost, "/generate-text", token, map[string]string{"prompt": "  \n"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodPost, "/generate-text", token, `{"prompt": ["a"]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = do(t, app, http.MethodPost, "/generate-text", "", map[string]string{"prompt": "hi"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestGenerateTextProviderFailure(t *testing.T) {
	app := setupApp(t, failingProvider{})
	token := registerAndLogin(t, app, "grace", "pw")

	status, body := do(t, app, http.MethodPost, "/generate-text", token, map[string]string{"prompt": "hi"})
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "Text generation failed", body["message"])
	assert.NotContains(t, fmt.Sprint(body), "upstream unavailable")

	// nothing was stored
	status, _ = do(t, app, http.MethodGet, "/generated-text/1", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
