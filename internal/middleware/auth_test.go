package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/okoagari/internal/config"
	"github.com/example/okoagari/internal/utils"
)

func newProtectedApp(t *testing.T, cfg *config.Config) (*fiber.App, *uuid.UUID) {
	t.Helper()

	app := fiber.New()
	var seen uuid.UUID
	app.Get("/protected", AuthMiddleware(cfg), func(c *fiber.Ctx) error {
		id, ok := GetCurrentUserID(c)
		assert.True(t, ok)
		seen = id
		return c.SendStatus(fiber.StatusOK)
	})

	return app, &seen
}

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "middleware-test-secret"}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	cfg := testConfig()
	app, seen := newProtectedApp(t, cfg)

	userID := uuid.New()
	token, err := utils.GenerateToken(cfg.JWTSecret, userID, "user", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, userID, *seen)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	app, _ := newProtectedApp(t, testConfig())

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	app, _ := newProtectedApp(t, testConfig())

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Token abc")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	cfg := testConfig()
	app, _ := newProtectedApp(t, cfg)

	token, err := utils.GenerateToken(cfg.JWTSecret, uuid.New(), "user", -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_TokenSignedWithOtherSecret(t *testing.T) {
	app, _ := newProtectedApp(t, testConfig())

	token, err := utils.GenerateToken("some-other-secret", uuid.New(), "user", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
