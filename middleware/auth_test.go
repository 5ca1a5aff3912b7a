package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContextMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(UserContextMiddleware())
	app.Get("/user/me", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": c.Locals("user_id"),
			"wallet":  c.Locals("wallet_address"),
		})
	})
	app.Get("/users", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	t.Run("session route without identity is rejected", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/user/me", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("session route with identity passes", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/user/me", nil)
		req.Header.Set("X-User-ID", "u1")
		req.Header.Set("X-Wallet-Address", "0xABCDEF")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("public route passes without identity", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/users", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}

func TestUserContextMiddlewareLowercasesWallet(t *testing.T) {
	app := fiber.New()
	app.Use(UserContextMiddleware())

	var seenWallet string
	app.Get("/user/me", func(c *fiber.Ctx) error {
		seenWallet, _ = c.Locals("wallet_address").(string)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/user/me", nil)
	req.Header.Set("X-Wallet-Address", " 0xAbCd1234 ")
	_, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "0xabcd1234", seenWallet)
}
