// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware extracts the authenticated identity forwarded by
// the Gateway after the wallet signature flow. Identity is required on
// session-derived routes (everything under /user/); elsewhere it is
// attached when present so handlers can use it opportunistically.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		wallet := strings.ToLower(strings.TrimSpace(c.Get("X-Wallet-Address")))

		path := c.Path()
		isSessionDerived := strings.HasPrefix(path, "/user/")
		if isSessionDerived && userID == "" && wallet == "" {
			log.Printf("❌ [USER_CTX] Missing identity headers on session-derived route: %s", path)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing identity — request must come through gateway with auth context",
			})
		}

		c.Locals("user_id", userID)
		c.Locals("wallet_address", wallet)

		return c.Next()
	}
}
