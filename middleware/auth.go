// middleware/wallet_context.go
package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// WalletContextMiddleware extracts the wallet identity set by the gateway
// after the Civic wallet session is verified. Secured routes need the
// wallet address; the authenticated email rides along for role checks.
func WalletContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		wallet := c.Get("X-Wallet-Address")
		email := c.Get("X-User-Email")

		if wallet == "" {
			log.Printf("❌ [WALLET_CTX] X-Wallet-Address required but missing on secured route: %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-Wallet-Address — request must come through gateway with wallet context",
			})
		}

		c.Locals("wallet_address", wallet)
		c.Locals("user_email", email)

		return c.Next()
	}
}
