// handlers/bounty_routes.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"openreward-profile-service/middleware"
	"openreward-profile-service/services"
)

func SetupBountyRoutes(app *fiber.App, bountyService *services.BountyService) {
	// 🔓 Public listing routes
	app.Get("/api/bounties", func(c *fiber.Ctx) error {
		bounties, err := bountyService.List(c.Query("status"))
		if err != nil {
			return errorResponse(c, err, "Failed to list bounties")
		}
		return c.JSON(fiber.Map{"bounties": bounties})
	})

	app.Get("/api/bounties/:contractAddress", func(c *fiber.Ctx) error {
		bounty, err := bountyService.GetByContract(c.Params("contractAddress"))
		if err != nil {
			return errorResponse(c, err, "Failed to fetch bounty")
		}
		return c.JSON(bounty)
	})

	// 🔐 Wallet-scoped lifecycle routes
	walletCtx := middleware.WalletContextMiddleware()

	app.Post("/api/bounties", walletCtx, func(c *fiber.Ctx) error {
		var req services.BountyListing
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.ProviderWallet == "" {
			req.ProviderWallet, _ = c.Locals("wallet_address").(string)
		}

		bounty, err := bountyService.CreateBounty(&req)
		if err != nil {
			return errorResponse(c, err, "Failed to create bounty")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Bounty listed successfully",
			"bounty":  bounty,
		})
	})

	app.Post("/api/bounties/:contractAddress/join", walletCtx, func(c *fiber.Ctx) error {
		wallet, _ := c.Locals("wallet_address").(string)
		bounty, err := bountyService.JoinBounty(c.Params("contractAddress"), wallet)
		if err != nil {
			return errorResponse(c, err, "Failed to join bounty")
		}
		return c.JSON(fiber.Map{
			"message": "Joined bounty",
			"bounty":  bounty,
		})
	})

	app.Post("/api/bounties/:contractAddress/complete", walletCtx, func(c *fiber.Ctx) error {
		type Req struct {
			WinnerWallet string `json:"winnerWallet"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		bounty, err := bountyService.CompleteBounty(c.Params("contractAddress"), req.WinnerWallet)
		if err != nil {
			return errorResponse(c, err, "Failed to complete bounty")
		}
		return c.JSON(fiber.Map{
			"message": "Bounty completed",
			"bounty":  bounty,
		})
	})
}
