// handlers/profile_routes.go
package handlers

import (
	"errors"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"openreward-profile-service/common"
	"openreward-profile-service/middleware"
	"openreward-profile-service/services"
	"openreward-profile-service/utils"
)

func SetupProfileRoutes(
	app *fiber.App,
	registrationService *services.RegistrationService,
	roleService *services.RoleService,
	verificationService *services.VerificationService,
) {
	app.Post("/api/addBountyHunter", func(c *fiber.Ctx) error {
		var req services.HunterRegistration
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		hunter, created, err := registrationService.RegisterHunter(&req)
		if err != nil {
			return errorResponse(c, err, "Failed to create bounty hunter")
		}

		if !created {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"message": "User already exists",
				"hunter":  hunter,
			})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Bounty hunter created successfully",
			"hunter":  hunter,
		})
	})

	app.Post("/api/addBountyProvider", func(c *fiber.Ctx) error {
		var req services.ProviderRegistration
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		provider, err := registrationService.RegisterProvider(&req)
		if err != nil {
			return errorResponse(c, err, "Failed to create bounty provider")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":  "Bounty provider created successfully",
			"provider": provider,
		})
	})

	app.Get("/api/checkUserRole", func(c *fiber.Ctx) error {
		resolution, err := roleService.Resolve(c.Query("email"))
		if err != nil {
			return errorResponse(c, err, "Failed to check user role")
		}
		return c.JSON(resolution)
	})

	// 🔐 Wallet context required — the gateway forwards the verified wallet.
	walletCtx := middleware.WalletContextMiddleware()

	app.Post("/api/verifyGithubOrg", walletCtx, func(c *fiber.Ctx) error {
		type Req struct {
			OrgName       string `json:"orgName"`
			Method        string `json:"method"`
			GithubToken   string `json:"githubToken"`
			WalletAddress string `json:"walletAddress"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		wallet, _ := c.Locals("wallet_address").(string)
		if wallet == "" {
			wallet = req.WalletAddress
		}

		provider, err := verificationService.VerifyOrganization(
			c.Context(), wallet, req.OrgName, req.Method, req.GithubToken)
		if err != nil {
			if errors.Is(err, common.ErrNotOrgAdmin) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"success": false,
					"message": "User is not an organization admin",
				})
			}
			return errorResponse(c, err, "Verification failed")
		}

		return c.JSON(fiber.Map{
			"success":  true,
			"provider": provider,
		})
	})

	app.Post("/api/uploadAvatar", walletCtx, func(c *fiber.Ctx) error {
		avatarFile, err := c.FormFile("avatar")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is required"})
		}
		if avatarFile.Size > 5*1024*1024 { // 5MB
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file too large (max 5MB)"})
		}

		ext := filepath.Ext(avatarFile.Filename)
		if ext == "" {
			ext = ".png"
		}
		key := "avatars/" + uuid.NewString() + ext
		url, err := utils.UploadFileToR2(avatarFile, key)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"error": "failed to upload avatar to R2"})
		}

		return c.JSON(fiber.Map{"url": url})
	})
}

// errorResponse maps taxonomy errors to status codes. fallback is the
// public message for untyped 500s.
func errorResponse(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, common.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, common.ErrConflict), errors.Is(err, common.ErrInsufficientBalance):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, common.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, common.ErrNotOrgAdmin):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fallback,
			"cause": err.Error(),
		})
	}
}
