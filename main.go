package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"openreward-profile-service/database"
	"openreward-profile-service/handlers"
	"openreward-profile-service/middleware"
	"openreward-profile-service/models"
	"openreward-profile-service/services"
	"openreward-profile-service/utils"
	"openreward-profile-service/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB — avatars are the largest payload
	})

	// 🔐 GLOBAL: only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	// Load allowed origins from environment variable
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Wallet-Address, X-User-Email, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Lazy singleton with bounded retry; every handler shares this handle.
	dbManager := database.NewManager(os.Getenv("DATABASE_URL"))
	db, err := dbManager.Acquire(ctx)
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}

	if err := db.AutoMigrate(
		&models.BountyHunter{},
		&models.BountyProvider{},
		&models.Bounty{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	registrationService := services.NewRegistrationService(db)
	roleService := services.NewRoleService(db)
	githubClient := services.NewGithubClient(os.Getenv("GITHUB_ACCESS_TOKEN"))
	verificationService := services.NewVerificationService(db, githubClient)
	bountyService := services.NewBountyService(db)

	// --- Indexer-backed sync workers (optional: skipped when no indexer) ---
	indexerURL := os.Getenv("INDEXER_URL")
	if indexerURL != "" {
		serviceToken := os.Getenv("PROFILE_SERVICE_TOKEN")

		balanceClient := workers.NewBalanceSyncClient(db, indexerURL, "/api/v1/public/balances", serviceToken)
		go workers.PollBalances(ctx, balanceClient, 10*time.Second)

		bountySyncWorker := workers.NewBountySyncWorker(db, bountyService, indexerURL, "/api/v1/public/bounties", serviceToken)
		bountySyncWorker.Start(ctx)
	} else {
		log.Println("⚠️  INDEXER_URL not set — balance and bounty sync workers disabled")
	}

	bountyService.StartExpiryScheduler()

	// ✅ Setup routes — gateway auth already enforced globally
	handlers.SetupProfileRoutes(app, registrationService, roleService, verificationService)
	handlers.SetupBountyRoutes(app, bountyService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
