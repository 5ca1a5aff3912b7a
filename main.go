package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"movie-review-system/handlers"
	"movie-review-system/middleware"
	"movie-review-system/models"
	"movie-review-system/services"
	"movie-review-system/utils"
	"movie-review-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB — avatars are the largest payload
	})

	// 🔐 GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

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
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-Wallet-Address, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Review{},
		&models.PointTransaction{},
		&models.Notification{},
		&models.InviteCode{},
		&models.Referral{},
		&models.Support{},
		&models.Follow{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	pointsService := services.NewPointsService(db)
	notificationService := services.NewNotificationService(db)
	reviewService := services.NewReviewService(db, pointsService, notificationService)
	userService := services.NewUserService(db, pointsService, notificationService)
	inviteService := services.NewInviteService(db, pointsService, notificationService)
	supportService := services.NewSupportService(db, pointsService, notificationService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Supports submitted straight to the contract never hit POST /support;
	// the poller picks them up from the payments service instead.
	supportSyncClient := workers.NewSupportSyncClient(db, pointsService, notificationService)
	go workers.PollSupports(ctx, supportSyncClient, 30*time.Second)

	notificationService.StartRetentionSweeper()

	handlers.SetupReviewRoutes(app, reviewService, supportService)
	handlers.SetupUserRoutes(app, userService)
	handlers.SetupEngagementRoutes(app, notificationService, pointsService, inviteService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Support payment polling running (every 30s)")
	log.Println("✅ Notification retention sweeper running (daily)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
