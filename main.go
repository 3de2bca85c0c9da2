package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"rap-battle-platform/handlers"
	"rap-battle-platform/models"
	"rap-battle-platform/services"
	"rap-battle-platform/utils"
	"rap-battle-platform/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 30 * 1024 * 1024, // audio uploads cap at 25MB
	})

	// CORS: load allowed origins from environment variable
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
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Service-Token, Stripe-Signature",
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
		&models.Character{},
		&models.Battle{},
		&models.Verse{},
		&models.Clone{},
		&models.Tournament{},
		&models.TournamentEntry{},
		&models.LeaderboardEntry{},
		&models.Wallet{},
		&models.Transaction{},
		&models.Subscription{},
		&models.WebhookEvent{},
		&models.ArcWallet{},
		&models.ArcTransaction{},
		&models.UserProgress{},
		&models.BadgeType{},
		&models.UserBadge{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := utils.EnsureUploadDir(); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}

	// Redis is optional: without it the leaderboard serves straight from Postgres
	var rdb *redis.Client
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
	} else {
		log.Println("⚠️  REDIS_ADDR not set, leaderboard cache disabled")
	}

	// Service wiring
	groqClient := services.NewGroqClient()
	ttsClient := services.NewElevenLabsClient()
	leaderboardCache := services.NewLeaderboardCache(rdb)

	arcService := services.NewArcService(db)
	authService := services.NewAuthService(db)
	walletService := services.NewWalletService(db)
	progressionService := services.NewProgressionService(db)
	badgeService := services.NewBadgeService(db)
	cloneService := services.NewCloneService(db)
	characterService := services.NewCharacterService(db)
	battleService := services.NewBattleService(db, groqClient, ttsClient, walletService,
		progressionService, badgeService, cloneService, leaderboardCache)
	tournamentService := services.NewTournamentService(db, walletService, arcService,
		progressionService, badgeService, leaderboardCache)
	paymentService := services.NewPaymentService(db, walletService)
	voiceService := services.NewVoiceService(db, groqClient)

	if err := badgeService.SeedBadgeTypes(); err != nil {
		log.Fatal("failed to seed badge types:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workers.NewArcSettlementWorker(db).Start(ctx)
	workers.NewLeaderboardSyncWorker(db, leaderboardCache).Start(ctx)

	battleService.StartPublishScheduler()

	// Routes
	handlers.SetupAuthRoutes(app, authService)
	handlers.SetupCharacterRoutes(app, characterService)
	handlers.SetupBattleRoutes(app, battleService, cloneService)
	handlers.SetupTournamentRoutes(app, tournamentService)
	handlers.SetupWalletRoutes(app, walletService, arcService)
	handlers.SetupPaymentRoutes(app, paymentService)
	handlers.SetupProgressionRoutes(app, progressionService, badgeService)
	handlers.SetupVoiceRoutes(app, voiceService)

	app.Static("/uploads", "./uploads")

	port := os.Getenv("PORT")
	if port == "" {
		port = "5200"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Arc Settlement Worker running (5s)")
	log.Println("✅ Leaderboard Sync Worker running (30s)")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = app.Shutdown()
}
