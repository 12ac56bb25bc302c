package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"codequest/handlers"
	"codequest/middleware"
	"codequest/models"
	"codequest/realtime"
	"codequest/services"
	"codequest/utils"
	"codequest/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	solutionKey := os.Getenv("SOLUTION_KEY")
	if solutionKey == "" {
		log.Fatal("SOLUTION_KEY environment variable not set (base64-encoded 32 bytes)")
	}
	cipher, err := utils.NewSolutionCipher(solutionKey)
	if err != nil {
		log.Fatal("invalid SOLUTION_KEY:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Challenge{},
		&models.GameProgress{},
		&models.MultiplayerStats{},
		&models.MultiplayerMatch{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.Leaderboard{},
		&models.CodeSubmission{},
		&models.Lesson{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := models.Seed(db); err != nil {
		log.Fatal("failed to seed database:", err)
	}

	app := fiber.New()

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: true,
	}))

	store := middleware.NewSessionStore()
	app.Use(middleware.UserContext(store))

	achievementService := services.NewAchievementService(db)
	progressService := services.NewProgressService(db, cipher, achievementService)
	leaderboardService := services.NewLeaderboardService(db)
	multiplayerService := services.NewMultiplayerService(db, achievementService)
	submissionService := services.NewSubmissionService(db)
	authService := services.NewAuthService(db, store)
	challengeService := services.NewChallengeService(db)
	lessonService := services.NewLessonService(db)

	hub := realtime.NewHub(services.NewMockEvaluator(), multiplayerService, submissionService)
	achievementService.Notifier = hub

	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
		backbone, err := realtime.NewBackbone(redisAddr, os.Getenv("REDIS_PASSWORD"), redisDB)
		if err != nil {
			log.Fatal("failed to connect to redis backbone:", err)
		}
		hub.SetBackbone(backbone)
		log.Println("Redis broadcast backbone enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go hub.Run(ctx)

	recomputeMinutes, _ := strconv.Atoi(os.Getenv("LEADERBOARD_RECOMPUTE_MINUTES"))
	if recomputeMinutes < 1 {
		recomputeMinutes = 5
	}
	leaderboardService.StartRecomputeScheduler(time.Duration(recomputeMinutes) * time.Minute)

	archiveEnabled, err := utils.InitArchiveStorage()
	if err != nil {
		log.Fatal("failed to initialize archive storage:", err)
	}
	if archiveEnabled {
		archiver := workers.NewSubmissionArchiver(db)
		go workers.PollSubmissions(ctx, archiver, 1*time.Minute)
		log.Println("Submission archiving enabled")
	}

	handlers.SetupAuthRoutes(app, authService)
	handlers.SetupGameRoutes(app, challengeService, lessonService, progressService)
	handlers.SetupProgressRoutes(app, progressService, leaderboardService)
	handlers.SetupRealtimeRoutes(app, hub, store)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":5000"
	}
	go func() {
		if err := app.Listen(addr); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()
	log.Printf("Server running on %s", addr)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
