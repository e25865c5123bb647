package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/AyanAhmedKhan/scholar/config"
	"github.com/AyanAhmedKhan/scholar/controllers"
	"github.com/AyanAhmedKhan/scholar/middleware"
	"github.com/AyanAhmedKhan/scholar/pdfmerge"
	"github.com/AyanAhmedKhan/scholar/queue"
	"github.com/AyanAhmedKhan/scholar/repository"
	"github.com/AyanAhmedKhan/scholar/routes"
	"github.com/AyanAhmedKhan/scholar/services"
	"github.com/AyanAhmedKhan/scholar/storage"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	logFile, _ := config.InitLogging(cfg)
	if logFile != nil {
		defer logFile.Close()
	}

	db, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	if err := os.MkdirAll(cfg.MediaDir, os.ModePerm); err != nil {
		log.Printf("Warning: Failed to create media directory: %v", err)
	}

	store := repository.New(db)
	files := storage.NewMaterializer(cfg.MediaDir)
	merger := pdfmerge.NewMerger(cfg.MediaDir)
	notifier := services.NewMailNotifier(config.NewMailer(cfg))

	var enqueuer services.RenderEnqueuer
	if cfg.RedisAddr != "" {
		client := queue.NewClient(cfg.RedisAddr)
		defer client.Close()
		enqueuer = client
	}

	vaultSvc := services.NewVaultService(store, store, files, store, cfg.DefaultMaxSizeMB)
	appSvc := services.NewApplicationService(store, store, store, store, store, files, store, notifier, cfg.SwitchLimit)
	renderSvc := services.NewRenderService(store, store, enqueuer, merger, files, cfg.RenderTimeout)

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Security headers
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	})
	router.Use(middleware.CORSMiddleware())

	routes.SetupRoutes(router, routes.Controllers{
		Auth:         controllers.NewAuthController(store, cfg.JWTSecret),
		Documents:    controllers.NewDocumentController(vaultSvc, store, store, store),
		Applications: controllers.NewApplicationController(appSvc, renderSvc, store, store),
		JWTSecret:    cfg.JWTSecret,
		Users:        store,
	})

	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
