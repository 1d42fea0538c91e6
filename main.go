package main

import (
	"log"

	"openrace/config"
	"openrace/handlers"
	"openrace/middleware"
	"openrace/models"
	"openrace/routes"
	"openrace/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.User{},
		&models.Player{},
		&models.Track{},
		&models.ShopItem{},
		&models.Race{},
		&models.Invitation{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Initialize services
	authService := services.NewAuthService(db, cfg.JWTSecret)
	playerService := services.NewPlayerService(db)
	catalogService := services.NewCatalogService(db)
	raceService := services.NewRaceService(db, redisClient)
	inviteService := services.NewInviteService(db, raceService)

	// Seed static catalog data (no-op when already present)
	if err := catalogService.SeedTracks(); err != nil {
		log.Fatal("Failed to seed tracks:", err)
	}
	if err := catalogService.SeedShopItems(); err != nil {
		log.Fatal("Failed to seed shop items:", err)
	}

	// Initialize WebSocket hub
	hub := services.NewHub(raceService)
	go hub.Run()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	playerHandler := handlers.NewPlayerHandler(playerService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	raceHandler := handlers.NewRaceHandler(raceService, hub)
	inviteHandler := handlers.NewInviteHandler(inviteService)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, authHandler, playerHandler, catalogHandler, raceHandler, inviteHandler, hub, raceService, cfg.JWTSecret)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
