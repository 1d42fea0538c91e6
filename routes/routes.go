package routes

import (
	"log"
	"net/http"
	"strconv"

	"openrace/handlers"
	"openrace/middleware"
	"openrace/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	playerHandler *handlers.PlayerHandler,
	catalogHandler *handlers.CatalogHandler,
	raceHandler *handlers.RaceHandler,
	inviteHandler *handlers.InviteHandler,
	hub *services.Hub,
	raceService *services.RaceService,
	jwtSecret string,
) {
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Catalog routes (public, read-only)
		api.GET("/tracks", catalogHandler.ListTracks)
		api.GET("/shop", catalogHandler.ListShopItems)
		api.GET("/races/:id", raceHandler.GetRace)

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			protected.GET("/auth/profile", authHandler.GetProfile)

			players := protected.Group("/players")
			{
				players.GET("/me", playerHandler.GetProfile)
				players.PUT("/me/name", playerHandler.UpdateName)
				players.POST("/me/purchase", playerHandler.PurchaseItem)
				players.POST("/me/select", playerHandler.SelectItem)
			}

			races := protected.Group("/races")
			{
				races.POST("", raceHandler.CreateRace)
				races.GET("", raceHandler.ListWaitingRaces)
				races.POST("/:id/join", raceHandler.JoinRace)
				races.POST("/:id/start", raceHandler.StartRace)
				races.POST("/:id/position", raceHandler.ReportPosition)
			}

			invites := protected.Group("/invites")
			{
				invites.POST("", inviteHandler.SendInvite)
				invites.GET("", inviteHandler.ListPending)
				invites.POST("/:id/respond", inviteHandler.RespondInvite)
			}
		}
	}

	// WebSocket endpoint for live race communication
	router.GET("/ws/races/:raceID/:playerID", func(c *gin.Context) {
		raceID, err := strconv.ParseUint(c.Param("raceID"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid race ID"})
			return
		}
		playerID, err := strconv.ParseUint(c.Param("playerID"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid player ID"})
			return
		}

		// Only roster members (or the host) may attach to a race channel.
		ok, err := raceService.IsParticipant(uint(raceID), uint(playerID))
		if err != nil || !ok {
			log.Printf("WebSocket access denied for race %d, player %d: %v", raceID, playerID, err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Player not found in race"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for race %d, player %d: %v", raceID, playerID, err)
			return
		}

		playerName := c.Query("playerName")
		if playerName == "" {
			if player, err := raceService.GetPlayerByID(uint(playerID)); err == nil {
				playerName = player.Name
			} else {
				playerName = "Unknown Player"
			}
		}

		hub.RegisterClient(conn, uint(raceID), uint(playerID), playerName)
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
