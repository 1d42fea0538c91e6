package handlers

import (
	"log"
	"net/http"
	"strconv"

	"openrace/apperr"
	"openrace/models"
	"openrace/services"

	"github.com/gin-gonic/gin"
)

type RaceHandler struct {
	raceService *services.RaceService
	hub         *services.Hub
}

func NewRaceHandler(raceService *services.RaceService, hub *services.Hub) *RaceHandler {
	return &RaceHandler{
		raceService: raceService,
		hub:         hub,
	}
}

func (h *RaceHandler) CreateRace(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req services.CreateRaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	race, err := h.raceService.CreateRace(userID.(uint), &req)
	if err != nil {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, race)
}

func (h *RaceHandler) JoinRace(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	raceID, ok := raceIDParam(c)
	if !ok {
		return
	}

	race, err := h.raceService.JoinRace(userID.(uint), raceID)
	if err != nil {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}

	if h.hub != nil {
		h.hub.BroadcastToRace(raceID, "roster_update", race.Roster)
	}

	c.JSON(http.StatusOK, race)
}

func (h *RaceHandler) StartRace(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	raceID, ok := raceIDParam(c)
	if !ok {
		return
	}

	race, err := h.raceService.StartRace(userID.(uint), raceID)
	if err != nil {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}

	if h.hub != nil {
		h.hub.BroadcastToRace(raceID, "race_started", gin.H{
			"race_id":    race.ID,
			"started_at": race.StartedAt,
		})
		log.Printf("Race %d started. Connected players: %v", raceID, h.hub.ConnectedPlayers(raceID))
	}

	c.JSON(http.StatusOK, race)
}

func (h *RaceHandler) ReportPosition(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	raceID, ok := raceIDParam(c)
	if !ok {
		return
	}

	var req services.ReportPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	race, err := h.raceService.ReportPosition(userID.(uint), raceID, &req)
	if err != nil {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}

	if h.hub != nil {
		if race.Status == models.RaceStatusFinished {
			h.hub.BroadcastToRace(raceID, "race_finished", race.Roster)
		}
	}

	c.JSON(http.StatusOK, race)
}

func (h *RaceHandler) GetRace(c *gin.Context) {
	raceID, ok := raceIDParam(c)
	if !ok {
		return
	}

	race, err := h.raceService.GetRace(raceID)
	if err != nil {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, race)
}

func (h *RaceHandler) ListWaitingRaces(c *gin.Context) {
	races, err := h.raceService.ListWaitingRaces()
	if err != nil {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, races)
}

func raceIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid race ID"})
		return 0, false
	}
	return uint(id), true
}
