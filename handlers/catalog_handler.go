package handlers

import (
	"net/http"

	"openrace/apperr"
	"openrace/models"
	"openrace/services"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
}

func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) ListTracks(c *gin.Context) {
	tracks, err := h.catalogService.ListTracks()
	if err != nil {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}

	// checkpoint_radius tells clients how close counts as reaching the
	// next checkpoint; the server records whatever lap they report.
	c.JSON(http.StatusOK, gin.H{
		"tracks":            tracks,
		"checkpoint_radius": models.CheckpointRadius,
	})
}

func (h *CatalogHandler) ListShopItems(c *gin.Context) {
	items, err := h.catalogService.ListShopItems()
	if err != nil {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, items)
}
