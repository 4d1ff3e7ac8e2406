package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/opengov-tools/budget_import_app/internal/core/ports/services"
	"github.com/opengov-tools/budget_import_app/internal/dto"
	"github.com/opengov-tools/budget_import_app/internal/models"
)

// cacheHandler handles the operational cache commands.
type cacheHandler struct {
	cacheService portssvc.CacheSvcFacade
}

func newCacheHandler(cs portssvc.CacheSvcFacade) *cacheHandler {
	return &cacheHandler{cacheService: cs}
}

// registerCacheRoutes registers routes related to the reference cache.
func registerCacheRoutes(rg *gin.RouterGroup, cacheService portssvc.CacheSvcFacade) {
	h := newCacheHandler(cacheService)

	cache := rg.Group("/cache")
	{
		cache.POST("/preload", h.preload)
		cache.DELETE("", h.clear)
	}
}

// preload godoc
// @Summary Preload the reference cache
// @Description Snapshots dimension codes into the shared cache; optionally scoped to one level
// @Tags cache
// @Accept  json
// @Produce  json
// @Param   command body dto.CacheCommandRequest false "Optional level scope"
// @Success 204 "Preloaded"
// @Failure 400 {object} map[string]string "Invalid level"
// @Failure 500 {object} map[string]string "Failed to preload cache"
// @Router /cache/preload [post]
func (h *cacheHandler) preload(c *gin.Context) {
	logger := loggerFrom(c)

	var req dto.CacheCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	var err error
	if req.Level != "" {
		err = h.cacheService.PreloadLevel(c.Request.Context(), models.DimensionLevel(req.Level))
	} else {
		err = h.cacheService.PreloadAll(c.Request.Context())
	}
	if err != nil {
		logger.Error("Failed to preload cache", slog.String("level", req.Level), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to preload cache"})
		return
	}

	logger.Info("Reference cache preloaded", slog.String("level", req.Level))
	c.Status(http.StatusNoContent)
}

// clear godoc
// @Summary Clear the reference cache
// @Description Invalidates shared cache entries; optionally scoped to one level
// @Tags cache
// @Accept  json
// @Produce  json
// @Param   command body dto.CacheCommandRequest false "Optional level scope"
// @Success 204 "Cleared"
// @Failure 400 {object} map[string]string "Invalid level"
// @Failure 500 {object} map[string]string "Failed to clear cache"
// @Router /cache [delete]
func (h *cacheHandler) clear(c *gin.Context) {
	logger := loggerFrom(c)

	var req dto.CacheCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	var err error
	if req.Level != "" {
		err = h.cacheService.InvalidateLevel(c.Request.Context(), models.DimensionLevel(req.Level))
	} else {
		err = h.cacheService.InvalidateAll(c.Request.Context())
	}
	if err != nil {
		logger.Error("Failed to clear cache", slog.String("level", req.Level), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cache"})
		return
	}

	logger.Info("Reference cache cleared", slog.String("level", req.Level))
	c.Status(http.StatusNoContent)
}
