package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/opengov-tools/budget_import_app/internal/core/ports/services"
	"github.com/opengov-tools/budget_import_app/internal/dto"
)

// opsHandler serves the operational status surface.
type opsHandler struct {
	opsService portssvc.OpsSvcFacade
}

func newOpsHandler(os portssvc.OpsSvcFacade) *opsHandler {
	return &opsHandler{opsService: os}
}

// registerOpsRoutes registers the operational status route.
func registerOpsRoutes(rg *gin.RouterGroup, opsService portssvc.OpsSvcFacade) {
	h := newOpsHandler(opsService)

	ops := rg.Group("/ops")
	{
		ops.GET("/status", h.status)
	}
}

// status godoc
// @Summary Pipeline status
// @Description Reports queue depth, failed imports, chunk-size recommendation and cache state
// @Tags ops
// @Produce  json
// @Success 200 {object} dto.OpsStatusResponse
// @Failure 500 {object} map[string]string "Failed to read status"
// @Router /ops/status [get]
func (h *opsHandler) status(c *gin.Context) {
	logger := loggerFrom(c)

	status, err := h.opsService.Status(c.Request.Context())
	if err != nil {
		logger.Error("Failed to read pipeline status", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read status"})
		return
	}

	c.JSON(http.StatusOK, dto.ToOpsStatusResponse(status))
}
