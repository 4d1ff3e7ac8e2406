package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	portssvc "github.com/opengov-tools/budget_import_app/internal/core/ports/services"
	"github.com/opengov-tools/budget_import_app/internal/middleware"
	"github.com/opengov-tools/budget_import_app/internal/models"
	"github.com/opengov-tools/budget_import_app/pkg/config"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	importService portssvc.ImportSvcFacade,
	cacheService portssvc.CacheSvcFacade,
	opsService portssvc.OpsSvcFacade,
	uploadLimiter *limiter.Limiter,
	logger *slog.Logger,
) {
	registerCustomValidations(logger)

	// Add health check route
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	v1 := r.Group("/api/v1")

	registerImportRoutes(v1, importService, cfg, uploadLimiter)
	registerCacheRoutes(v1, cacheService)
	registerOpsRoutes(v1, opsService)
}

// registerCustomValidations wires domain validations into gin's binding engine.
func registerCustomValidations(logger *slog.Logger) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		logger.Error("Failed to access gin validator engine")
		return
	}
	if err := v.RegisterValidation("dimlevel", func(fl validator.FieldLevel) bool {
		return models.IsValidLevel(fl.Field().String())
	}); err != nil {
		logger.Error("Failed to register dimlevel validation", slog.String("error", err.Error()))
	}
}

// loggerFrom pulls the request-scoped logger for handlers.
func loggerFrom(c *gin.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(c.Request.Context())
}
