package http

import (
	"github.com/gin-gonic/gin"

	"github.com/avolkov/userbase/internal/auth"
	"github.com/avolkov/userbase/internal/config"
	"github.com/avolkov/userbase/internal/database"
	"github.com/avolkov/userbase/internal/uploads"
)

// RouterConfig receives all router dependencies in one place, improving
// testability and reducing parameter count.
type RouterConfig struct {
	Database    *database.Database
	AuthService *auth.Service
	Tokens      *auth.TokenService
	Gate        *auth.Middleware
	Uploads     *uploads.Store
	Config      *config.Config
	Version     string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(SecurityHeadersMiddleware())
	router.Use(CORSMiddleware(cfg.Config.CORS.AllowedOrigin))

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)

	// Uploaded profile images are public, keyed by generated filename.
	router.Static("/uploads", cfg.Uploads.Dir())

	authController := auth.NewController(cfg.AuthService, cfg.Tokens, cfg.Uploads, auth.ControllerOptions{
		MaxUploadSize: cfg.Config.Uploads.MaxUploadSize,
		DevMode:       cfg.Config.Global.DevMode,
	})
	authController.RegisterRoutes(router, cfg.Gate)

	return router
}
