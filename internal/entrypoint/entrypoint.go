package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/userbase/internal/auth"
	"github.com/avolkov/userbase/internal/config"
	"github.com/avolkov/userbase/internal/database"
	"github.com/avolkov/userbase/internal/database/users"
	http_controllers "github.com/avolkov/userbase/internal/http"
	"github.com/avolkov/userbase/internal/uploads"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM, waiting up to the configured
	// timeout for in-flight requests.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Shutdown callback first (e.g., to stop the upload sweeper)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting userbase v%s", version)

	// The signing secret is a startup precondition; a server that mints
	// unverifiable tokens must not come up at all.
	if cfg.Auth.JWTSecret == "" {
		log.Fatalf("JWT_SECRET is not set; refusing to start")
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	store, err := uploads.NewStore(cfg.Uploads.Dir, cfg.Uploads.MaxUploadSize)
	if err != nil {
		log.Fatalf("Failed to initialize upload store: %v", err)
	}

	repo := users.NewRepository(db.DB)
	authService := auth.NewService(repo, cfg.Auth)
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	gate := auth.NewMiddleware(authService, tokens)

	// Background sweep of upload files no user record references
	sweeper, err := uploads.NewSweeper(store, repo, cfg.Uploads.SweepSchedule, cfg.Uploads.SweepMinAge)
	if err != nil {
		log.Fatalf("Failed to initialize upload sweeper: %v", err)
	}
	sweeper.Start()

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:    db,
		AuthService: authService,
		Tokens:      tokens,
		Gate:        gate,
		Uploads:     store,
		Config:      cfg,
		Version:     version,
	})

	onShutdown := func(ctx context.Context) {
		sweeper.Stop(ctx)
	}

	Serve(router, cfg, onShutdown)
}
