package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"meshwork/internal/auth"
	"meshwork/internal/catalog"
	"meshwork/internal/config"
	"meshwork/internal/handler"
	"meshwork/internal/middleware"
	"meshwork/internal/observability"
	authService "meshwork/internal/service/auth"
	canvasService "meshwork/internal/service/canvas"
	wsService "meshwork/internal/service/workspace"
	"meshwork/internal/storage"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"backend", cfg.StorageBackend,
	)

	// Identity boundary: real JWTs, or a fixed user for local development
	var authMiddleware func(http.Handler) http.Handler
	if cfg.DevAuthEnabled() {
		logger.Warn("DEV AUTH: every request is authenticated as DEV_USER_ID (NEVER use in production!)",
			"user_id", cfg.DevUserID)
		authMiddleware = middleware.DevAuthMiddleware(cfg.DevUserID)
	} else {
		jwtVerifier, err := auth.NewJWTVerifier(cfg.SupabaseJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer jwtVerifier.Close()
		authMiddleware = middleware.AuthMiddleware(jwtVerifier, logger)
	}

	ctx := context.Background()
	repos, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer repos.Close()

	metrics := observability.NewCollector(cfg.MetricsNamespace)
	canvasRepo := observability.NewMetricsCanvasRepository(repos.Canvas, metrics)

	registry, err := catalog.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load workspace catalog: %v", err)
	}
	logger.Info("catalog loaded", "types", len(registry.TypeIDs()), "icons", len(registry.Icons()))

	// Create services
	authorizer := authService.NewOwnerBasedAuthorizer(repos.Workspaces, repos.Collections)
	canvasSvc := canvasService.NewCanvasService(canvasRepo, repos.Tx, authorizer,
		canvasService.Options{StrictEdges: cfg.StrictEdges}, logger)
	workspaceSvc := wsService.NewWorkspaceService(repos.Workspaces, canvasRepo, repos.Tx, authorizer, registry, logger)
	collectionSvc := wsService.NewCollectionService(repos.Collections, repos.Tx, authorizer, logger)
	treeSvc := wsService.NewTreeService(repos.Collections, repos.Workspaces, repos.Tx, logger)

	logger.Info("services initialized", "strict_edges", cfg.StrictEdges)

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Handlers{
		Workspace:  handler.NewWorkspaceHandler(workspaceSvc, logger),
		Canvas:     handler.NewCanvasHandler(canvasSvc, logger),
		Collection: handler.NewCollectionHandler(collectionSvc, treeSvc, logger),
		Catalog:    handler.NewCatalogHandler(registry, repos.Backend),
		Metrics:    metrics.Handler(),
	})

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → RequestID → Logging → Metrics → Auth → Routes
	var h http.Handler = mux
	h = authMiddleware(h)
	h = middleware.Metrics(metrics, mux)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.RequestID(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
}
