package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"meshwork/internal/catalog"
	"meshwork/internal/config"
	"meshwork/internal/domain/services"
	canvasSvc "meshwork/internal/domain/services/canvas"
	wsSvc "meshwork/internal/domain/services/workspace"
	authService "meshwork/internal/service/auth"
	canvasService "meshwork/internal/service/canvas"
	wsService "meshwork/internal/service/workspace"
	"meshwork/internal/storage"
)

var (
	backend string
	cfg     *config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "meshctl",
	Short: "Operator CLI for the meshwork backend",
	Long: `meshctl manages the storage behind the meshwork API.

It reads the same environment (and .env file) as the server, so
DATABASE_URL, DATABASE_SCHEMA, SQLITE_PATH and STORAGE_BACKEND select
the database it works on.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		_ = godotenv.Load()
		cfg = config.Load()
		if backend != "" {
			cfg.StorageBackend = backend
		}

		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&backend, "backend", "b", "", "storage backend (postgres, sqlite, memory); defaults to STORAGE_BACKEND")
}

// app is the service graph the data commands work through
type app struct {
	repos       *storage.Repositories
	registry    *catalog.Registry
	authorizer  services.ResourceAuthorizer
	workspaces  wsSvc.WorkspaceService
	collections wsSvc.CollectionService
	canvas      canvasSvc.CanvasService
}

// openApp opens the configured backend and builds the services on it.
// The caller must Close the returned repositories.
func openApp(ctx context.Context) (*app, error) {
	repos, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	registry, err := catalog.NewRegistry()
	if err != nil {
		repos.Close()
		return nil, err
	}

	authorizer := authService.NewOwnerBasedAuthorizer(repos.Workspaces, repos.Collections)
	return &app{
		repos:       repos,
		registry:    registry,
		authorizer:  authorizer,
		workspaces:  wsService.NewWorkspaceService(repos.Workspaces, repos.Canvas, repos.Tx, authorizer, registry, logger),
		collections: wsService.NewCollectionService(repos.Collections, repos.Tx, authorizer, logger),
		canvas: canvasService.NewCanvasService(repos.Canvas, repos.Tx, authorizer,
			canvasService.Options{StrictEdges: cfg.StrictEdges}, logger),
	}, nil
}
