package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"meshwork/internal/auth"
	"meshwork/internal/config"
	wsSvc "meshwork/internal/domain/services/workspace"
)

const sampleCollectionTitle = "Samples"

var (
	seedUserID   string
	seedEmail    string
	seedPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create sample workspaces for a user",
	Long: `Create a "Samples" collection holding one workspace per starter
template in the catalog.

Pass --user to seed an existing account, or --email and --password to
first provision a confirmed Supabase user through the Auth admin API
(SUPABASE_URL and SUPABASE_SERVICE_KEY). An existing user with that
email is deleted and recreated.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		userID, err := resolveSeedUser(ctx)
		if err != nil {
			return err
		}

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.repos.Close()

		collection, err := a.collections.CreateCollection(ctx, &wsSvc.CreateCollectionRequest{
			UserID: userID,
			Title:  sampleCollectionTitle,
		})
		if err != nil {
			return fmt.Errorf("create sample collection: %w", err)
		}

		created := 0
		for _, typeID := range a.registry.TypeIDs() {
			t, _ := a.registry.GetType(typeID)
			if t.Starter == nil {
				continue
			}

			ws, err := a.workspaces.CreateWorkspace(ctx, &wsSvc.CreateWorkspaceRequest{
				UserID:       userID,
				Title:        starterTitle(typeID),
				Type:         typeID,
				Icon:         t.Icon,
				CollectionID: &collection.ID,
			})
			if err != nil {
				return fmt.Errorf("create %s workspace: %w", typeID, err)
			}
			logger.Info("seeded workspace", "workspace_id", ws.ID, "type", typeID)
			created++
		}

		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d workspaces into collection %d for user %s\n",
			created, collection.ID, userID)
		return nil
	},
}

// resolveSeedUser returns the --user id, or provisions the --email account
func resolveSeedUser(ctx context.Context) (string, error) {
	if seedUserID != "" {
		return seedUserID, nil
	}
	if seedEmail == "" || seedPassword == "" {
		return "", fmt.Errorf("either --user or both --email and --password are required")
	}
	if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
		return "", fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY are required to provision a user")
	}

	userID, err := auth.NewAdminClient(cfg.SupabaseURL, cfg.SupabaseKey).EnsureUser(ctx, seedEmail, seedPassword)
	if err != nil {
		return "", fmt.Errorf("provision user: %w", err)
	}
	logger.Info("provisioned user", "email", seedEmail, "user_id", userID)
	return userID, nil
}

// starterTitle derives a valid workspace title from a catalog type id
func starterTitle(typeID string) string {
	title := strings.TrimPrefix(typeID, "template:")
	if len(title) > config.MaxWorkspaceTitleLength {
		title = title[:config.MaxWorkspaceTitleLength]
	}
	return title
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringVar(&seedUserID, "user", "", "id of the user to seed")
	seedCmd.Flags().StringVar(&seedEmail, "email", "", "email of a Supabase user to provision")
	seedCmd.Flags().StringVar(&seedPassword, "password", "", "password for the provisioned user")
	seedCmd.MarkFlagsMutuallyExclusive("user", "email")
	seedCmd.MarkFlagsRequiredTogether("email", "password")
}
