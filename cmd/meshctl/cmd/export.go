package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	canvasModels "meshwork/internal/domain/models/canvas"
	wsModels "meshwork/internal/domain/models/workspace"
)

var (
	exportWorkspaceID int64
	exportUserID      string
	exportPretty      bool
)

// workspaceExport is the document printed by the export command
type workspaceExport struct {
	Workspace *wsModels.Workspace  `json:"workspace"`
	Canvas    *canvasModels.Canvas `json:"canvas"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print a workspace and its canvas as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if exportWorkspaceID <= 0 {
			return fmt.Errorf("--workspace must be a positive id")
		}

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.repos.Close()

		ws, err := a.workspaces.GetWorkspace(ctx, exportUserID, exportWorkspaceID)
		if err != nil {
			return err
		}
		canvas, err := a.canvas.GetCanvas(ctx, exportUserID, exportWorkspaceID)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		if exportPretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(workspaceExport{Workspace: ws, Canvas: canvas})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().Int64Var(&exportWorkspaceID, "workspace", 0, "id of the workspace to export")
	exportCmd.Flags().StringVar(&exportUserID, "user", "", "id of the workspace owner")
	exportCmd.Flags().BoolVar(&exportPretty, "pretty", false, "indent the output")
	_ = exportCmd.MarkFlagRequired("workspace")
	_ = exportCmd.MarkFlagRequired("user")
}
