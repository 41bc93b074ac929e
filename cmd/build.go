package cmd

import (
	"fmt"
	"os"

	"github.com/kayz/promptblocks/internal/workspace"
	"github.com/spf13/cobra"
)

var buildOutputPath string

var buildCmd = &cobra.Command{
	Use:   "build <workspace.yaml>",
	Short: "Render a workspace file to prompt text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(appConfig, runtimeOptions{})
		if err != nil {
			return err
		}
		defer rt.close()

		if err := loadWorkspaceFile(rt.ws, args[0]); err != nil {
			return err
		}
		out := rt.ws.Prompt()

		if buildOutputPath == "" {
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		}
		if err := os.WriteFile(buildOutputPath, []byte(out), 0644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	},
}

func loadWorkspaceFile(ws *workspace.Workspace, path string) error {
	f, err := workspace.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read workspace: %w", err)
	}
	if err := ws.Load(f); err != nil {
		return fmt.Errorf("load workspace %s: %w", path, err)
	}
	return nil
}

func init() {
	buildCmd.Flags().StringVar(&buildOutputPath, "output", "", "Write output to file (default: stdout)")
	rootCmd.AddCommand(buildCmd)
}
