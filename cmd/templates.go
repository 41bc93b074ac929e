package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/kayz/promptblocks/internal/persist"
	"github.com/kayz/promptblocks/internal/workspace"
	"github.com/spf13/cobra"
)

var templatesCategory string

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage saved templates",
}

// withStore opens only the template store.
func withStore(fn func(*persist.Store) error) error {
	if appConfig.PromptBuild.SQLitePath == "" {
		return errors.New("prompt_build.sqlite_path is not configured")
	}
	store, err := persist.NewStore(resolvePath(appConfig.PromptBuild.RootDir, appConfig.PromptBuild.SQLitePath))
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *persist.Store) error {
			list, err := store.ListTemplates(templatesCategory)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No templates saved")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCATEGORY\tBLOCKS\tUPDATED")
			for _, t := range list {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", t.Name, t.Category, len(t.Blocks), t.UpdatedAt.Local().Format("2006-01-02 15:04"))
			}
			return w.Flush()
		})
	},
}

var templatesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a saved template as a workspace file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *persist.Store) error {
			t, err := store.GetTemplate(args[0])
			if err != nil {
				return err
			}
			return writeWorkspaceYAML(cmd, &workspace.File{Category: t.Category, Blocks: t.Blocks})
		})
	},
}

var templatesSaveCmd = &cobra.Command{
	Use:   "save <name> <workspace.yaml>",
	Short: "Save a workspace file as a template",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := workspace.ReadFile(args[1])
		if err != nil {
			return err
		}
		category := f.Category
		if category == "" {
			category = workspace.DefaultCategory
		}
		return withStore(func(store *persist.Store) error {
			t, err := store.SaveTemplate(args[0], category, f.Blocks)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved template %q (%d blocks)\n", t.Name, len(t.Blocks))
			return nil
		})
	},
}

var templatesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *persist.Store) error {
			if err := store.DeleteTemplate(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted template %q\n", args[0])
			return nil
		})
	},
}

func init() {
	templatesListCmd.Flags().StringVar(&templatesCategory, "category", "", "Only list templates of this category")
	templatesCmd.AddCommand(templatesListCmd, templatesShowCmd, templatesSaveCmd, templatesDeleteCmd)
	rootCmd.AddCommand(templatesCmd)
}
