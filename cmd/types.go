package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/kayz/promptblocks/internal/workspace"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List block types and template categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry(appConfig)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tNAME\tCOLOR\tHEADER")
		for _, t := range registry.Types() {
			fmt.Fprintf(w, "%s\t%s\t%s\t[%s]\n", t.ID, t.DisplayName, t.ColorTag, strings.ToUpper(t.DisplayName))
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "CATEGORY\tNAME")
		for _, c := range workspace.Categories {
			fmt.Fprintf(w, "%s\t%s\n", c.ID, c.Name)
		}
		return w.Flush()
	},
}

func writeWorkspaceYAML(cmd *cobra.Command, f *workspace.File) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return enc.Close()
}

func init() {
	rootCmd.AddCommand(typesCmd)
}
