package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/kayz/promptblocks/internal/persist"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent generations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *persist.Store) error {
			list, err := store.RecentGenerations(historyLimit)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No generations recorded")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tPROVIDER\tSTATUS\tRESULT")
			for _, g := range list {
				status := g.Status
				if g.ErrorKind != "" {
					status += " (" + g.ErrorKind + ")"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", g.CreatedAt.Local().Format("2006-01-02 15:04:05"), g.Provider, status, firstLine(g.Result, 60))
			}
			return w.Flush()
		})
	},
}

func firstLine(s string, limit int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if r := []rune(s); len(r) > limit {
		return string(r[:limit]) + "..."
	}
	return s
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of generations to show")
	rootCmd.AddCommand(historyCmd)
}
