package cmd

import (
	"github.com/kayz/promptblocks/internal/mcpserver"
	"github.com/spf13/cobra"
)

var mcpSeed bool

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the workspace as MCP tools over stdio",
	Long: `Run an MCP server on stdin/stdout. Logs go to stderr and the
configured log file so they never interleave with the protocol stream.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(appConfig, runtimeOptions{seed: mcpSeed, withStore: true, recordHistory: true})
		if err != nil {
			return err
		}
		defer rt.close()

		var library mcpserver.Library
		if rt.store != nil {
			library = rt.store
		}
		return mcpserver.ServeStdio(mcpserver.New(mcpserver.NewTools(rt.ws, library)))
	},
}

func init() {
	mcpCmd.Flags().BoolVar(&mcpSeed, "seed", false, "Start with a context and a requirement block")
	rootCmd.AddCommand(mcpCmd)
}
