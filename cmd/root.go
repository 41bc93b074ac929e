package cmd

import (
	"fmt"
	"os"

	"github.com/kayz/promptblocks/internal/config"
	"github.com/kayz/promptblocks/internal/logger"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	configPath string

	// appConfig is loaded once per invocation in PersistentPreRunE
	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "promptblocks",
	Short: "Assemble prompts from ordered blocks and send them to a text-generation service",
	Long: `promptblocks builds structured prompts out of labeled blocks
(context, requirement, constraint, example, output format).

Modes:
  promptblocks web        Run the browser workspace
  promptblocks mcp        Serve the workspace as MCP tools over stdio
  promptblocks build      Render a workspace file to prompt text
  promptblocks generate   Render a workspace file and send it for generation`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		appConfig = cfg

		// Flag wins over config file
		levelName := cfg.Logging.Level
		if cmd.Flags().Changed("log") || levelName == "" {
			levelName = logLevel
		}
		level, err := logger.ParseLevel(levelName)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		return logger.SetOutput(os.Stderr, cfg.Logging.File)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info",
		"Log level: trace, debug, info, warn, error, fatal, panic")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default: .promptblocks.yaml next to the executable)")
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
