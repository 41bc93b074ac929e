package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kayz/promptblocks/internal/generation"
	"github.com/spf13/cobra"
)

var (
	generateTemplate string
	generateNoStore  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [workspace.yaml]",
	Short: "Send a workspace file or saved template for generation and print the answer",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (len(args) == 0) == (generateTemplate == "") {
			return errors.New("pass either a workspace file or --template")
		}

		rt, err := newRuntime(appConfig, runtimeOptions{
			withStore:     !generateNoStore || generateTemplate != "",
			recordHistory: !generateNoStore,
		})
		if err != nil {
			return err
		}
		defer rt.close()

		if generateTemplate != "" {
			if _, err := rt.ws.LoadTemplate(generateTemplate); err != nil {
				return err
			}
		} else if err := loadWorkspaceFile(rt.ws, args[0]); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		token := rt.ws.Generate()
		state, err := rt.client.Wait(ctx)
		if err != nil {
			return err
		}
		// Let the result hook finish recording before the store closes.
		rt.client.Drain()

		if state.Token != token {
			return errors.New("generation was superseded")
		}
		if state.Phase == generation.PhaseFailed {
			return fmt.Errorf("generation failed (%s): %s", state.Kind, state.Message)
		}
		fmt.Fprintln(cmd.OutOrStdout(), state.Text)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateTemplate, "template", "", "Generate from a saved template instead of a file")
	generateCmd.Flags().BoolVar(&generateNoStore, "no-history", false, "Do not record the result in the generation history")
	rootCmd.AddCommand(generateCmd)
}
