package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kayz/promptblocks/internal/cron"
	"github.com/kayz/promptblocks/internal/logger"
	"github.com/kayz/promptblocks/internal/webui"
	"github.com/spf13/cobra"
)

var webPort int

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Run the promptblocks Web UI server",
	RunE:  runWeb,
}

func init() {
	rootCmd.AddCommand(webCmd)
	webCmd.Flags().IntVar(&webPort, "port", 0, "Web UI listen port (default: web.port from config)")
}

func runWeb(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(appConfig, runtimeOptions{seed: true, withStore: true, recordHistory: true})
	if err != nil {
		return err
	}
	defer rt.close()

	scheduler := cron.NewScheduler()
	if appConfig.PromptBuild.AuditEnabled {
		_, err := scheduler.AddJob("audit-retention", appConfig.PromptBuild.AuditCleanupSchedule, func(context.Context) error {
			return rt.builder.CleanupOldAuditFiles()
		})
		if err != nil {
			return fmt.Errorf("schedule audit cleanup: %w", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	var library webui.Library
	if rt.store != nil {
		library = rt.store
	}
	server := webui.NewServer(rt.ws, library)

	port := webPort
	if port == 0 {
		port = appConfig.Web.Port
	}
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Web UI listening on http://127.0.0.1:%d", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case err := <-errCh:
		return fmt.Errorf("web UI server error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}
