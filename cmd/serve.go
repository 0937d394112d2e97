package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/itish2003/studysense/controller"
	"github.com/spf13/cobra"
)

var watchDir string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the StudySense HTTP API.

With --watch, files created or changed under the given directory are
imported while the server runs, using the same <subject>/<file> layout
as the import command.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&watchDir, "watch", "", "directory to import notes from while serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	ctrl := controller.NewStudyController(a.subjects, a.knowledge, a.flashcards, a.generation, a.log)
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: controller.NewRouter(ctrl, Version),
	}

	if watchDir != "" {
		go func() {
			if err := a.imports.Watch(ctx, watchDir); err != nil {
				a.log.Error("SERVER", "import watcher stopped", map[string]interface{}{"error": err})
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("SERVER", "listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("SERVER", "shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
