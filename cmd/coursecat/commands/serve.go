package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dyluth/coursecat/internal/backend"
	"github.com/dyluth/coursecat/internal/config"
	"github.com/dyluth/coursecat/internal/printer"
	"github.com/dyluth/coursecat/internal/query"
	"github.com/dyluth/coursecat/internal/server"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the course catalog over HTTP",
	Long: `Serve the course catalog over HTTP until interrupted.

Routes depend on the configured variant:
  ordinal - /all-courses, /CourseSort, /BSITandBSIScourses
  camel   - /all-available-courses, /backend-courses, /bsit-bsis-courses

GET /healthz reports store connectivity for every variant.

Environment:
  PORT         Listen port (default 3000)
  REDIS_URL    Redis store address
  MONGO_URI    MongoDB store address
  SQLITE_PATH  SQLite database file`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	return serve(ctx, cfg, store)
}

// serve runs the HTTP server until ctx is cancelled, then drains in-flight
// requests for up to shutdownTimeout.
func serve(ctx context.Context, cfg *config.Config, store backend.Store) error {
	svc := query.NewService(store, cfg.Locale())
	srv := server.New(cfg, svc, store)

	if err := srv.Start(); err != nil {
		return printer.Error(
			"failed to start server",
			err.Error(),
			[]string{fmt.Sprintf("Choose a free port:\n  PORT=%d coursecat serve", cfg.Server.Port+1)},
		)
	}
	log.Printf("[INFO] Serving %s catalog from %s store", cfg.Variant, cfg.Store.Backend)

	<-ctx.Done()
	log.Printf("[INFO] Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Server shutdown error: %v\n", err)
		return err
	}
	return nil
}
