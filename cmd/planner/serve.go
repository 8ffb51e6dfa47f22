package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Fezbot3000/Interestfree-tracker/api"
	"github.com/Fezbot3000/Interestfree-tracker/logger"
)

// serveCmd starts the HTTP API.
//
// GRACEFUL SHUTDOWN:
//
//	On SIGINT/SIGTERM:
//	1. Stop the rollover scheduler
//	2. Stop accepting new connections
//	3. Wait for active requests to complete (30s timeout)
//	4. Close database connection
func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API and, unless disabled, the pay-cycle rollover scheduler.

Examples:
  planner serve --db ./data/planner.db
  planner serve --port 3000 --db ":memory:"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	cmd.Flags().Int("port", 8080, "HTTP server port")
	cmd.Flags().Bool("scheduler", true, "run the pay-cycle rollover scheduler")
	_ = viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("scheduler.enabled", cmd.Flags().Lookup("scheduler"))

	return cmd
}

func runServe(ctx context.Context) error {
	log := logger.Get()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	handler := api.NewHandler(a.planner, a.interestFree, a.transfer, log)
	router := api.NewRouter(handler)

	if cfg.SchedulerEnabled {
		scheduler := api.NewRolloverScheduler(a.planner, cfg.SchedulerSpec, log)
		if err := scheduler.Start(); err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Server starting on http://localhost:%d", cfg.ServerPort)
		log.Infof("API available at http://localhost:%d/api", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
