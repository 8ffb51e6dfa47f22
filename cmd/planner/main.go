/*
main.go - Application entry point

PURPOSE:
  The planner command: a pay-cycle bill planner and interest-free period
  tracker. Serves the HTTP API and offers the same operations from the
  terminal.

COMMANDS:
  serve      Start the HTTP API with the rollover scheduler
  cycles     Project bills across upcoming pay cycles
  bills      Manage the master bill list
  paycycle   Show or change the pay-cycle settings
  periods    Manage interest-free billing periods
  export     Write a backup file
  import     Replace data from a backup file
  rollover   Move the pay-cycle start forward to today
  reset      Delete all stored data
  version    Print version information

CONFIGURATION:
  Flags override environment (PLANNER_*), which overrides .env, which
  overrides $HOME/.config/planner/config.yaml. See config/config.go.

SEE ALSO:
  - serve.go: Server startup and graceful shutdown
  - config/config.go: Keys and defaults
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Fezbot3000/Interestfree-tracker/config"
	"github.com/Fezbot3000/Interestfree-tracker/factory"
	"github.com/Fezbot3000/Interestfree-tracker/interestfree"
	"github.com/Fezbot3000/Interestfree-tracker/logger"
	"github.com/Fezbot3000/Interestfree-tracker/planner"
	"github.com/Fezbot3000/Interestfree-tracker/store/sqlite"
)

var (
	cfgFile string
	cfg     *config.Config
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "planner",
		Short: "Pay-cycle bill planner and interest-free period tracker",
		Long: `planner projects recurring bills onto upcoming pay cycles and tracks
interest-free billing periods on a credit card.

Data is kept in a local SQLite database.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/planner/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("db", "planner.db", "SQLite database path (\":memory:\" for a throwaway database)")

	// Bind flags to viper
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))

	// Add commands
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(cyclesCmd())
	rootCmd.AddCommand(billsCmd())
	rootCmd.AddCommand(payCycleCmd())
	rootCmd.AddCommand(periodsCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(rolloverCmd())
	rootCmd.AddCommand(resetCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Log.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	v := viper.GetViper()
	if err := config.Setup(v, cfgFile); err != nil {
		return err
	}

	loaded, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = loaded

	logger.Init(cfg)
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "planner version %s\n", version)
		},
	}
}

// =============================================================================
// WIRING
// =============================================================================

// app bundles the store and the services built on it.
type app struct {
	store        *sqlite.Store
	planner      *planner.Service
	interestFree *interestfree.Service
	transfer     *factory.Transfer
}

func openApp() (*app, error) {
	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.DatabasePath, err)
	}

	log := logger.Get()
	return &app{
		store: store,
		planner: planner.NewService(store, planner.Options{
			CycleCount:        cfg.CycleCount,
			SurfaceUnresolved: cfg.SurfaceUnresolved,
			Logger:            log,
		}),
		interestFree: interestfree.NewService(store, interestfree.Options{
			DefaultDays: cfg.InterestFreeDays,
			Logger:      log,
		}),
		transfer: factory.NewTransfer(store, store),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
