package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Fezbot3000/Interestfree-tracker/calendar"
	"github.com/Fezbot3000/Interestfree-tracker/factory"
	"github.com/Fezbot3000/Interestfree-tracker/logger"
	"github.com/Fezbot3000/Interestfree-tracker/render"
)

func exportCmd() *cobra.Command {
	var (
		scopeName string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup file",
		Long: `Write stored data as a backup file compatible with the browser app.

--type selects interest-free, bill-planner or both. Without -o the file is
named after the type and today's date, e.g. finance_tracker_all_2025-01-09.json.
Use -o - to write to stdout.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scope, err := factory.ParseScope(scopeName)
			if err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			doc, err := a.transfer.Export(cmd.Context(), scope)
			if err != nil {
				return fmt.Errorf("failed to export: %w", err)
			}

			if output == "-" {
				return writeJSON(cmd.OutOrStdout(), doc)
			}
			if output == "" {
				output = scope.Filename(calendar.Today())
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := writeJSON(f, doc); err != nil {
				f.Close()
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Exported to", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&scopeName, "type", string(factory.ScopeBoth), "interest-free, bill-planner or both")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (- for stdout)")

	return cmd
}

func importCmd() *cobra.Command {
	var scopeName string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace data from a backup file",
		Long: `Replace stored data with the contents of a backup file. Only the
collections named by --type are replaced. Older files holding just a list
of billing periods are accepted. Use - to read stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := factory.ParseScope(scopeName)
			if err != nil {
				return err
			}

			var data []byte
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			doc, err := factory.ParseDocument(data)
			if err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.transfer.Import(cmd.Context(), doc, scope)
			if err != nil {
				return fmt.Errorf("failed to import: %w", err)
			}

			logger.Log.WithField("file", args[0]).Info("data imported")
			fmt.Fprint(cmd.OutOrStdout(), render.RenderTable(render.Table{
				Title: "Imported",
				Rows: [][]string{
					{"Bills", fmt.Sprint(result.Bills)},
					{"Billing periods", fmt.Sprint(result.BillingPeriods)},
					{"Pay cycle updated", fmt.Sprint(result.PayCycleUpdated)},
				},
			}))
			return nil
		},
	}

	cmd.Flags().StringVar(&scopeName, "type", string(factory.ScopeBoth), "interest-free, bill-planner or both")

	return cmd
}

func rolloverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollover",
		Short: "Move the pay-cycle start forward to the cycle containing today",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			pc, moved, err := a.planner.Rollover(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to roll over: %w", err)
			}
			if !moved {
				fmt.Fprintln(cmd.OutOrStdout(), "Pay cycle is already current.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Pay cycle now starts", render.FormatDate(pc.Start))
			return nil
		},
	}
}

func resetCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all stored data",
		Long:  `Delete all bills, pay-cycle settings and billing periods. Requires --yes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirm {
				return fmt.Errorf("refusing to delete data without --yes")
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("failed to reset: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All data deleted.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "yes", false, "confirm deletion")
	return cmd
}
