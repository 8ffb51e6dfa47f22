package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Fezbot3000/Interestfree-tracker/calendar"
	"github.com/Fezbot3000/Interestfree-tracker/factory"
	"github.com/Fezbot3000/Interestfree-tracker/logger"
	"github.com/Fezbot3000/Interestfree-tracker/money"
	"github.com/Fezbot3000/Interestfree-tracker/planner"
	"github.com/Fezbot3000/Interestfree-tracker/render"
)

func cyclesCmd() *cobra.Command {
	var (
		count    int
		fromFile string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "cycles",
		Short: "Project bills across upcoming pay cycles",
		Long: `Project the stored bills onto upcoming pay cycles.

With --from-file, the bills and pay-cycle settings are read from a backup
file instead and nothing is stored.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 0 {
				return fmt.Errorf("--count must be positive")
			}

			var (
				pc   planner.PayCycle
				proj planner.Projection
				err  error
			)
			if fromFile != "" {
				pc, proj, err = projectFile(fromFile, count)
			} else {
				pc, proj, err = projectStored(cmd, count)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, factory.ProjectionToJSON(pc, proj))
			}
			return render.Projection(out, pc, proj)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of cycles (default from planner.cycle_count)")
	cmd.Flags().StringVar(&fromFile, "from-file", "", "project a backup file instead of stored data")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of tables")

	return cmd
}

func projectStored(cmd *cobra.Command, count int) (planner.PayCycle, planner.Projection, error) {
	a, err := openApp()
	if err != nil {
		return planner.PayCycle{}, planner.Projection{}, err
	}
	defer a.Close()

	ctx := cmd.Context()
	pc, err := a.planner.PayCycle(ctx)
	if err != nil {
		return pc, planner.Projection{}, fmt.Errorf("failed to load pay cycle: %w", err)
	}
	proj, err := a.planner.Project(ctx, count)
	if err != nil {
		return pc, proj, fmt.Errorf("failed to project cycles: %w", err)
	}
	return pc, proj, nil
}

func projectFile(path string, count int) (planner.PayCycle, planner.Projection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return planner.PayCycle{}, planner.Projection{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := factory.ParseDocument(data)
	if err != nil {
		return planner.PayCycle{}, planner.Projection{}, err
	}
	snap, err := doc.Decode(factory.ScopeBillPlanner)
	if err != nil {
		return planner.PayCycle{}, planner.Projection{}, err
	}

	pc := snap.PayCycle.Apply(planner.PayCycle{
		Start:     calendar.Today(),
		Frequency: planner.PayFortnightly,
		Income:    money.Zero(),
	})
	if err := pc.Validate(); err != nil {
		return pc, planner.Projection{}, err
	}

	opts := planner.Options{
		CycleCount:        cfg.CycleCount,
		SurfaceUnresolved: cfg.SurfaceUnresolved,
		Logger:            logger.Get(),
	}
	if count > 0 {
		opts.CycleCount = count
	}
	return pc, planner.GenerateCycles(snap.Bills, pc, opts), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
