package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Fezbot3000/Interestfree-tracker/money"
	"github.com/Fezbot3000/Interestfree-tracker/planner"
	"github.com/Fezbot3000/Interestfree-tracker/render"
)

func billsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bills",
		Short: "Manage the master bill list",
	}

	cmd.AddCommand(listBillsCmd())
	cmd.AddCommand(addBillCmd())
	cmd.AddCommand(editBillCmd())
	cmd.AddCommand(deleteBillCmd())

	return cmd
}

func listBillsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all bills",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			bills, err := a.planner.Bills(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list bills: %w", err)
			}
			if len(bills) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No bills yet. Use 'planner bills add' to create one.")
				return nil
			}

			t := render.Table{Headers: []string{"Name", "ID", "Date", "Frequency", "Group", "Amount"}}
			for _, b := range bills {
				t.Rows = append(t.Rows, []string{b.Name, string(b.ID), b.Date, b.Frequency.String(), b.Group, render.FormatMoney(b.Amount)})
			}
			fmt.Fprint(cmd.OutOrStdout(), render.RenderTable(t))
			return nil
		},
	}
}

// billFlags are shared by add and edit.
type billFlags struct {
	name      string
	amount    string
	date      string
	frequency string
	group     string
	every     int
	unit      string
	days      string
}

func (f *billFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "bill name")
	cmd.Flags().StringVar(&f.amount, "amount", "", "amount, e.g. 120.50")
	cmd.Flags().StringVar(&f.date, "date", "", "first due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.frequency, "frequency", planner.LabelMonthly, "Monthly, Fortnightly, Yearly, 6-Monthly, One-Off or Custom")
	cmd.Flags().StringVar(&f.group, "group", "", "display group, e.g. Housing")
	cmd.Flags().IntVar(&f.every, "every", 1, "custom interval")
	cmd.Flags().StringVar(&f.unit, "unit", string(planner.UnitWeeks), "custom unit: days, weeks, months or years")
	cmd.Flags().StringVar(&f.days, "days", "", "custom weekly days, e.g. Mo,Th or 1,4")
}

// apply overwrites the fields of b whose flags were set.
func (f *billFlags) apply(cmd *cobra.Command, b planner.Bill) (planner.Bill, error) {
	changed := cmd.Flags().Changed

	if changed("name") {
		b.Name = f.name
	}
	if changed("amount") {
		amount, err := money.Parse(f.amount)
		if err != nil {
			return b, fmt.Errorf("invalid --amount: %w", err)
		}
		b.Amount = amount
	}
	if changed("date") {
		b.Date = f.date
	}
	if changed("group") {
		b.Group = f.group
	}
	if changed("frequency") || changed("every") || changed("unit") || changed("days") || b.Frequency.Kind == planner.KindUnknown {
		freq := planner.ParseFrequency(f.frequency, nil)
		if freq.Kind == planner.KindCustom {
			weekdays, err := parseWeekdays(f.days)
			if err != nil {
				return b, err
			}
			freq = planner.Custom(f.every, planner.Unit(f.unit), weekdays...)
		}
		b.Frequency = freq
	}
	return b, nil
}

// inherit fills unset frequency flags from the stored rule so that editing
// one part of a custom rule keeps the rest.
func (f *billFlags) inherit(cmd *cobra.Command, freq planner.Frequency) {
	changed := cmd.Flags().Changed
	if !changed("frequency") {
		f.frequency = freq.Label()
	}
	if freq.Custom == nil {
		return
	}
	if !changed("every") {
		f.every = freq.Custom.Value
	}
	if !changed("unit") {
		f.unit = string(freq.Custom.Unit)
	}
	if !changed("days") {
		days := make([]string, 0, len(freq.Custom.Weekdays))
		for _, wd := range freq.Custom.Weekdays {
			days = append(days, strconv.Itoa(int(wd)))
		}
		f.days = strings.Join(days, ",")
	}
}

var weekdayNames = map[string]time.Weekday{
	"su": time.Sunday, "mo": time.Monday, "tu": time.Tuesday, "we": time.Wednesday,
	"th": time.Thursday, "fr": time.Friday, "sa": time.Saturday,
}

// parseWeekdays accepts two-letter names or indices, 0 = Sunday.
func parseWeekdays(s string) ([]time.Weekday, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []time.Weekday
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if wd, ok := weekdayNames[part]; ok {
			out = append(out, wd)
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid weekday %q", part)
		}
		out = append(out, time.Weekday(n))
	}
	return out, nil
}

func addBillCmd() *cobra.Command {
	var f billFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a bill",
		Long: `Add a bill to the master list.

Examples:
  planner bills add --name Rent --amount 1200 --date 2024-01-31 --group Housing
  planner bills add --name Gym --amount 18 --date 2024-01-01 --group Health \
    --frequency Custom --every 1 --unit weeks --days Mo,Th`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := f.apply(cmd, planner.Bill{})
			if err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			saved, err := a.planner.AddBill(cmd.Context(), b)
			if err != nil {
				return fmt.Errorf("failed to add bill: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q (ID: %s, %s)\n", saved.Name, saved.ID, saved.Frequency)
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

func editBillCmd() *cobra.Command {
	var f billFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			existing, err := a.planner.Store.GetBill(ctx, planner.BillID(args[0]))
			if err != nil {
				return err
			}
			f.inherit(cmd, existing.Frequency)

			b, err := f.apply(cmd, *existing)
			if err != nil {
				return err
			}
			saved, err := a.planner.UpdateBill(ctx, b)
			if err != nil {
				return fmt.Errorf("failed to update bill: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %q\n", saved.Name)
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

func deleteBillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.planner.DeleteBill(cmd.Context(), planner.BillID(args[0])); err != nil {
				return fmt.Errorf("failed to delete bill: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted", args[0])
			return nil
		},
	}
}

// =============================================================================
// PAY CYCLE
// =============================================================================

func payCycleCmd() *cobra.Command {
	var (
		start     string
		frequency string
		income    string
	)

	cmd := &cobra.Command{
		Use:   "paycycle",
		Short: "Show or change the pay-cycle settings",
		Long: `Without flags, print the current settings. With any of --start,
--frequency or --income, change those fields.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			pc, err := a.planner.PayCycle(ctx)
			if err != nil {
				return err
			}

			changed := cmd.Flags().Changed
			if changed("start") || changed("frequency") || changed("income") {
				if changed("start") {
					if pc.Start, err = parseDateFlag("start", start); err != nil {
						return err
					}
				}
				if changed("frequency") {
					pc.Frequency = planner.PayFrequency(frequency)
				}
				if changed("income") {
					if pc.Income, err = money.Parse(income); err != nil {
						return fmt.Errorf("invalid --income: %w", err)
					}
				}
				if pc, err = a.planner.SetPayCycle(ctx, pc); err != nil {
					return fmt.Errorf("failed to save pay cycle: %w", err)
				}
			}

			fmt.Fprint(cmd.OutOrStdout(), render.RenderTable(render.Table{
				Rows: [][]string{
					{"Start", render.FormatDate(pc.Start)},
					{"Frequency", string(pc.Frequency)},
					{"Income", render.FormatMoney(pc.Income)},
				},
			}))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "first day of a pay cycle (YYYY-MM-DD)")
	cmd.Flags().StringVar(&frequency, "frequency", "", "Monthly or Fortnightly")
	cmd.Flags().StringVar(&income, "income", "", "income per cycle")

	return cmd
}
