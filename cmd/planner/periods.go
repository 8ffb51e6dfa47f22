package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Fezbot3000/Interestfree-tracker/calendar"
	"github.com/Fezbot3000/Interestfree-tracker/factory"
	"github.com/Fezbot3000/Interestfree-tracker/interestfree"
	"github.com/Fezbot3000/Interestfree-tracker/money"
	"github.com/Fezbot3000/Interestfree-tracker/render"
)

func periodsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "periods",
		Aliases: []string{"if"},
		Short:   "Manage interest-free billing periods",
	}

	cmd.AddCommand(listPeriodsCmd())
	cmd.AddCommand(showPeriodCmd())
	cmd.AddCommand(addPeriodCmd())
	cmd.AddCommand(editPeriodCmd())
	cmd.AddCommand(deletePeriodCmd())
	cmd.AddCommand(transactionsCmd())

	return cmd
}

func listPeriodsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List billing periods, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			periods, err := a.interestFree.Periods(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list billing periods: %w", err)
			}

			today := a.interestFree.Today()
			if asJSON {
				views := make([]factory.PeriodViewJSON, 0, len(periods))
				for _, p := range periods {
					views = append(views, factory.PeriodToView(p, today))
				}
				return writeJSON(cmd.OutOrStdout(), views)
			}
			return render.Periods(cmd.OutOrStdout(), periods, today)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func showPeriodCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a billing period with its transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.interestFree.Period(cmd.Context(), interestfree.PeriodID(args[0]))
			if err != nil {
				return err
			}
			return render.Period(cmd.OutOrStdout(), p, a.interestFree.Today())
		},
	}
}

// periodFlags are shared by add and edit.
type periodFlags struct {
	start string
	end   string
	days  int
}

func (f *periodFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "statement start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.end, "end", "", "statement end date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&f.days, "days", 0, "interest-free days (default from interestfree.default_days)")
}

func (f *periodFlags) input(base interestfree.PeriodInput, cmd *cobra.Command) (interestfree.PeriodInput, error) {
	var err error
	if cmd.Flags().Changed("start") {
		if base.Start, err = parseDateFlag("start", f.start); err != nil {
			return base, err
		}
	}
	if cmd.Flags().Changed("end") {
		if base.End, err = parseDateFlag("end", f.end); err != nil {
			return base, err
		}
	}
	if cmd.Flags().Changed("days") {
		base.Days = f.days
	}
	return base, nil
}

func addPeriodCmd() *cobra.Command {
	var f periodFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Start a new billing period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := f.input(interestfree.PeriodInput{}, cmd)
			if err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.interestFree.CreatePeriod(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("failed to create billing period: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created period %s, interest-free until %s\n", p.ID, render.FormatDate(p.InterestFreeEnd))
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

func editPeriodCmd() *cobra.Command {
	var f periodFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the dates or interest-free days of a period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			id := interestfree.PeriodID(args[0])
			existing, err := a.interestFree.Period(ctx, id)
			if err != nil {
				return err
			}

			in, err := f.input(interestfree.PeriodInput{Start: existing.Start, End: existing.End}, cmd)
			if err != nil {
				return err
			}
			p, err := a.interestFree.UpdatePeriod(ctx, id, in)
			if err != nil {
				return fmt.Errorf("failed to update billing period: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated period %s, interest-free until %s\n", p.ID, render.FormatDate(p.InterestFreeEnd))
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

func deletePeriodCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a billing period and its transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.interestFree.DeletePeriod(cmd.Context(), interestfree.PeriodID(args[0])); err != nil {
				return fmt.Errorf("failed to delete billing period: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted", args[0])
			return nil
		},
	}
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Record or remove expenses and repayments",
	}

	cmd.AddCommand(addTransactionCmd(interestfree.Expense))
	cmd.AddCommand(addTransactionCmd(interestfree.Repayment))
	cmd.AddCommand(deleteTransactionCmd())

	return cmd
}

func addTransactionCmd(typ interestfree.TransactionType) *cobra.Command {
	var (
		date        string
		amount      string
		description string
	)

	use := "spend <period-id>"
	short := "Record an expense"
	if typ == interestfree.Repayment {
		use = "repay <period-id>"
		short = "Record a repayment"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := interestfree.TransactionInput{Description: description, Type: typ}
			var err error
			if in.Amount, err = money.Parse(amount); err != nil {
				return fmt.Errorf("invalid --amount: %w", err)
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			in.Date = a.interestFree.Today()
			if date != "" {
				if in.Date, err = parseDateFlag("date", date); err != nil {
					return err
				}
			}

			tx, err := a.interestFree.AddTransaction(cmd.Context(), interestfree.PeriodID(args[0]), in)
			if err != nil {
				return fmt.Errorf("failed to add transaction: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %s on %s (ID: %s)\n",
				tx.Description, render.FormatMoney(tx.Amount), render.FormatDate(tx.Date), tx.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "transaction date (default today)")
	cmd.Flags().StringVar(&amount, "amount", "", "amount, e.g. 99.95")
	cmd.Flags().StringVar(&description, "description", "", "description")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func deleteTransactionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <period-id> <transaction-id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			err = a.interestFree.DeleteTransaction(cmd.Context(),
				interestfree.PeriodID(args[0]), interestfree.TransactionID(args[1]))
			if err != nil {
				return fmt.Errorf("failed to delete transaction: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted", args[1])
			return nil
		},
	}
}

func parseDateFlag(name, value string) (calendar.TimePoint, error) {
	tp, err := calendar.ParseDate(value)
	if err != nil {
		return tp, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return tp, nil
}
