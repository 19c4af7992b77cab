package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"thot/internal/core"
	"thot/internal/seed"
)

var (
	seedOpts  = seed.DefaultOptions()
	seedStart string
	seedEnd   string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate demo customers, units, expenses and incomes",
	Long: "Generate a demo data set in a single transaction. " +
		"The same --seed over an empty database always yields the same data.",
	RunE: runSeed,
}

func init() {
	d := seed.DefaultOptions()
	f := seedCmd.Flags()
	f.IntVar(&seedOpts.Customers, "customers", d.Customers, "Number of customers")
	f.IntVar(&seedOpts.UnitsPerCustomer, "business-units-per-customer", d.UnitsPerCustomer, "Business units per customer")
	f.IntVar(&seedOpts.ExpenseTypes, "expense-types", d.ExpenseTypes, "Number of expense types")
	f.IntVar(&seedOpts.Expenses, "expenses", d.Expenses, "Number of expenses")
	f.IntVar(&seedOpts.Incomes, "incomes", d.Incomes, "Number of incomes")
	f.StringVar(&seedStart, "start-date", d.Start.String(), "First date (YYYY-MM-DD)")
	f.StringVar(&seedEnd, "end-date", d.End.String(), "Last date (YYYY-MM-DD)")
	f.BoolVar(&seedOpts.ClearExisting, "clear-existing", false, "Delete every record before generating")
	f.Int64Var(&seedOpts.Seed, "seed", 0, "Random seed, 0 uses the clock")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	var err error
	if seedOpts.Start, err = core.ParseDate(seedStart); err != nil {
		return fmt.Errorf("invalid --start-date %q: %w", seedStart, err)
	}
	if seedOpts.End, err = core.ParseDate(seedEnd); err != nil {
		return fmt.Errorf("invalid --end-date %q: %w", seedEnd, err)
	}

	repo, logger, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	sum, err := seed.NewGenerator(repo, logger).Run(cmd.Context(), seedOpts)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), sum)
	return nil
}
