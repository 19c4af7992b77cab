package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"thot/internal/analytics"
	"thot/internal/core"
	"thot/internal/projection"
	"thot/internal/storage"
)

var (
	projFrom     string
	projTo       string
	projCustomer int64
	projUnits    []int64
	projExpenses bool
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Print the income projection for a filter",
	Long:  "Project the monthly income totals (or expenses with --expenses) six months ahead.",
	RunE:  runProject,
}

func init() {
	f := projectCmd.Flags()
	f.StringVar(&projFrom, "date-from", "", "First date (YYYY-MM-DD)")
	f.StringVar(&projTo, "date-to", "", "Last date (YYYY-MM-DD)")
	f.Int64Var(&projCustomer, "customer", 0, "Restrict to one customer")
	f.Int64SliceVar(&projUnits, "business-unit", nil, "Restrict to business units (repeatable)")
	f.BoolVar(&projExpenses, "expenses", false, "Project expenses instead of incomes")
	rootCmd.AddCommand(projectCmd)
}

func projectFilter() (core.Filter, error) {
	var f core.Filter
	for _, p := range []struct {
		flag, value string
		dst         **core.Date
	}{{"--date-from", projFrom, &f.From}, {"--date-to", projTo, &f.To}} {
		if p.value == "" {
			continue
		}
		d, err := core.ParseDate(p.value)
		if err != nil {
			return core.Filter{}, fmt.Errorf("invalid %s %q: expected YYYY-MM-DD", p.flag, p.value)
		}
		*p.dst = &d
	}
	if projCustomer > 0 {
		id := projCustomer
		f.CustomerID = &id
	}
	f.BusinessUnits = projUnits
	return f, nil
}

func runProject(cmd *cobra.Command, _ []string) error {
	f, err := projectFilter()
	if err != nil {
		return err
	}

	repo, logger, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	ledger := storage.Incomes
	if projExpenses {
		ledger = storage.Expenses
	}
	r, err := analytics.NewService(repo, nil, logger).Projection(cmd.Context(), ledger, f)
	if err != nil {
		return err
	}
	return printProjection(cmd.OutOrStdout(), ledger, r)
}

func printProjection(out io.Writer, ledger storage.Ledger, r projection.Result) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Ledger\t%s\n", ledger)
	fmt.Fprintf(tw, "Reliability\t%s (%s)\n", analytics.ReliabilityLabel(r.Reliability), r.Reliability)
	if r.Reason != "" {
		fmt.Fprintf(tw, "Reason\t%s\n", r.Reason)
	}
	fmt.Fprintf(tw, "Months\t%d\n", r.Indicators.SampleCount)
	fmt.Fprintf(tw, "Change\t%.1f%%\n", r.PercentChange)
	for _, h := range []struct {
		name string
		v    *float64
	}{
		{"Next month", r.NextMonth},
		{"In 2 months", r.In2Months},
		{"In 3 months", r.In3Months},
		{"In 6 months", r.In6Months},
		{"Trend", r.Slope},
	} {
		fmt.Fprintf(tw, "%s\t%s\n", h.name, optional(h.v))
	}
	if cv := r.Indicators.CV; cv != nil {
		fmt.Fprintf(tw, "CV\t%.3f\n", *cv)
		fmt.Fprintf(tw, "Stability\t%s\n", analytics.ReliabilityLabel(r.Indicators.Stability))
	}
	return tw.Flush()
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
