package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"thot/internal/core"
	"thot/internal/projection"
	"thot/internal/storage"
)

// ExpenseReport aggregates expenses by category and by day, week and month.
func (s *Service) ExpenseReport(ctx context.Context, f core.Filter) (ExpenseReport, error) {
	return cached(ctx, s, "expense-report", f.Key(), func(ctx context.Context) (ExpenseReport, error) {
		var (
			byType                 []core.NamedTotal
			daily, weekly, monthly []core.PeriodTotal
			total                  core.Money
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) { byType, err = s.reader.ExpensesByType(gctx, f); return })
		g.Go(func() (err error) { daily, err = s.reader.PeriodTotals(gctx, storage.Expenses, core.BucketDay, f); return })
		g.Go(func() (err error) { weekly, err = s.reader.PeriodTotals(gctx, storage.Expenses, core.BucketWeek, f); return })
		g.Go(func() (err error) { monthly, err = s.reader.PeriodTotals(gctx, storage.Expenses, core.BucketMonth, f); return })
		g.Go(func() (err error) { total, err = s.reader.Total(gctx, storage.Expenses, f); return })
		if err := g.Wait(); err != nil {
			return ExpenseReport{}, err
		}

		report := ExpenseReport{
			ByCategory: make([]CategoryTotal, len(byType)),
			Daily:      dayTotals(daily),
			Weekly:     weekTotals(weekly),
			Monthly:    monthTotals(monthly),
		}
		for i, c := range byType {
			report.ByCategory[i] = CategoryTotal{Name: orLabel(c.Name, NoCategory), Total: c.Amount.Float()}
		}

		report.Stats = ExpenseStats{
			Total:      total.Float(),
			Categories: len(byType),
		}
		if len(daily) > 0 {
			report.Stats.DailyAverage = sumAmounts(daily).Div(decimal.NewFromInt(int64(len(daily)))).InexactFloat64()
		}
		if len(byType) > 0 {
			report.Stats.LargestCategory = byType[0].Amount.Float()
		}
		return report, nil
	})
}

// IncomeAnalysis aggregates incomes and projects the next months.
func (s *Service) IncomeAnalysis(ctx context.Context, f core.Filter) (IncomeAnalysis, error) {
	return cached(ctx, s, "income-analysis", f.Key(), func(ctx context.Context) (IncomeAnalysis, error) {
		var (
			bySource, byUnit, byStatus []core.NamedTotal
			monthly, yearly            []core.PeriodTotal
			total                      core.Money
			count                      int
			first, last                core.Date
			hasSpan                    bool
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) { bySource, err = s.reader.IncomesBy(gctx, storage.ByBusinessType, f); return })
		g.Go(func() (err error) { byUnit, err = s.reader.IncomesBy(gctx, storage.ByBusinessUnit, f); return })
		g.Go(func() (err error) { byStatus, err = s.reader.IncomesBy(gctx, storage.ByPaymentStatus, f); return })
		g.Go(func() (err error) { monthly, err = s.reader.PeriodTotals(gctx, storage.Incomes, core.BucketMonth, f); return })
		g.Go(func() (err error) { yearly, err = s.reader.PeriodTotals(gctx, storage.Incomes, core.BucketYear, f); return })
		g.Go(func() (err error) { total, err = s.reader.Total(gctx, storage.Incomes, f); return })
		g.Go(func() (err error) { count, err = s.reader.CountIncomes(gctx, f); return })
		g.Go(func() (err error) { first, last, hasSpan, err = s.reader.IncomeDateSpan(gctx, f); return })
		if err := g.Wait(); err != nil {
			return IncomeAnalysis{}, err
		}

		a := IncomeAnalysis{
			BySource: make([]SourceTotal, len(bySource)),
			ByUnit:   make([]UnitTotal, len(byUnit)),
			ByStatus: make([]StatusTotal, len(byStatus)),
			Monthly:  monthTotals(monthly),
			Yearly:   yearTotals(yearly),
		}
		for i, t := range bySource {
			a.BySource[i] = SourceTotal{BusinessType: t.Name, Total: t.Amount.Float()}
		}
		for i, t := range byUnit {
			a.ByUnit[i] = UnitTotal{BusinessUnit: orLabel(t.Name, NoUnit), Total: t.Amount.Float()}
		}
		for i, t := range byStatus {
			a.ByStatus[i] = StatusTotal{PaymentStatus: t.Name, Total: t.Amount.Float()}
		}

		a.Stats = IncomeStats{
			Total:        total.Float(),
			Transactions: count,
		}
		if hasSpan {
			a.Stats.DailyAverage = dailyAverage(total, count, first, last)
		}
		a.Projections = projectionStats(&a.Stats, projection.Project(monthly))
		return a, nil
	})
}

// dailyAverage spreads total over the days from the first to the last
// income, inclusive. A single income averages to its own total.
func dailyAverage(total core.Money, count int, first, last core.Date) float64 {
	if count == 0 || total.IsZero() {
		return 0
	}
	if count == 1 {
		return total.Float()
	}
	days := int64(last.Sub(first.Time)/(24*time.Hour)) + 1
	if days <= 0 {
		days = 1
	}
	return total.Div(decimal.NewFromInt(days)).InexactFloat64()
}

// FinancialDashboard crosses incomes and expenses per business unit and
// month. Without a date range the month figures cover the current month;
// otherwise they repeat the filtered totals.
func (s *Service) FinancialDashboard(ctx context.Context, f core.Filter) (Dashboard, error) {
	today := core.Date{Time: s.now()}
	key := f.Key()
	if !f.HasDateRange() {
		key += ";month=" + day(today.MonthStart())
	}

	return cached(ctx, s, "dashboard", key, func(ctx context.Context) (Dashboard, error) {
		var (
			unitTypes              []core.UnitTypeTotal
			incomesByUnit          []core.NamedTotal
			expMonthly, incMonthly []core.PeriodTotal
			totalExp, totalInc     core.Money
			monthExp, monthInc     core.Money
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) { unitTypes, err = s.reader.ExpensesByUnitAndType(gctx, f); return })
		g.Go(func() (err error) { incomesByUnit, err = s.reader.IncomesBy(gctx, storage.ByBusinessUnit, f); return })
		g.Go(func() (err error) { expMonthly, err = s.reader.PeriodTotals(gctx, storage.Expenses, core.BucketMonth, f); return })
		g.Go(func() (err error) { incMonthly, err = s.reader.PeriodTotals(gctx, storage.Incomes, core.BucketMonth, f); return })
		g.Go(func() (err error) { totalExp, err = s.reader.Total(gctx, storage.Expenses, f); return })
		g.Go(func() (err error) { totalInc, err = s.reader.Total(gctx, storage.Incomes, f); return })
		if !f.HasDateRange() {
			current := f
			from := core.Date{Time: today.MonthStart()}
			current.From = &from
			g.Go(func() (err error) { monthExp, err = s.reader.Total(gctx, storage.Expenses, current); return })
			g.Go(func() (err error) { monthInc, err = s.reader.Total(gctx, storage.Incomes, current); return })
		}
		if err := g.Wait(); err != nil {
			return Dashboard{}, err
		}
		if f.HasDateRange() {
			monthExp, monthInc = totalExp, totalInc
		}

		d := Dashboard{
			Evolution: mergeMonthly(expMonthly, incMonthly),
			Stats: DashboardStats{
				TotalExpenses: totalExp.Float(),
				TotalIncomes:  totalInc.Float(),
				Balance:       totalInc.Sub(totalExp.Decimal).InexactFloat64(),
				MonthExpenses: monthExp.Float(),
				MonthIncomes:  monthInc.Float(),
				MonthBalance:  monthInc.Sub(monthExp.Decimal).InexactFloat64(),
			},
		}
		d.Units, d.ExpenseTypes = crossUnits(unitTypes, incomesByUnit)
		return d, nil
	})
}

// crossUnits builds one row per business unit seen in either ledger, with
// the unit's incomes and its expenses for every expense type.
func crossUnits(unitTypes []core.UnitTypeTotal, incomes []core.NamedTotal) ([]UnitBreakdown, []string) {
	typeSet := map[string]struct{}{}
	unitSet := map[string]struct{}{}
	spent := map[[2]string]float64{}
	for _, ut := range unitTypes {
		unit, typ := orLabel(ut.Unit, NoUnit), orLabel(ut.Type, NoType)
		unitSet[unit] = struct{}{}
		typeSet[typ] = struct{}{}
		spent[[2]string{unit, typ}] += ut.Amount.Float()
	}
	earned := map[string]float64{}
	for _, in := range incomes {
		unit := orLabel(in.Name, NoUnit)
		unitSet[unit] = struct{}{}
		earned[unit] += in.Amount.Float()
	}

	types := sortedKeys(typeSet)
	units := sortedKeys(unitSet)
	rows := make([]UnitBreakdown, len(units))
	for i, unit := range units {
		byType := make(map[string]float64, len(types))
		for _, typ := range types {
			byType[typ] = spent[[2]string{unit, typ}]
		}
		rows[i] = UnitBreakdown{Unit: unit, Incomes: earned[unit], ExpensesByType: byType}
	}
	return rows, types
}

// mergeMonthly joins expense and income monthly totals by month, ascending.
func mergeMonthly(expenses, incomes []core.PeriodTotal) []MonthBalance {
	byMonth := map[string]*MonthBalance{}
	get := func(t time.Time) *MonthBalance {
		k := day(t)
		if m, ok := byMonth[k]; ok {
			return m
		}
		m := &MonthBalance{Month: k}
		byMonth[k] = m
		return m
	}
	for _, e := range expenses {
		get(e.Period).Expenses = e.Amount.Float()
	}
	for _, in := range incomes {
		get(in.Period).Incomes = in.Amount.Float()
	}

	out := make([]MonthBalance, 0, len(byMonth))
	for _, k := range sortedKeys(byMonth) {
		out = append(out, *byMonth[k])
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sumAmounts(in []core.PeriodTotal) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range in {
		sum = sum.Add(p.Amount.Decimal)
	}
	return sum
}
