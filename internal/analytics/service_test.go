package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"thot/internal/cache"
	"thot/internal/core"
	"thot/internal/storage"
)

type fakeReader struct {
	mu    sync.Mutex
	calls int
	err   error

	periods    map[storage.Ledger]map[core.Bucket][]core.PeriodTotal
	totals     map[storage.Ledger]core.Money
	monthTotal map[storage.Ledger]core.Money
	byType     []core.NamedTotal
	incomesBy  map[storage.IncomeDimension][]core.NamedTotal
	unitTypes  []core.UnitTypeTotal
	count      int
	first      string
	last       string
}

func (f *fakeReader) hit() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeReader) PeriodTotals(_ context.Context, l storage.Ledger, b core.Bucket, _ core.Filter) ([]core.PeriodTotal, error) {
	if err := f.hit(); err != nil {
		return nil, err
	}
	return f.periods[l][b], nil
}

func (f *fakeReader) Total(_ context.Context, l storage.Ledger, filter core.Filter) (core.Money, error) {
	if err := f.hit(); err != nil {
		return core.Money{}, err
	}
	if filter.From != nil && f.monthTotal != nil {
		return f.monthTotal[l], nil
	}
	return f.totals[l], nil
}

func (f *fakeReader) ExpensesByType(context.Context, core.Filter) ([]core.NamedTotal, error) {
	return f.byType, f.hit()
}

func (f *fakeReader) IncomesBy(_ context.Context, dim storage.IncomeDimension, _ core.Filter) ([]core.NamedTotal, error) {
	return f.incomesBy[dim], f.hit()
}

func (f *fakeReader) ExpensesByUnitAndType(context.Context, core.Filter) ([]core.UnitTypeTotal, error) {
	return f.unitTypes, f.hit()
}

func (f *fakeReader) CountIncomes(context.Context, core.Filter) (int, error) {
	return f.count, f.hit()
}

func (f *fakeReader) IncomeDateSpan(context.Context, core.Filter) (core.Date, core.Date, bool, error) {
	if err := f.hit(); err != nil {
		return core.Date{}, core.Date{}, false, err
	}
	if f.first == "" {
		return core.Date{}, core.Date{}, false, nil
	}
	first, _ := core.ParseDate(f.first)
	last, _ := core.ParseDate(f.last)
	return first, last, true, nil
}

func month(y, m int, amount string) core.PeriodTotal {
	return core.PeriodTotal{Period: time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC), Amount: core.MustAmount(amount)}
}

func TestExpenseReport(t *testing.T) {
	r := &fakeReader{
		periods: map[storage.Ledger]map[core.Bucket][]core.PeriodTotal{
			storage.Expenses: {
				core.BucketDay:   {month(2024, 1, "100"), month(2024, 2, "50")},
				core.BucketMonth: {month(2024, 1, "100"), month(2024, 2, "50")},
			},
		},
		totals: map[storage.Ledger]core.Money{storage.Expenses: core.MustAmount("150")},
		byType: []core.NamedTotal{
			{Name: "Alquiler", Amount: core.MustAmount("120")},
			{Name: "", Amount: core.MustAmount("30")},
		},
	}
	svc := NewService(r, nil, nil)

	report, err := svc.ExpenseReport(context.Background(), core.Filter{})
	if err != nil {
		t.Fatalf("ExpenseReport: %v", err)
	}
	if report.Stats.Total != 150 || report.Stats.DailyAverage != 75 {
		t.Errorf("unexpected stats %+v", report.Stats)
	}
	if report.Stats.Categories != 2 || report.Stats.LargestCategory != 120 {
		t.Errorf("unexpected category stats %+v", report.Stats)
	}
	if report.ByCategory[1].Name != NoCategory {
		t.Errorf("missing type should be labelled %q, got %q", NoCategory, report.ByCategory[1].Name)
	}
	if report.Weekly == nil || len(report.Weekly) != 0 {
		t.Errorf("weekly should be an empty list, got %v", report.Weekly)
	}
	if report.Monthly[1].Month != "2024-02-01" {
		t.Errorf("month label = %q", report.Monthly[1].Month)
	}
}

func TestIncomeAnalysisProjection(t *testing.T) {
	r := &fakeReader{
		periods: map[storage.Ledger]map[core.Bucket][]core.PeriodTotal{
			storage.Incomes: {
				core.BucketMonth: {month(2024, 1, "10"), month(2024, 2, "20"), month(2024, 3, "30"), month(2024, 4, "40"), month(2024, 5, "50")},
				core.BucketYear:  {{Period: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Amount: core.MustAmount("150")}},
			},
		},
		totals: map[storage.Ledger]core.Money{storage.Incomes: core.MustAmount("150")},
		incomesBy: map[storage.IncomeDimension][]core.NamedTotal{
			storage.ByBusinessUnit: {{Name: "", Amount: core.MustAmount("150")}},
		},
		count: 5,
		first: "2024-01-01",
		last:  "2024-01-10",
	}
	svc := NewService(r, nil, nil)

	a, err := svc.IncomeAnalysis(context.Background(), core.Filter{})
	if err != nil {
		t.Fatalf("IncomeAnalysis: %v", err)
	}
	if a.Stats.DailyAverage != 15 {
		t.Errorf("daily average = %v, want 15", a.Stats.DailyAverage)
	}
	if a.Stats.Projection != 60 || a.Stats.PercentChange != 25 {
		t.Errorf("projection = %v change = %v", a.Stats.Projection, a.Stats.PercentChange)
	}
	if a.Stats.Reliability != "MEDIA" {
		t.Errorf("reliability = %q, want MEDIA", a.Stats.Reliability)
	}
	if a.Stats.Indicators.CV == nil || *a.Stats.Indicators.CV != 0.471 {
		t.Errorf("cv indicator = %v, want 0.471", a.Stats.Indicators.CV)
	}
	if a.Projections.In6Months == nil || *a.Projections.In6Months != 110 {
		t.Errorf("in 6 months = %v", a.Projections.In6Months)
	}
	if a.ByUnit[0].BusinessUnit != NoUnit {
		t.Errorf("unit label = %q", a.ByUnit[0].BusinessUnit)
	}
	if a.Yearly[0].Year != "2024-01-01" {
		t.Errorf("year label = %q", a.Yearly[0].Year)
	}
}

func TestIncomeAnalysisNoData(t *testing.T) {
	svc := NewService(&fakeReader{}, nil, nil)

	a, err := svc.IncomeAnalysis(context.Background(), core.Filter{})
	if err != nil {
		t.Fatalf("IncomeAnalysis: %v", err)
	}
	if a.Stats.Reliability != "SIN_DATOS" || a.Stats.Projection != 0 || a.Stats.DailyAverage != 0 {
		t.Errorf("unexpected stats %+v", a.Stats)
	}
	if a.Stats.Indicators.Reason == "" {
		t.Error("no-data indicators should carry a reason")
	}

	body, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(body), `"proximo_mes":null`) {
		t.Errorf("absent horizons should encode as null: %s", body)
	}
	if strings.Contains(string(body), "tendencia") {
		t.Errorf("no-data payload should not carry a trend: %s", body)
	}
}

func TestDailyAverage(t *testing.T) {
	d := func(s string) core.Date {
		v, _ := core.ParseDate(s)
		return v
	}
	tests := []struct {
		name  string
		total string
		count int
		first string
		last  string
		want  float64
	}{
		{"single income", "80", 1, "2024-01-05", "2024-01-05", 80},
		{"same day", "80", 2, "2024-01-05", "2024-01-05", 80},
		{"ten days", "100", 3, "2024-01-01", "2024-01-10", 10},
		{"zero total", "0", 3, "2024-01-01", "2024-01-10", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dailyAverage(core.MustAmount(tt.total), tt.count, d(tt.first), d(tt.last))
			if got != tt.want {
				t.Errorf("dailyAverage = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFinancialDashboard(t *testing.T) {
	r := &fakeReader{
		periods: map[storage.Ledger]map[core.Bucket][]core.PeriodTotal{
			storage.Expenses: {core.BucketMonth: {month(2024, 1, "40"), month(2024, 3, "10")}},
			storage.Incomes:  {core.BucketMonth: {month(2024, 2, "90"), month(2024, 3, "60")}},
		},
		totals:     map[storage.Ledger]core.Money{storage.Expenses: core.MustAmount("50"), storage.Incomes: core.MustAmount("150")},
		monthTotal: map[storage.Ledger]core.Money{storage.Expenses: core.MustAmount("10"), storage.Incomes: core.MustAmount("60")},
		unitTypes: []core.UnitTypeTotal{
			{Unit: "Shop", Type: "Alquiler", Amount: core.MustAmount("30")},
			{Unit: "", Type: "", Amount: core.MustAmount("20")},
		},
		incomesBy: map[storage.IncomeDimension][]core.NamedTotal{
			storage.ByBusinessUnit: {{Name: "Online", Amount: core.MustAmount("150")}},
		},
	}
	svc := NewService(r, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 18, 12, 0, 0, 0, time.UTC) }

	d, err := svc.FinancialDashboard(context.Background(), core.Filter{})
	if err != nil {
		t.Fatalf("FinancialDashboard: %v", err)
	}

	if got := strings.Join(d.ExpenseTypes, ","); got != "Alquiler,Sin tipo" {
		t.Errorf("expense types = %s", got)
	}
	var units []string
	for _, u := range d.Units {
		units = append(units, u.Unit)
	}
	if got := strings.Join(units, ","); got != "Online,Shop,Sin unidad" {
		t.Errorf("units = %s", got)
	}
	if d.Units[0].Incomes != 150 || d.Units[0].ExpensesByType["Alquiler"] != 0 {
		t.Errorf("online row = %+v", d.Units[0])
	}
	if d.Units[1].ExpensesByType["Alquiler"] != 30 {
		t.Errorf("shop row = %+v", d.Units[1])
	}

	if len(d.Evolution) != 3 || d.Evolution[1].Month != "2024-02-01" || d.Evolution[2].Expenses != 10 || d.Evolution[2].Incomes != 60 {
		t.Errorf("evolution = %+v", d.Evolution)
	}

	want := DashboardStats{TotalExpenses: 50, TotalIncomes: 150, Balance: 100, MonthExpenses: 10, MonthIncomes: 60, MonthBalance: 50}
	if d.Stats != want {
		t.Errorf("stats = %+v, want %+v", d.Stats, want)
	}

	from := core.NewDate(2024, 1, 1)
	d, err = svc.FinancialDashboard(context.Background(), core.Filter{From: &from})
	if err != nil {
		t.Fatalf("FinancialDashboard with range: %v", err)
	}
	if d.Stats.MonthExpenses != d.Stats.TotalExpenses || d.Stats.MonthBalance != d.Stats.Balance {
		t.Errorf("with a date range month figures should equal totals: %+v", d.Stats)
	}
}

func TestReportsAreCachedUntilInvalidated(t *testing.T) {
	r := &fakeReader{}
	svc := NewService(r, cache.NewLRUCache[any](10, time.Minute), nil)
	ctx := context.Background()

	if _, err := svc.ExpenseReport(ctx, core.Filter{}); err != nil {
		t.Fatalf("ExpenseReport: %v", err)
	}
	calls := r.calls
	if _, err := svc.ExpenseReport(ctx, core.Filter{}); err != nil {
		t.Fatalf("ExpenseReport: %v", err)
	}
	if r.calls != calls {
		t.Errorf("second call should be served from cache (%d -> %d reads)", calls, r.calls)
	}

	unit := []int64{1}
	if _, err := svc.ExpenseReport(ctx, core.Filter{BusinessUnits: unit}); err != nil {
		t.Fatalf("ExpenseReport: %v", err)
	}
	if r.calls == calls {
		t.Error("a different filter must not hit the cache")
	}

	calls = r.calls
	svc.Invalidate()
	if _, err := svc.ExpenseReport(ctx, core.Filter{}); err != nil {
		t.Fatalf("ExpenseReport: %v", err)
	}
	if r.calls == calls {
		t.Error("invalidated report should be rebuilt")
	}
}

func TestReportErrorsPropagate(t *testing.T) {
	boom := errors.New("database is locked")
	svc := NewService(&fakeReader{err: boom}, cache.NewLRUCache[any](10, time.Minute), nil)

	if _, err := svc.IncomeAnalysis(context.Background(), core.Filter{}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
	if _, err := svc.FinancialDashboard(context.Background(), core.Filter{}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
}
