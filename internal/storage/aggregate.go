package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"thot/internal/core"
)

// Ledger selects the table an aggregation reads: expenses sum their
// amount, incomes sum their computed total.
type Ledger string

const (
	Expenses Ledger = "expenses"
	Incomes  Ledger = "incomes"
)

func (l Ledger) source() (from, alias, amount string) {
	if l == Incomes {
		return "incomes i", "i", "i.total_cents"
	}
	return "expenses e", "e", "e.amount_cents"
}

// IncomeDimension is a column incomes can be grouped by.
type IncomeDimension string

const (
	ByBusinessType  IncomeDimension = "business_type"
	ByPaymentStatus IncomeDimension = "payment_status"
	ByBusinessUnit  IncomeDimension = "business_unit"
)

func (d IncomeDimension) expr() (string, error) {
	switch d {
	case ByBusinessType:
		return "i.business_type", nil
	case ByPaymentStatus:
		return "i.payment_status", nil
	case ByBusinessUnit:
		return "COALESCE(bu.name, '')", nil
	default:
		return "", fmt.Errorf("unknown income dimension %q", d)
	}
}

type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w where) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// whereFor translates f into conditions on the table aliased as alias.
// It returns false when f can match nothing, so callers skip the query.
func whereFor(alias string, f core.Filter) (where, bool) {
	var w where
	if f.From != nil {
		w.add(alias+".date >= ?", f.From.String())
	}
	if f.To != nil {
		w.add(alias+".date <= ?", f.To.String())
	}
	if f.CustomerID != nil {
		w.add(alias+".business_unit_id IN (SELECT id FROM business_units WHERE customer_id = ?)", *f.CustomerID)
	}
	units, ok := f.EffectiveUnits()
	if !ok {
		return w, false
	}
	if len(units) > 0 {
		marks := make([]string, len(units))
		for i, id := range units {
			marks[i] = "?"
			w.args = append(w.args, id)
		}
		w.conds = append(w.conds, alias+".business_unit_id IN ("+strings.Join(marks, ", ")+")")
	}
	return w, true
}

func limitClause(limit int) string {
	if limit <= 0 {
		return ""
	}
	return " LIMIT " + strconv.Itoa(limit)
}

func bucketExpr(alias string, b core.Bucket) (string, error) {
	col := alias + ".date"
	switch b {
	case core.BucketDay:
		return "date(" + col + ")", nil
	case core.BucketWeek:
		// Monday of the week: next Sunday (or today), minus six days.
		return "date(" + col + ", 'weekday 0', '-6 days')", nil
	case core.BucketMonth:
		return "strftime('%Y-%m-01', " + col + ")", nil
	case core.BucketYear:
		return "strftime('%Y-01-01', " + col + ")", nil
	default:
		return "", fmt.Errorf("unknown bucket %q", b)
	}
}

// PeriodTotals sums the ledger per calendar bucket, ascending, skipping
// buckets without records.
func (r *SQLiteRepository) PeriodTotals(ctx context.Context, l Ledger, b core.Bucket, f core.Filter) ([]core.PeriodTotal, error) {
	from, alias, amount := l.source()
	bucket, err := bucketExpr(alias, b)
	if err != nil {
		return nil, err
	}
	w, ok := whereFor(alias, f)
	if !ok {
		return nil, nil
	}
	query := `SELECT ` + bucket + ` AS period, SUM(` + amount + `) FROM ` + from + w.sql() +
		` GROUP BY period ORDER BY period`
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("%s totals by %s: %w", l, b, err)
	}
	defer rows.Close()

	var out []core.PeriodTotal
	for rows.Next() {
		var period string
		var cents int64
		if err := rows.Scan(&period, &cents); err != nil {
			return nil, fmt.Errorf("scan %s total: %w", b, err)
		}
		d, err := parseDay(period)
		if err != nil {
			return nil, err
		}
		out = append(out, core.PeriodTotal{Period: d.Time, Amount: core.MoneyFromCents(cents)})
	}
	return out, rows.Err()
}

// Total sums the whole ledger under f.
func (r *SQLiteRepository) Total(ctx context.Context, l Ledger, f core.Filter) (core.Money, error) {
	from, alias, amount := l.source()
	w, ok := whereFor(alias, f)
	if !ok {
		return core.MoneyFromCents(0), nil
	}
	var cents int64
	query := `SELECT COALESCE(SUM(` + amount + `), 0) FROM ` + from + w.sql()
	if err := r.db.QueryRowContext(ctx, query, w.args...).Scan(&cents); err != nil {
		return core.Money{}, fmt.Errorf("%s total: %w", l, err)
	}
	return core.MoneyFromCents(cents), nil
}

// ExpensesByType sums expenses per expense type name, largest first.
// Expenses without a type are grouped under an empty name.
func (r *SQLiteRepository) ExpensesByType(ctx context.Context, f core.Filter) ([]core.NamedTotal, error) {
	w, ok := whereFor("e", f)
	if !ok {
		return nil, nil
	}
	query := `SELECT COALESCE(t.name, '') AS name, SUM(e.amount_cents)
FROM expenses e LEFT JOIN expense_types t ON t.id = e.expense_type_id` + w.sql() + `
GROUP BY 1 ORDER BY 2 DESC, 1`
	return r.namedTotals(ctx, "expenses by type", query, w.args)
}

// IncomesBy sums incomes per value of dim, largest first.
func (r *SQLiteRepository) IncomesBy(ctx context.Context, dim IncomeDimension, f core.Filter) ([]core.NamedTotal, error) {
	expr, err := dim.expr()
	if err != nil {
		return nil, err
	}
	w, ok := whereFor("i", f)
	if !ok {
		return nil, nil
	}
	query := `SELECT ` + expr + ` AS name, SUM(i.total_cents)
FROM incomes i LEFT JOIN business_units bu ON bu.id = i.business_unit_id` + w.sql() + `
GROUP BY 1 ORDER BY 2 DESC, 1`
	return r.namedTotals(ctx, "incomes by "+string(dim), query, w.args)
}

func (r *SQLiteRepository) namedTotals(ctx context.Context, what, query string, args []interface{}) ([]core.NamedTotal, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	defer rows.Close()

	var out []core.NamedTotal
	for rows.Next() {
		var name string
		var cents int64
		if err := rows.Scan(&name, &cents); err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		out = append(out, core.NamedTotal{Name: name, Amount: core.MoneyFromCents(cents)})
	}
	return out, rows.Err()
}

// ExpensesByUnitAndType sums expenses per (business unit, expense type)
// name pair. Missing unit or type names are empty.
func (r *SQLiteRepository) ExpensesByUnitAndType(ctx context.Context, f core.Filter) ([]core.UnitTypeTotal, error) {
	w, ok := whereFor("e", f)
	if !ok {
		return nil, nil
	}
	query := `SELECT COALESCE(bu.name, '') AS unit, COALESCE(t.name, '') AS type, SUM(e.amount_cents)
FROM expenses e
LEFT JOIN business_units bu ON bu.id = e.business_unit_id
LEFT JOIN expense_types t ON t.id = e.expense_type_id` + w.sql() + `
GROUP BY 1, 2 ORDER BY 1, 2`
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("expenses by unit and type: %w", err)
	}
	defer rows.Close()

	var out []core.UnitTypeTotal
	for rows.Next() {
		var t core.UnitTypeTotal
		var cents int64
		if err := rows.Scan(&t.Unit, &t.Type, &cents); err != nil {
			return nil, fmt.Errorf("scan unit/type total: %w", err)
		}
		t.Amount = core.MoneyFromCents(cents)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CountIncomes(ctx context.Context, f core.Filter) (int, error) {
	w, ok := whereFor("i", f)
	if !ok {
		return 0, nil
	}
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM incomes i`+w.sql(), w.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count incomes: %w", err)
	}
	return n, nil
}

// IncomeDateSpan returns the first and last income dates under f.
// ok is false when there are no incomes.
func (r *SQLiteRepository) IncomeDateSpan(ctx context.Context, f core.Filter) (first, last core.Date, ok bool, err error) {
	w, match := whereFor("i", f)
	if !match {
		return core.Date{}, core.Date{}, false, nil
	}
	var lo, hi sql.NullString
	if err := r.db.QueryRowContext(ctx, `SELECT MIN(i.date), MAX(i.date) FROM incomes i`+w.sql(), w.args...).Scan(&lo, &hi); err != nil {
		return core.Date{}, core.Date{}, false, fmt.Errorf("income date span: %w", err)
	}
	if !lo.Valid || !hi.Valid {
		return core.Date{}, core.Date{}, false, nil
	}
	if first, err = parseDay(lo.String); err != nil {
		return core.Date{}, core.Date{}, false, err
	}
	if last, err = parseDay(hi.String); err != nil {
		return core.Date{}, core.Date{}, false, err
	}
	return first, last, true, nil
}

// MonthlySpend sums the expenses of one type booked by one unit (nil for
// expenses without a unit) during the month containing month. A positive
// throughID only counts expenses stored up to and including that id, giving
// the running total at the time that expense was recorded.
func (r *SQLiteRepository) MonthlySpend(ctx context.Context, unitID *int64, typeID int64, month time.Time, throughID int64) (core.Money, error) {
	d := core.Date{Time: month}
	query := `SELECT COALESCE(SUM(amount_cents), 0) FROM expenses
WHERE expense_type_id = ? AND business_unit_id IS ? AND date >= ? AND date <= ?`
	args := []interface{}{
		typeID, nullInt(unitID),
		d.MonthStart().Format(time.DateOnly), d.MonthEnd().Format(time.DateOnly),
	}
	if throughID > 0 {
		query += " AND id <= ?"
		args = append(args, throughID)
	}

	var cents int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&cents); err != nil {
		return core.Money{}, fmt.Errorf("monthly spend for type %d: %w", typeID, err)
	}
	return core.MoneyFromCents(cents), nil
}
