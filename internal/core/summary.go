package core

import (
	"strconv"
	"strings"
	"time"
)

// PeriodTotal is an amount aggregated over a calendar bucket (day, week,
// month or year) identified by the bucket's first day.
type PeriodTotal struct {
	Period time.Time
	Amount Money
}

// MonthlyTotal is a PeriodTotal whose Period is the first day of a month.
// Series of monthly totals are ascending and skip months without data.
type MonthlyTotal = PeriodTotal

// NamedTotal is an amount aggregated by a label (category, unit, status).
type NamedTotal struct {
	Name   string
	Amount Money
}

// UnitTypeTotal is an expense amount for a business unit and expense type.
type UnitTypeTotal struct {
	Unit   string
	Type   string
	Amount Money
}

// Bucket selects the calendar granularity of a period aggregation.
type Bucket string

const (
	BucketDay   Bucket = "day"
	BucketWeek  Bucket = "week"
	BucketMonth Bucket = "month"
	BucketYear  Bucket = "year"
)

// Filter narrows records by date range, customer and business units.
//
// Scope holds the business units the caller is allowed to see; nil means
// unrestricted, an empty non-nil slice means nothing is visible.
type Filter struct {
	From          *Date
	To            *Date
	CustomerID    *int64
	BusinessUnits []int64
	Scope         []int64
}

// HasDateRange reports whether either bound of the date range is set.
func (f Filter) HasDateRange() bool {
	return f.From != nil || f.To != nil
}

// EffectiveUnits intersects the requested units with the scope.
// The second result is false when the intersection is necessarily empty.
func (f Filter) EffectiveUnits() ([]int64, bool) {
	if f.Scope == nil {
		return f.BusinessUnits, true
	}
	if len(f.BusinessUnits) == 0 {
		return f.Scope, len(f.Scope) > 0
	}
	allowed := make(map[int64]struct{}, len(f.Scope))
	for _, id := range f.Scope {
		allowed[id] = struct{}{}
	}
	var out []int64
	for _, id := range f.BusinessUnits {
		if _, ok := allowed[id]; ok {
			out = append(out, id)
		}
	}
	return out, len(out) > 0
}

// Key returns a stable string identifying the filter, used for caching.
func (f Filter) Key() string {
	var b strings.Builder
	if f.From != nil {
		b.WriteString("from=" + f.From.String())
	}
	if f.To != nil {
		b.WriteString(";to=" + f.To.String())
	}
	if f.CustomerID != nil {
		b.WriteString(";customer=" + strconv.FormatInt(*f.CustomerID, 10))
	}
	b.WriteString(";units=" + joinIDs(f.BusinessUnits))
	if f.Scope != nil {
		b.WriteString(";scope=" + joinIDs(f.Scope))
	}
	return b.String()
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
