// Package analytics builds the expense report, income analysis and
// financial dashboard payloads from aggregated storage queries.
package analytics

import (
	"context"
	"fmt"
	"time"

	"thot/internal/cache"
	"thot/internal/core"
	"thot/internal/log"
	"thot/internal/projection"
	"thot/internal/storage"
)

// Reader is the aggregation surface the reports are built from.
type Reader interface {
	PeriodTotals(ctx context.Context, l storage.Ledger, b core.Bucket, f core.Filter) ([]core.PeriodTotal, error)
	Total(ctx context.Context, l storage.Ledger, f core.Filter) (core.Money, error)
	ExpensesByType(ctx context.Context, f core.Filter) ([]core.NamedTotal, error)
	IncomesBy(ctx context.Context, dim storage.IncomeDimension, f core.Filter) ([]core.NamedTotal, error)
	ExpensesByUnitAndType(ctx context.Context, f core.Filter) ([]core.UnitTypeTotal, error)
	CountIncomes(ctx context.Context, f core.Filter) (int, error)
	IncomeDateSpan(ctx context.Context, f core.Filter) (first, last core.Date, ok bool, err error)
}

type Service struct {
	reader Reader
	cache  cache.Cache[any]
	logger *log.Logger
	now    func() time.Time
}

// NewService creates the analytics service. c may be nil to disable caching.
func NewService(reader Reader, c cache.Cache[any], logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Service{
		reader: reader,
		cache:  c,
		logger: logger.WithComponent(log.ComponentAnalytics),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Invalidate drops every cached report. Called after new records are stored.
func (s *Service) Invalidate() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

func cached[T any](ctx context.Context, s *Service, report, key string, build func(context.Context) (T, error)) (T, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(report + "|" + key); ok {
			if out, ok := v.(T); ok {
				s.logger.DebugContext(ctx, "Report served from cache", log.FieldReport, report, log.FieldFilter, key)
				return out, nil
			}
		}
	}

	start := time.Now()
	out, err := build(ctx)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("build %s: %w", report, err)
	}
	s.logger.DebugContext(ctx, "Report built",
		log.FieldReport, report,
		log.FieldFilter, key,
		log.FieldDuration, time.Since(start).Milliseconds())

	if s.cache != nil {
		s.cache.Set(report+"|"+key, out)
	}
	return out, nil
}

// Projection runs the projector over the monthly totals of l under f.
func (s *Service) Projection(ctx context.Context, l storage.Ledger, f core.Filter) (projection.Result, error) {
	monthly, err := s.reader.PeriodTotals(ctx, l, core.BucketMonth, f)
	if err != nil {
		return projection.Result{}, fmt.Errorf("monthly %s: %w", l, err)
	}
	r := projection.Project(monthly)
	s.logger.DebugContext(ctx, "Projection computed",
		log.FieldOperation, log.OpProject,
		log.FieldReliability, string(r.Reliability),
		log.FieldSamples, r.Indicators.SampleCount)
	return r, nil
}
