package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"thot/internal/analytics"
	"thot/internal/core"
	"thot/internal/log"
	"thot/internal/notify"
	"thot/internal/projection"
	"thot/internal/storage"
)

// UnitLister lists business units.
type UnitLister interface {
	ListBusinessUnits(ctx context.Context, customerID *int64, activeOnly bool) ([]core.BusinessUnit, error)
}

// Projector projects a ledger under a filter.
type Projector interface {
	Projection(ctx context.Context, l storage.Ledger, f core.Filter) (projection.Result, error)
}

// DigestLine is one business unit's income projection.
type DigestLine struct {
	Unit   string
	Result projection.Result
}

// Digest is the periodic income projection summary for the active units.
type Digest struct {
	GeneratedAt time.Time
	Lines       []DigestLine
}

// DigestBuilder projects the income of every active business unit and
// sends the summary.
type DigestBuilder struct {
	units     UnitLister
	projector Projector
	notifier  notify.Notifier
	logger    *log.Logger
	now       func() time.Time
}

func NewDigestBuilder(units UnitLister, projector Projector, notifier notify.Notifier, logger *log.Logger) *DigestBuilder {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DigestBuilder{
		units:     units,
		projector: projector,
		notifier:  notifier,
		logger:    logger.WithComponent(log.ComponentScheduler),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Build projects each active unit. A unit whose projection fails is
// skipped; its error is returned joined with the others after the rest
// have been projected.
func (b *DigestBuilder) Build(ctx context.Context) (Digest, error) {
	units, err := b.units.ListBusinessUnits(ctx, nil, true)
	if err != nil {
		return Digest{}, fmt.Errorf("list active units: %w", err)
	}

	d := Digest{GeneratedAt: b.now()}
	var errs []error
	for _, u := range units {
		r, err := b.projector.Projection(ctx, storage.Incomes, core.Filter{BusinessUnits: []int64{u.ID}})
		if err != nil {
			errs = append(errs, fmt.Errorf("project unit %d: %w", u.ID, err))
			continue
		}
		d.Lines = append(d.Lines, DigestLine{Unit: u.String(), Result: r})
	}
	return d, errors.Join(errs...)
}

// Send builds the digest and notifies it. Partial digests are still sent.
func (b *DigestBuilder) Send(ctx context.Context) error {
	d, buildErr := b.Build(ctx)
	if buildErr != nil {
		b.logger.ErrorContext(ctx, "Digest built with errors",
			log.FieldOperation, log.OpProject,
			log.FieldError, buildErr.Error())
		if len(d.Lines) == 0 {
			return buildErr
		}
	}
	if err := b.notifier.Notify(ctx, d.Message()); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	b.logger.InfoContext(ctx, "Digest sent", "units", len(d.Lines))
	return buildErr
}

func (d Digest) Message() notify.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Income projection as of %s\n\n", d.GeneratedAt.Format(time.DateOnly))
	if len(d.Lines) == 0 {
		b.WriteString("No active business units.\n")
	}
	for _, l := range d.Lines {
		r := l.Result
		reliability := analytics.ReliabilityLabel(r.Reliability)
		if r.NextMonth == nil {
			fmt.Fprintf(&b, "%s: %s (%s)\n", l.Unit, reliability, r.Reason)
			continue
		}
		fmt.Fprintf(&b, "%s: next month %s, 3 months %s, 6 months %s, change %+.1f%%, reliability %s\n",
			l.Unit, amount(r.NextMonth), amount(r.In3Months), amount(r.In6Months), r.PercentChange, reliability)
	}
	return notify.Message{
		Subject: "Monthly income projection " + d.GeneratedAt.Format("2006-01"),
		Body:    b.String(),
	}
}

func amount(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
