package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"thot/internal/amqp"
	"thot/internal/analytics"
	"thot/internal/core"
	"thot/internal/log"
	"thot/internal/notify"
	"thot/internal/storage"
)

// LimitStore is the storage surface needed by the limit check.
type LimitStore interface {
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	GetExpenseType(ctx context.Context, id int64) (core.ExpenseType, error)
	GetBusinessUnit(ctx context.Context, id int64) (core.BusinessUnit, error)
	MonthlySpend(ctx context.Context, unitID *int64, typeID int64, month time.Time, throughID int64) (core.Money, error)
}

// LimitAlert describes a monthly limit crossed by an expense.
type LimitAlert struct {
	ExpenseID   int64
	Unit        string
	ExpenseType string
	Month       time.Time
	Spent       core.Money
	Limit       core.Money
}

// LimitChecker compares a unit's monthly spending per expense type against
// the type's limit and notifies when an expense pushes it over.
type LimitChecker struct {
	store    LimitStore
	notifier notify.Notifier
	logger   *log.Logger
}

func NewLimitChecker(store LimitStore, notifier notify.Notifier, logger *log.Logger) *LimitChecker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &LimitChecker{
		store:    store,
		notifier: notifier,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleExpenseRecorded is the AMQP handler for stored expenses. Messages
// referring to records that no longer exist are unprocessable.
func (c *LimitChecker) HandleExpenseRecorded(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error {
	c.logger.InfoContext(ctx, "Processing expense recorded message",
		log.FieldOperation, log.OpConsume,
		log.FieldRecordID, msg.ID,
		log.FieldDate, msg.Date)

	alert, err := c.Check(ctx, msg.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %v", amqp.ErrUnprocessable, err)
		}
		return err
	}
	if alert == nil {
		return nil
	}
	return c.notifier.Notify(ctx, alert.Message())
}

// Check returns an alert when expense id is the one that took its unit's
// monthly spending for its type over the limit. Expenses without a type and
// types without a limit never alert.
func (c *LimitChecker) Check(ctx context.Context, id int64) (*LimitAlert, error) {
	e, err := c.store.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.ExpenseTypeID == nil {
		return nil, nil
	}
	typ, err := c.store.GetExpenseType(ctx, *e.ExpenseTypeID)
	if err != nil {
		return nil, err
	}
	if typ.Limit == nil {
		return nil, nil
	}

	// Expenses stored after this one are excluded: messages may be consumed
	// long after later expenses of the same month were recorded.
	spent, err := c.store.MonthlySpend(ctx, e.BusinessUnitID, typ.ID, e.Period(), e.ID)
	if err != nil {
		return nil, err
	}
	before := core.NewMoney(spent.Sub(e.Amount.Decimal))
	if !typ.Exceeded(spent) || typ.Exceeded(before) {
		return nil, nil
	}

	unit := analytics.NoUnit
	if e.BusinessUnitID != nil {
		bu, err := c.store.GetBusinessUnit(ctx, *e.BusinessUnitID)
		if err != nil {
			return nil, err
		}
		unit = bu.String()
	}

	c.logger.WarnContext(ctx, "Monthly expense limit exceeded",
		log.FieldRecordID, e.ID,
		log.FieldBusinessUnit, unit,
		log.FieldExpenseType, typ.ID,
		log.FieldAmountCents, spent.Cents())

	return &LimitAlert{
		ExpenseID:   e.ID,
		Unit:        unit,
		ExpenseType: typ.Name,
		Month:       e.Period(),
		Spent:       spent,
		Limit:       *typ.Limit,
	}, nil
}

func (a LimitAlert) Message() notify.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Business unit: %s\n", a.Unit)
	fmt.Fprintf(&b, "Expense type: %s\n", a.ExpenseType)
	fmt.Fprintf(&b, "Month: %s\n", a.Month.Format("2006-01"))
	fmt.Fprintf(&b, "Spent: %s\n", a.Spent.StringFixed(2))
	fmt.Fprintf(&b, "Limit: %s\n", a.Limit.StringFixed(2))
	fmt.Fprintf(&b, "Triggered by expense #%d\n", a.ExpenseID)
	return notify.Message{
		Subject: fmt.Sprintf("Limit exceeded: %s / %s", a.Unit, a.ExpenseType),
		Body:    b.String(),
	}
}
