// Package services orchestrates storage, messaging, analytics and
// notifications for the back-office operations.
package services

import (
	"context"
	"errors"
	"fmt"

	"thot/internal/amqp"
	"thot/internal/core"
	"thot/internal/log"
	"thot/internal/storage"
)

// ErrUnknownReference is returned when a record points at a business unit
// or expense type that does not exist.
var ErrUnknownReference = errors.New("unknown reference")

// TransactionStore is the storage surface needed to record transactions.
type TransactionStore interface {
	GetBusinessUnit(ctx context.Context, id int64) (core.BusinessUnit, error)
	GetExpenseType(ctx context.Context, id int64) (core.ExpenseType, error)
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	CreateIncome(ctx context.Context, in core.Income) (core.Income, error)
}

// Publisher announces stored expenses to the worker.
type Publisher interface {
	PublishExpenseRecorded(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error
}

// Invalidator drops cached reports after the ledgers change.
type Invalidator interface {
	Invalidate()
}

// TransactionService records expenses and incomes. Storing is the only
// step that can fail a request; publishing is best effort.
type TransactionService struct {
	store       TransactionStore
	publisher   Publisher
	invalidator Invalidator
	logger      *log.Logger
}

// NewTransactionService wires the service. publisher and invalidator may be
// nil.
func NewTransactionService(store TransactionStore, publisher Publisher, invalidator Invalidator, logger *log.Logger) *TransactionService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &TransactionService{
		store:       store,
		publisher:   publisher,
		invalidator: invalidator,
		logger:      logger.WithComponent(log.ComponentApp),
	}
}

// RecordExpense validates, stores and announces an expense.
func (s *TransactionService) RecordExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if err := s.checkUnit(ctx, e.BusinessUnitID); err != nil {
		return core.Expense{}, err
	}
	if e.ExpenseTypeID != nil {
		if _, err := s.store.GetExpenseType(ctx, *e.ExpenseTypeID); err != nil {
			return core.Expense{}, reference(err, "expense type", *e.ExpenseTypeID)
		}
	}

	saved, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.invalidate()
	s.publish(ctx, saved)
	return saved, nil
}

// RecordIncome validates and stores an income. Defaults are applied and the
// total derived before validation.
func (s *TransactionService) RecordIncome(ctx context.Context, in core.Income) (core.Income, error) {
	in.ApplyDefaults()
	in.ComputeTotal()
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	if err := s.checkUnit(ctx, in.BusinessUnitID); err != nil {
		return core.Income{}, err
	}

	saved, err := s.store.CreateIncome(ctx, in)
	if err != nil {
		return core.Income{}, fmt.Errorf("save income: %w", err)
	}
	s.invalidate()
	return saved, nil
}

func (s *TransactionService) checkUnit(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	if _, err := s.store.GetBusinessUnit(ctx, *id); err != nil {
		return reference(err, "business unit", *id)
	}
	return nil
}

func reference(err error, what string, id int64) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s %d", ErrUnknownReference, what, id)
	}
	return fmt.Errorf("load %s %d: %w", what, id, err)
}

func (s *TransactionService) invalidate() {
	if s.invalidator != nil {
		s.invalidator.Invalidate()
	}
}

func (s *TransactionService) publish(ctx context.Context, e core.Expense) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP not configured, skipping expense message", log.FieldRecordID, e.ID)
		return
	}
	if err := s.publisher.PublishExpenseRecorded(ctx, amqp.NewExpenseRecordedMessage(e)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish expense message",
			log.FieldOperation, log.OpPublish,
			log.FieldRecordID, e.ID,
			log.FieldError, err.Error())
	}
}
