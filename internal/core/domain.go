package core

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	Customer struct {
		ID        int64
		Name      string
		Email     string
		Phone     string
		Address   string
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	BusinessUnit struct {
		ID           int64
		CustomerID   int64
		CustomerName string // populated on reads
		Name         string
		Description  string
		IsActive     bool
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	ExpenseType struct {
		ID    int64
		Code  string
		Name  string
		Limit *Money // optional monthly limit
	}

	Expense struct {
		ID             int64
		Date           Date
		BusinessUnitID *int64
		ExpenseTypeID  *int64
		Amount         Money
		IsFixed        *bool
		Observations   string
		CreatedAt      time.Time
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrNegativeAmount   = errors.New("amount cannot be negative")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrInvalidCode      = errors.New("expense type code must be 1 to 3 characters")
	ErrMissingCustomer  = errors.New("missing customer")
	ErrEmptyOrderNumber = errors.New("empty order number")
	ErrEmptyTaxID       = errors.New("empty tax id")
	ErrInvalidChoice    = errors.New("invalid choice")
)

func (c Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 255 {
		return errors.New("name too long (max 255 characters)")
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return ErrInvalidEmail
	}
	if len(c.Phone) > 20 {
		return errors.New("phone too long (max 20 characters)")
	}
	return nil
}

func (c Customer) String() string {
	return c.Name
}

func (b BusinessUnit) Validate() error {
	if b.CustomerID <= 0 {
		return ErrMissingCustomer
	}
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if len(b.Name) > 255 {
		return errors.New("name too long (max 255 characters)")
	}
	return nil
}

func (b BusinessUnit) String() string {
	return fmt.Sprintf("%s - %s", b.CustomerName, b.Name)
}

func (t ExpenseType) Validate() error {
	code := strings.TrimSpace(t.Code)
	if code == "" || len(code) > 3 {
		return ErrInvalidCode
	}
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if len(t.Name) > 50 {
		return errors.New("name too long (max 50 characters)")
	}
	if t.Limit != nil && t.Limit.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// Exceeded reports whether spent is over the type's monthly limit.
// Types without a limit are never exceeded.
func (t ExpenseType) Exceeded(spent Money) bool {
	if t.Limit == nil {
		return false
	}
	return spent.GreaterThan(*t.Limit)
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	return nil
}

// Period returns the calendar month the expense falls into.
func (e Expense) Period() time.Time {
	return e.Date.MonthStart()
}

// Money is a decimal amount in the business unit's currency.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// MoneyFromCents builds a Money from an integer number of cents.
func MoneyFromCents(cents int64) Money {
	return Money{Decimal: decimal.New(cents, -2)}
}

// Cents returns the amount rounded half-up to whole cents.
func (m Money) Cents() int64 {
	return m.Decimal.Round(2).Shift(2).IntPart()
}

func (m Money) Validate() error {
	if !m.Decimal.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) GreaterThan(o Money) bool {
	return m.Decimal.GreaterThan(o.Decimal)
}

// Float returns the amount as float64 for numeric analysis and JSON payloads.
func (m Money) Float() float64 {
	return m.Decimal.InexactFloat64()
}

// Date is a calendar day in UTC.
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(time.DateOnly)
}

// MonthStart returns the first day of the date's month.
func (d Date) MonthStart() time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd returns the last day of the date's month.
func (d Date) MonthEnd() time.Time {
	return d.MonthStart().AddDate(0, 1, -1)
}
