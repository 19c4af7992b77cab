package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"thot/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("not found")

const pragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Migrations first: they use their own connection without pragmas.
	version, err := RunMigrations(dbPath)
	if err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+pragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("SQLite repository ready", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection, used by readiness probes.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) stamp() string {
	return r.now().Format(time.RFC3339)
}

func notFound(err error, what string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("get %s %d: %w", what, id, err)
}

// --- customers ---

func (r *SQLiteRepository) CreateCustomer(ctx context.Context, c core.Customer) (core.Customer, error) {
	row, err := r.queries.CreateCustomer(ctx, CreateCustomerParams{
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: r.stamp(),
	})
	if err != nil {
		return core.Customer{}, fmt.Errorf("create customer: %w", err)
	}
	slog.InfoContext(ctx, "Customer saved", "id", row.ID, "name", row.Name)
	return customerFromRow(row), nil
}

func (r *SQLiteRepository) GetCustomer(ctx context.Context, id int64) (core.Customer, error) {
	row, err := r.queries.GetCustomer(ctx, id)
	if err != nil {
		return core.Customer{}, notFound(err, "customer", id)
	}
	return customerFromRow(row), nil
}

func (r *SQLiteRepository) ListCustomers(ctx context.Context) ([]core.Customer, error) {
	rows, err := r.queries.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	out := make([]core.Customer, len(rows))
	for i, row := range rows {
		out[i] = customerFromRow(row)
	}
	return out, nil
}

// --- business units ---

func (r *SQLiteRepository) CreateBusinessUnit(ctx context.Context, b core.BusinessUnit) (core.BusinessUnit, error) {
	id, err := r.queries.CreateBusinessUnit(ctx, CreateBusinessUnitParams{
		CustomerID:  b.CustomerID,
		Name:        b.Name,
		Description: b.Description,
		IsActive:    b.IsActive,
		CreatedAt:   r.stamp(),
	})
	if err != nil {
		return core.BusinessUnit{}, fmt.Errorf("create business unit: %w", err)
	}
	slog.InfoContext(ctx, "Business unit saved", "id", id, "name", b.Name, "customer_id", b.CustomerID)
	return r.GetBusinessUnit(ctx, id)
}

func (r *SQLiteRepository) GetBusinessUnit(ctx context.Context, id int64) (core.BusinessUnit, error) {
	row, err := r.queries.GetBusinessUnit(ctx, id)
	if err != nil {
		return core.BusinessUnit{}, notFound(err, "business unit", id)
	}
	return businessUnitFromRow(row), nil
}

// ListBusinessUnits lists units, optionally for one customer and only active ones.
func (r *SQLiteRepository) ListBusinessUnits(ctx context.Context, customerID *int64, activeOnly bool) ([]core.BusinessUnit, error) {
	rows, err := r.queries.ListBusinessUnits(ctx, ListBusinessUnitsParams{
		CustomerID: nullInt(customerID),
		ActiveOnly: activeOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("list business units: %w", err)
	}
	out := make([]core.BusinessUnit, len(rows))
	for i, row := range rows {
		out[i] = businessUnitFromRow(row)
	}
	return out, nil
}

// --- expense types ---

func (r *SQLiteRepository) CreateExpenseType(ctx context.Context, t core.ExpenseType) (core.ExpenseType, error) {
	var limit sql.NullInt64
	if t.Limit != nil {
		limit = sql.NullInt64{Int64: t.Limit.Cents(), Valid: true}
	}
	row, err := r.queries.CreateExpenseType(ctx, CreateExpenseTypeParams{
		Code:       t.Code,
		Name:       t.Name,
		LimitCents: limit,
		CreatedAt:  r.stamp(),
	})
	if err != nil {
		return core.ExpenseType{}, fmt.Errorf("create expense type: %w", err)
	}
	return expenseTypeFromRow(row), nil
}

func (r *SQLiteRepository) GetExpenseType(ctx context.Context, id int64) (core.ExpenseType, error) {
	row, err := r.queries.GetExpenseType(ctx, id)
	if err != nil {
		return core.ExpenseType{}, notFound(err, "expense type", id)
	}
	return expenseTypeFromRow(row), nil
}

func (r *SQLiteRepository) ListExpenseTypes(ctx context.Context) ([]core.ExpenseType, error) {
	rows, err := r.queries.ListExpenseTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expense types: %w", err)
	}
	out := make([]core.ExpenseType, len(rows))
	for i, row := range rows {
		out[i] = expenseTypeFromRow(row)
	}
	return out, nil
}

// --- expenses ---

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	var fixed sql.NullBool
	if e.IsFixed != nil {
		fixed = sql.NullBool{Bool: *e.IsFixed, Valid: true}
	}
	id, err := r.queries.CreateExpense(ctx, CreateExpenseParams{
		Date:           e.Date.String(),
		BusinessUnitID: nullInt(e.BusinessUnitID),
		ExpenseTypeID:  nullInt(e.ExpenseTypeID),
		AmountCents:    e.Amount.Cents(),
		IsFixed:        fixed,
		Observations:   e.Observations,
		CreatedAt:      r.stamp(),
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", id,
		"date", e.Date.String(),
		"amount_cents", e.Amount.Cents())

	return r.GetExpense(ctx, id)
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row, err := r.queries.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, notFound(err, "expense", id)
	}
	return expenseFromRow(row)
}

// ListExpenses returns the newest expenses matching f, at most limit rows
// (no limit when limit <= 0).
func (r *SQLiteRepository) ListExpenses(ctx context.Context, f core.Filter, limit int) ([]core.Expense, error) {
	w, ok := whereFor("e", f)
	if !ok {
		return nil, nil
	}
	query := `SELECT ` + expenseColumns + ` FROM expenses e` + w.sql() + ` ORDER BY e.date DESC, e.id DESC` + limitClause(limit)
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		row, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e, err := expenseFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// --- incomes ---

// CreateIncome applies defaults, recomputes the total and stores the income.
func (r *SQLiteRepository) CreateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	in.ApplyDefaults()
	in.ComputeTotal()
	now := r.stamp()
	row := incomeToRow(in)
	row.CreatedAt, row.UpdatedAt = now, now

	id, err := r.queries.CreateIncome(ctx, row)
	if err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}

	slog.InfoContext(ctx, "Income saved to SQLite",
		"id", id,
		"order_number", in.OrderNumber,
		"total_cents", row.TotalCents)

	return r.GetIncome(ctx, id)
}

func (r *SQLiteRepository) GetIncome(ctx context.Context, id int64) (core.Income, error) {
	row, err := r.queries.GetIncome(ctx, id)
	if err != nil {
		return core.Income{}, notFound(err, "income", id)
	}
	return incomeFromRow(row)
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context, f core.Filter, limit int) ([]core.Income, error) {
	w, ok := whereFor("i", f)
	if !ok {
		return nil, nil
	}
	query := `SELECT ` + incomeColumns + ` FROM incomes i` + w.sql() + ` ORDER BY i.date DESC, i.id DESC` + limitClause(limit)
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var out []core.Income
	for rows.Next() {
		row, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		in, err := incomeFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// --- suppliers ---

func (r *SQLiteRepository) CreateSupplier(ctx context.Context, s core.Supplier) (core.Supplier, error) {
	row, err := r.queries.CreateSupplier(ctx, Supplier{
		BusinessUnitID: nullInt(s.BusinessUnitID),
		BusinessName:   s.BusinessName,
		CommercialName: s.CommercialName,
		TaxID:          s.TaxID,
		ContactPerson:  s.ContactPerson,
		Email:          s.Email,
		Phone:          s.Phone,
		Address:        s.Address,
		City:           s.City,
		Country:        s.Country,
		BankName:       s.BankName,
		BankCBUAlias:   s.BankCBUAlias,
		IsActive:       s.IsActive,
		Notes:          s.Notes,
		CreatedAt:      r.stamp(),
	})
	if err != nil {
		return core.Supplier{}, fmt.Errorf("create supplier: %w", err)
	}
	return supplierFromRow(row), nil
}

// ListSuppliers lists suppliers visible under the unit part of f.
// Suppliers without a unit are only listed when f is unscoped.
func (r *SQLiteRepository) ListSuppliers(ctx context.Context, f core.Filter) ([]core.Supplier, error) {
	w, ok := whereFor("s", core.Filter{CustomerID: f.CustomerID, BusinessUnits: f.BusinessUnits, Scope: f.Scope})
	if !ok {
		return nil, nil
	}
	query := `SELECT ` + supplierColumns + ` FROM suppliers s` + w.sql() + ` ORDER BY business_name`
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var out []core.Supplier
	for rows.Next() {
		row, err := scanSupplier(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		out = append(out, supplierFromRow(row))
	}
	return out, rows.Err()
}

// ClearAll deletes every record. Used by the seed command.
func (r *SQLiteRepository) ClearAll(ctx context.Context) error {
	if err := r.queries.ClearAll(ctx); err != nil {
		return fmt.Errorf("clear all records: %w", err)
	}
	slog.WarnContext(ctx, "All records deleted")
	return nil
}

// WithinTx runs fn with a repository whose writes and lookups by id share a
// single transaction. List and aggregation reads still use the pool.
func (r *SQLiteRepository) WithinTx(ctx context.Context, fn func(*SQLiteRepository) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	txRepo := &SQLiteRepository{db: r.db, queries: r.queries.WithTx(tx), now: r.now}
	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
