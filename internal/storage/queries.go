package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// --- customers ---

const createCustomer = `INSERT INTO customers (name, email, phone, address, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, name, email, phone, address, created_at, updated_at`

type CreateCustomerParams struct {
	Name      string
	Email     string
	Phone     string
	Address   string
	CreatedAt string
}

func (q *Queries) CreateCustomer(ctx context.Context, arg CreateCustomerParams) (Customer, error) {
	row := q.db.QueryRowContext(ctx, createCustomer,
		arg.Name, arg.Email, arg.Phone, arg.Address, arg.CreatedAt, arg.CreatedAt)
	return scanCustomer(row)
}

const getCustomer = `SELECT id, name, email, phone, address, created_at, updated_at
FROM customers WHERE id = ?`

func (q *Queries) GetCustomer(ctx context.Context, id int64) (Customer, error) {
	return scanCustomer(q.db.QueryRowContext(ctx, getCustomer, id))
}

const listCustomers = `SELECT id, name, email, phone, address, created_at, updated_at
FROM customers ORDER BY name`

func (q *Queries) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := q.db.QueryContext(ctx, listCustomers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func scanCustomer(s scanner) (Customer, error) {
	var c Customer
	err := s.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// --- business units ---

const createBusinessUnit = `INSERT INTO business_units (customer_id, name, description, is_active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id`

type CreateBusinessUnitParams struct {
	CustomerID  int64
	Name        string
	Description string
	IsActive    bool
	CreatedAt   string
}

func (q *Queries) CreateBusinessUnit(ctx context.Context, arg CreateBusinessUnitParams) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createBusinessUnit,
		arg.CustomerID, arg.Name, arg.Description, arg.IsActive, arg.CreatedAt, arg.CreatedAt).Scan(&id)
	return id, err
}

const selectBusinessUnit = `SELECT bu.id, bu.customer_id, c.name, bu.name, bu.description, bu.is_active, bu.created_at, bu.updated_at
FROM business_units bu JOIN customers c ON c.id = bu.customer_id`

func (q *Queries) GetBusinessUnit(ctx context.Context, id int64) (BusinessUnit, error) {
	return scanBusinessUnit(q.db.QueryRowContext(ctx, selectBusinessUnit+` WHERE bu.id = ?`, id))
}

const listBusinessUnits = selectBusinessUnit + `
WHERE (?1 IS NULL OR bu.customer_id = ?1)
  AND (?2 = 0 OR bu.is_active = 1)
ORDER BY c.name, bu.name`

type ListBusinessUnitsParams struct {
	CustomerID sql.NullInt64
	ActiveOnly bool
}

func (q *Queries) ListBusinessUnits(ctx context.Context, arg ListBusinessUnitsParams) ([]BusinessUnit, error) {
	rows, err := q.db.QueryContext(ctx, listBusinessUnits, arg.CustomerID, arg.ActiveOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BusinessUnit
	for rows.Next() {
		b, err := scanBusinessUnit(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

func scanBusinessUnit(s scanner) (BusinessUnit, error) {
	var b BusinessUnit
	err := s.Scan(&b.ID, &b.CustomerID, &b.CustomerName, &b.Name, &b.Description, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// --- expense types ---

const createExpenseType = `INSERT INTO expense_types (code, name, limit_cents, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id, code, name, limit_cents`

type CreateExpenseTypeParams struct {
	Code       string
	Name       string
	LimitCents sql.NullInt64
	CreatedAt  string
}

func (q *Queries) CreateExpenseType(ctx context.Context, arg CreateExpenseTypeParams) (ExpenseType, error) {
	row := q.db.QueryRowContext(ctx, createExpenseType, arg.Code, arg.Name, arg.LimitCents, arg.CreatedAt, arg.CreatedAt)
	return scanExpenseType(row)
}

const getExpenseType = `SELECT id, code, name, limit_cents FROM expense_types WHERE id = ?`

func (q *Queries) GetExpenseType(ctx context.Context, id int64) (ExpenseType, error) {
	return scanExpenseType(q.db.QueryRowContext(ctx, getExpenseType, id))
}

const listExpenseTypes = `SELECT id, code, name, limit_cents FROM expense_types ORDER BY name`

func (q *Queries) ListExpenseTypes(ctx context.Context) ([]ExpenseType, error) {
	rows, err := q.db.QueryContext(ctx, listExpenseTypes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExpenseType
	for rows.Next() {
		t, err := scanExpenseType(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func scanExpenseType(s scanner) (ExpenseType, error) {
	var t ExpenseType
	err := s.Scan(&t.ID, &t.Code, &t.Name, &t.LimitCents)
	return t, err
}

// --- expenses ---

const expenseColumns = `e.id, e.date, e.business_unit_id, e.expense_type_id, e.amount_cents, e.is_fixed, e.observations, e.created_at`

const createExpense = `INSERT INTO expenses (date, business_unit_id, expense_type_id, amount_cents, is_fixed, observations, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`

type CreateExpenseParams struct {
	Date           string
	BusinessUnitID sql.NullInt64
	ExpenseTypeID  sql.NullInt64
	AmountCents    int64
	IsFixed        sql.NullBool
	Observations   string
	CreatedAt      string
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createExpense,
		arg.Date, arg.BusinessUnitID, arg.ExpenseTypeID, arg.AmountCents,
		arg.IsFixed, arg.Observations, arg.CreatedAt, arg.CreatedAt).Scan(&id)
	return id, err
}

func (q *Queries) GetExpense(ctx context.Context, id int64) (Expense, error) {
	return scanExpense(q.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses e WHERE e.id = ?`, id))
}

func scanExpense(s scanner) (Expense, error) {
	var e Expense
	err := s.Scan(&e.ID, &e.Date, &e.BusinessUnitID, &e.ExpenseTypeID, &e.AmountCents, &e.IsFixed, &e.Observations, &e.CreatedAt)
	return e, err
}

// --- incomes ---

const incomeColumns = `i.id, i.business_unit_id, i.order_number, i.date, i.business_type, i.order_status,
i.payment_status, i.currency, i.product_subtotal_cents, i.discount_cents, i.shipping_cost_cents,
i.total_cents, i.buyer_name, i.email, i.tax_id, i.phone, i.shipping_status, i.shipping_method,
i.address, i.city, i.state_province, i.postal_code, i.country, i.payment_method, i.payment_date,
i.payment_transaction_id, i.discount_coupon, i.product_name, i.product_price_cents,
i.product_quantity, i.sku, i.is_physical_product, i.channel, i.sales_branch, i.seller,
i.registered_by, i.buyer_notes, i.seller_notes, i.created_at, i.updated_at`

const createIncome = `INSERT INTO incomes (business_unit_id, order_number, date, business_type, order_status,
payment_status, currency, product_subtotal_cents, discount_cents, shipping_cost_cents,
total_cents, buyer_name, email, tax_id, phone, shipping_status, shipping_method,
address, city, state_province, postal_code, country, payment_method, payment_date,
payment_transaction_id, discount_coupon, product_name, product_price_cents,
product_quantity, sku, is_physical_product, channel, sales_branch, seller,
registered_by, buyer_notes, seller_notes, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`

// CreateIncome inserts every column of arg except ID.
func (q *Queries) CreateIncome(ctx context.Context, arg Income) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createIncome,
		arg.BusinessUnitID, arg.OrderNumber, arg.Date, arg.BusinessType, arg.OrderStatus,
		arg.PaymentStatus, arg.Currency, arg.ProductSubtotalCents, arg.DiscountCents, arg.ShippingCostCents,
		arg.TotalCents, arg.BuyerName, arg.Email, arg.TaxID, arg.Phone, arg.ShippingStatus, arg.ShippingMethod,
		arg.Address, arg.City, arg.StateProvince, arg.PostalCode, arg.Country, arg.PaymentMethod, arg.PaymentDate,
		arg.PaymentTransactionID, arg.DiscountCoupon, arg.ProductName, arg.ProductPriceCents,
		arg.ProductQuantity, arg.SKU, arg.IsPhysicalProduct, arg.Channel, arg.SalesBranch, arg.Seller,
		arg.RegisteredBy, arg.BuyerNotes, arg.SellerNotes, arg.CreatedAt, arg.UpdatedAt,
	).Scan(&id)
	return id, err
}

func (q *Queries) GetIncome(ctx context.Context, id int64) (Income, error) {
	return scanIncome(q.db.QueryRowContext(ctx, `SELECT `+incomeColumns+` FROM incomes i WHERE i.id = ?`, id))
}

func scanIncome(s scanner) (Income, error) {
	var i Income
	err := s.Scan(
		&i.ID, &i.BusinessUnitID, &i.OrderNumber, &i.Date, &i.BusinessType, &i.OrderStatus,
		&i.PaymentStatus, &i.Currency, &i.ProductSubtotalCents, &i.DiscountCents, &i.ShippingCostCents,
		&i.TotalCents, &i.BuyerName, &i.Email, &i.TaxID, &i.Phone, &i.ShippingStatus, &i.ShippingMethod,
		&i.Address, &i.City, &i.StateProvince, &i.PostalCode, &i.Country, &i.PaymentMethod, &i.PaymentDate,
		&i.PaymentTransactionID, &i.DiscountCoupon, &i.ProductName, &i.ProductPriceCents,
		&i.ProductQuantity, &i.SKU, &i.IsPhysicalProduct, &i.Channel, &i.SalesBranch, &i.Seller,
		&i.RegisteredBy, &i.BuyerNotes, &i.SellerNotes, &i.CreatedAt, &i.UpdatedAt,
	)
	return i, err
}

// --- suppliers ---

const supplierColumns = `id, business_unit_id, business_name, commercial_name, tax_id, contact_person, email,
phone, address, city, country, bank_name, bank_cbu_alias, is_active, notes, created_at`

const createSupplier = `INSERT INTO suppliers (business_unit_id, business_name, commercial_name, tax_id, contact_person,
email, phone, address, city, country, bank_name, bank_cbu_alias, is_active, notes, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + supplierColumns

func (q *Queries) CreateSupplier(ctx context.Context, arg Supplier) (Supplier, error) {
	row := q.db.QueryRowContext(ctx, createSupplier,
		arg.BusinessUnitID, arg.BusinessName, arg.CommercialName, arg.TaxID, arg.ContactPerson,
		arg.Email, arg.Phone, arg.Address, arg.City, arg.Country, arg.BankName, arg.BankCBUAlias,
		arg.IsActive, arg.Notes, arg.CreatedAt, arg.CreatedAt)
	return scanSupplier(row)
}

func scanSupplier(s scanner) (Supplier, error) {
	var sp Supplier
	err := s.Scan(&sp.ID, &sp.BusinessUnitID, &sp.BusinessName, &sp.CommercialName, &sp.TaxID,
		&sp.ContactPerson, &sp.Email, &sp.Phone, &sp.Address, &sp.City, &sp.Country,
		&sp.BankName, &sp.BankCBUAlias, &sp.IsActive, &sp.Notes, &sp.CreatedAt)
	return sp, err
}

// --- maintenance ---

const clearAll = `DELETE FROM incomes;
DELETE FROM expenses;
DELETE FROM suppliers;
DELETE FROM expense_types;
DELETE FROM business_units;
DELETE FROM customers;`

func (q *Queries) ClearAll(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, clearAll)
	return err
}
