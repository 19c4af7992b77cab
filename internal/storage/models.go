package storage

import "database/sql"

// Row types mirror the tables one to one. Amounts are integer cents and
// dates are TEXT (YYYY-MM-DD); timestamps are RFC 3339 TEXT.

type Customer struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Address   string
	CreatedAt string
	UpdatedAt string
}

type BusinessUnit struct {
	ID           int64
	CustomerID   int64
	CustomerName string
	Name         string
	Description  string
	IsActive     bool
	CreatedAt    string
	UpdatedAt    string
}

type ExpenseType struct {
	ID         int64
	Code       string
	Name       string
	LimitCents sql.NullInt64
}

type Expense struct {
	ID             int64
	Date           string
	BusinessUnitID sql.NullInt64
	ExpenseTypeID  sql.NullInt64
	AmountCents    int64
	IsFixed        sql.NullBool
	Observations   string
	CreatedAt      string
}

type Income struct {
	ID                   int64
	BusinessUnitID       sql.NullInt64
	OrderNumber          string
	Date                 string
	BusinessType         string
	OrderStatus          string
	PaymentStatus        string
	Currency             string
	ProductSubtotalCents int64
	DiscountCents        int64
	ShippingCostCents    int64
	TotalCents           int64
	BuyerName            string
	Email                string
	TaxID                string
	Phone                string
	ShippingStatus       string
	ShippingMethod       string
	Address              string
	City                 string
	StateProvince        string
	PostalCode           string
	Country              string
	PaymentMethod        string
	PaymentDate          sql.NullString
	PaymentTransactionID string
	DiscountCoupon       string
	ProductName          string
	ProductPriceCents    int64
	ProductQuantity      int64
	SKU                  string
	IsPhysicalProduct    bool
	Channel              string
	SalesBranch          string
	Seller               string
	RegisteredBy         string
	BuyerNotes           string
	SellerNotes          string
	CreatedAt            string
	UpdatedAt            string
}

type Supplier struct {
	ID             int64
	BusinessUnitID sql.NullInt64
	BusinessName   string
	CommercialName string
	TaxID          string
	ContactPerson  string
	Email          string
	Phone          string
	Address        string
	City           string
	Country        string
	BankName       string
	BankCBUAlias   string
	IsActive       bool
	Notes          string
	CreatedAt      string
}
