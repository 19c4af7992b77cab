package http

import (
	"time"

	"thot/internal/core"
)

// Amounts are encoded as fixed two-decimal strings and dates as YYYY-MM-DD.

type customerJSON struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type businessUnitJSON struct {
	ID           int64  `json:"id"`
	CustomerID   int64  `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	Name         string `json:"name"`
	Label        string `json:"label"`
	Description  string `json:"description,omitempty"`
	IsActive     bool   `json:"is_active"`
}

type expenseTypeJSON struct {
	ID           int64   `json:"id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	MonthlyLimit *string `json:"monthly_limit"`
}

type expenseJSON struct {
	ID             int64     `json:"id"`
	Date           string    `json:"date"`
	BusinessUnitID *int64    `json:"business_unit_id"`
	ExpenseTypeID  *int64    `json:"expense_type_id"`
	Amount         string    `json:"amount"`
	IsFixed        *bool     `json:"is_fixed"`
	Observations   string    `json:"observations,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type incomeJSON struct {
	ID                   int64     `json:"id"`
	BusinessUnitID       *int64    `json:"business_unit_id"`
	OrderNumber          string    `json:"order_number"`
	Date                 string    `json:"date"`
	BusinessType         string    `json:"business_type"`
	OrderStatus          string    `json:"order_status"`
	PaymentStatus        string    `json:"payment_status"`
	Currency             string    `json:"currency"`
	ProductSubtotal      string    `json:"product_subtotal"`
	Discount             string    `json:"discount"`
	ShippingCost         string    `json:"shipping_cost"`
	Total                string    `json:"total"`
	BuyerName            string    `json:"buyer_name,omitempty"`
	Email                string    `json:"email,omitempty"`
	TaxID                string    `json:"tax_id,omitempty"`
	Phone                string    `json:"phone,omitempty"`
	ShippingStatus       string    `json:"shipping_status"`
	ShippingMethod       string    `json:"shipping_method"`
	Address              string    `json:"address,omitempty"`
	City                 string    `json:"city,omitempty"`
	StateProvince        string    `json:"state_province,omitempty"`
	PostalCode           string    `json:"postal_code,omitempty"`
	Country              string    `json:"country,omitempty"`
	PaymentMethod        string    `json:"payment_method"`
	PaymentDate          *string   `json:"payment_date"`
	PaymentTransactionID string    `json:"payment_transaction_id,omitempty"`
	DiscountCoupon       string    `json:"discount_coupon,omitempty"`
	ProductName          string    `json:"product_name,omitempty"`
	ProductPrice         string    `json:"product_price"`
	ProductQuantity      int       `json:"product_quantity"`
	SKU                  string    `json:"sku,omitempty"`
	IsPhysicalProduct    bool      `json:"is_physical_product"`
	Channel              string    `json:"channel,omitempty"`
	SalesBranch          string    `json:"sales_branch,omitempty"`
	Seller               string    `json:"seller,omitempty"`
	RegisteredBy         string    `json:"registered_by,omitempty"`
	BuyerNotes           string    `json:"buyer_notes,omitempty"`
	SellerNotes          string    `json:"seller_notes,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

type supplierJSON struct {
	ID             int64  `json:"id"`
	BusinessUnitID *int64 `json:"business_unit_id"`
	BusinessName   string `json:"business_name"`
	CommercialName string `json:"commercial_name,omitempty"`
	TaxID          string `json:"tax_id"`
	ContactPerson  string `json:"contact_person,omitempty"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	FullAddress    string `json:"full_address,omitempty"`
	BankName       string `json:"bank_name,omitempty"`
	BankCBUAlias   string `json:"bank_cbu_alias,omitempty"`
	IsActive       bool   `json:"is_active"`
	Notes          string `json:"notes,omitempty"`
}

func money(m core.Money) string {
	return m.StringFixed(2)
}

func toCustomerJSON(c core.Customer) customerJSON {
	return customerJSON{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
	}
}

func toBusinessUnitJSON(b core.BusinessUnit) businessUnitJSON {
	return businessUnitJSON{
		ID:           b.ID,
		CustomerID:   b.CustomerID,
		CustomerName: b.CustomerName,
		Name:         b.Name,
		Label:        b.String(),
		Description:  b.Description,
		IsActive:     b.IsActive,
	}
}

func toExpenseTypeJSON(t core.ExpenseType) expenseTypeJSON {
	out := expenseTypeJSON{ID: t.ID, Code: t.Code, Name: t.Name}
	if t.Limit != nil {
		limit := money(*t.Limit)
		out.MonthlyLimit = &limit
	}
	return out
}

func toExpenseJSON(e core.Expense) expenseJSON {
	return expenseJSON{
		ID:             e.ID,
		Date:           e.Date.String(),
		BusinessUnitID: e.BusinessUnitID,
		ExpenseTypeID:  e.ExpenseTypeID,
		Amount:         money(e.Amount),
		IsFixed:        e.IsFixed,
		Observations:   e.Observations,
		CreatedAt:      e.CreatedAt,
	}
}

func toIncomeJSON(in core.Income) incomeJSON {
	out := incomeJSON{
		ID:                   in.ID,
		BusinessUnitID:       in.BusinessUnitID,
		OrderNumber:          in.OrderNumber,
		Date:                 in.Date.String(),
		BusinessType:         string(in.BusinessType),
		OrderStatus:          string(in.OrderStatus),
		PaymentStatus:        string(in.PaymentStatus),
		Currency:             string(in.Currency),
		ProductSubtotal:      money(in.ProductSubtotal),
		Discount:             money(in.Discount),
		ShippingCost:         money(in.ShippingCost),
		Total:                money(in.Total),
		BuyerName:            in.BuyerName,
		Email:                in.Email,
		TaxID:                in.TaxID,
		Phone:                in.Phone,
		ShippingStatus:       string(in.ShippingStatus),
		ShippingMethod:       string(in.ShippingMethod),
		Address:              in.Address,
		City:                 in.City,
		StateProvince:        in.StateProvince,
		PostalCode:           in.PostalCode,
		Country:              in.Country,
		PaymentMethod:        string(in.PaymentMethod),
		PaymentTransactionID: in.PaymentTransactionID,
		DiscountCoupon:       in.DiscountCoupon,
		ProductName:          in.ProductName,
		ProductPrice:         money(in.ProductPrice),
		ProductQuantity:      in.ProductQuantity,
		SKU:                  in.SKU,
		IsPhysicalProduct:    in.IsPhysicalProduct,
		Channel:              in.Channel,
		SalesBranch:          in.SalesBranch,
		Seller:               in.Seller,
		RegisteredBy:         in.RegisteredBy,
		BuyerNotes:           in.BuyerNotes,
		SellerNotes:          in.SellerNotes,
		CreatedAt:            in.CreatedAt,
	}
	if in.PaymentDate != nil {
		d := in.PaymentDate.String()
		out.PaymentDate = &d
	}
	return out
}

func toSupplierJSON(s core.Supplier) supplierJSON {
	return supplierJSON{
		ID:             s.ID,
		BusinessUnitID: s.BusinessUnitID,
		BusinessName:   s.BusinessName,
		CommercialName: s.CommercialName,
		TaxID:          s.TaxID,
		ContactPerson:  s.ContactPerson,
		Email:          s.Email,
		Phone:          s.Phone,
		FullAddress:    s.FullAddress(),
		BankName:       s.BankName,
		BankCBUAlias:   s.BankCBUAlias,
		IsActive:       s.IsActive,
		Notes:          s.Notes,
	}
}

func mapJSON[T, J any](in []T, conv func(T) J) []J {
	out := make([]J, len(in))
	for i, v := range in {
		out[i] = conv(v)
	}
	return out
}

// --- request bodies ---

func customerFromBody(p *RequestBodyParser) core.Customer {
	return core.Customer{
		Name:    p.Get("name"),
		Email:   p.Get("email"),
		Phone:   p.Get("phone"),
		Address: p.Get("address"),
	}
}

func businessUnitFromBody(p *RequestBodyParser) (core.BusinessUnit, error) {
	b := core.BusinessUnit{
		Name:        p.Get("name"),
		Description: p.Get("description"),
	}
	customer, err := p.OptionalID("customer_id")
	if err != nil {
		return b, err
	}
	if customer != nil {
		b.CustomerID = *customer
	}
	b.IsActive, err = p.Bool("is_active", true)
	return b, err
}

func expenseTypeFromBody(p *RequestBodyParser) (core.ExpenseType, error) {
	t := core.ExpenseType{
		Code: p.Get("code"),
		Name: p.Get("name"),
	}
	limit, err := p.OptionalAmount("monthly_limit")
	t.Limit = limit
	return t, err
}

func expenseFromBody(p *RequestBodyParser) (core.Expense, error) {
	var (
		e   core.Expense
		err error
	)
	if e.Date, err = p.Date("date"); err != nil {
		return e, err
	}
	if e.BusinessUnitID, err = p.OptionalID("business_unit_id"); err != nil {
		return e, err
	}
	if e.ExpenseTypeID, err = p.OptionalID("expense_type_id"); err != nil {
		return e, err
	}
	if e.Amount, err = p.Amount("amount"); err != nil {
		return e, err
	}
	if e.IsFixed, err = p.OptionalBool("is_fixed"); err != nil {
		return e, err
	}
	e.Observations = p.Get("observations")
	return e, nil
}

func incomeFromBody(p *RequestBodyParser) (core.Income, error) {
	in := core.Income{
		OrderNumber:          p.Get("order_number"),
		BusinessType:         core.BusinessType(p.Get("business_type")),
		OrderStatus:          core.OrderStatus(p.Get("order_status")),
		PaymentStatus:        core.PaymentStatus(p.Get("payment_status")),
		Currency:             core.Currency(p.Get("currency")),
		BuyerName:            p.Get("buyer_name"),
		Email:                p.Get("email"),
		TaxID:                p.Get("tax_id"),
		Phone:                p.Get("phone"),
		ShippingStatus:       core.ShippingStatus(p.Get("shipping_status")),
		ShippingMethod:       core.ShippingMethod(p.Get("shipping_method")),
		Address:              p.Get("address"),
		City:                 p.Get("city"),
		StateProvince:        p.Get("state_province"),
		PostalCode:           p.Get("postal_code"),
		Country:              p.Get("country"),
		PaymentMethod:        core.PaymentMethod(p.Get("payment_method")),
		PaymentTransactionID: p.Get("payment_transaction_id"),
		DiscountCoupon:       p.Get("discount_coupon"),
		ProductName:          p.Get("product_name"),
		SKU:                  p.Get("sku"),
		Channel:              p.Get("channel"),
		SalesBranch:          p.Get("sales_branch"),
		Seller:               p.Get("seller"),
		RegisteredBy:         p.Get("registered_by"),
		BuyerNotes:           p.Get("buyer_notes"),
		SellerNotes:          p.Get("seller_notes"),
	}

	var err error
	if in.BusinessUnitID, err = p.OptionalID("business_unit_id"); err != nil {
		return in, err
	}
	if in.Date, err = p.Date("date"); err != nil {
		return in, err
	}
	for _, f := range []struct {
		key string
		dst *core.Money
	}{
		{"product_subtotal", &in.ProductSubtotal},
		{"discount", &in.Discount},
		{"shipping_cost", &in.ShippingCost},
		{"product_price", &in.ProductPrice},
	} {
		if *f.dst, err = p.Amount(f.key); err != nil {
			return in, err
		}
	}
	if p.Get("payment_date") != "" {
		d, err := p.Date("payment_date")
		if err != nil {
			return in, err
		}
		in.PaymentDate = &d
	}
	if in.ProductQuantity, err = p.Int("product_quantity", 1); err != nil {
		return in, err
	}
	if in.IsPhysicalProduct, err = p.Bool("is_physical_product", true); err != nil {
		return in, err
	}
	return in, nil
}

func supplierFromBody(p *RequestBodyParser) (core.Supplier, error) {
	s := core.Supplier{
		BusinessName:   p.Get("business_name"),
		CommercialName: p.Get("commercial_name"),
		TaxID:          p.Get("tax_id"),
		ContactPerson:  p.Get("contact_person"),
		Email:          p.Get("email"),
		Phone:          p.Get("phone"),
		Address:        p.Get("address"),
		City:           p.Get("city"),
		Country:        p.Get("country"),
		BankName:       p.Get("bank_name"),
		BankCBUAlias:   p.Get("bank_cbu_alias"),
		Notes:          p.Get("notes"),
	}
	var err error
	if s.BusinessUnitID, err = p.OptionalID("business_unit_id"); err != nil {
		return s, err
	}
	s.IsActive, err = p.Bool("is_active", true)
	return s, err
}
