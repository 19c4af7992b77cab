package storage

import (
	"database/sql"
	"fmt"
	"time"

	"thot/internal/core"
)

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}

// parseStamp reads an RFC 3339 timestamp; malformed values become zero time.
func parseStamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseDay(s string) (core.Date, error) {
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse stored date %q: %w", s, err)
	}
	return d, nil
}

func customerFromRow(row Customer) core.Customer {
	return core.Customer{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Phone:     row.Phone,
		Address:   row.Address,
		CreatedAt: parseStamp(row.CreatedAt),
		UpdatedAt: parseStamp(row.UpdatedAt),
	}
}

func businessUnitFromRow(row BusinessUnit) core.BusinessUnit {
	return core.BusinessUnit{
		ID:           row.ID,
		CustomerID:   row.CustomerID,
		CustomerName: row.CustomerName,
		Name:         row.Name,
		Description:  row.Description,
		IsActive:     row.IsActive,
		CreatedAt:    parseStamp(row.CreatedAt),
		UpdatedAt:    parseStamp(row.UpdatedAt),
	}
}

func expenseTypeFromRow(row ExpenseType) core.ExpenseType {
	t := core.ExpenseType{ID: row.ID, Code: row.Code, Name: row.Name}
	if row.LimitCents.Valid {
		limit := core.MoneyFromCents(row.LimitCents.Int64)
		t.Limit = &limit
	}
	return t
}

func expenseFromRow(row Expense) (core.Expense, error) {
	date, err := parseDay(row.Date)
	if err != nil {
		return core.Expense{}, err
	}
	e := core.Expense{
		ID:             row.ID,
		Date:           date,
		BusinessUnitID: intPtr(row.BusinessUnitID),
		ExpenseTypeID:  intPtr(row.ExpenseTypeID),
		Amount:         core.MoneyFromCents(row.AmountCents),
		Observations:   row.Observations,
		CreatedAt:      parseStamp(row.CreatedAt),
	}
	if row.IsFixed.Valid {
		fixed := row.IsFixed.Bool
		e.IsFixed = &fixed
	}
	return e, nil
}

func incomeToRow(in core.Income) Income {
	row := Income{
		BusinessUnitID:       nullInt(in.BusinessUnitID),
		OrderNumber:          in.OrderNumber,
		Date:                 in.Date.String(),
		BusinessType:         string(in.BusinessType),
		OrderStatus:          string(in.OrderStatus),
		PaymentStatus:        string(in.PaymentStatus),
		Currency:             string(in.Currency),
		ProductSubtotalCents: in.ProductSubtotal.Cents(),
		DiscountCents:        in.Discount.Cents(),
		ShippingCostCents:    in.ShippingCost.Cents(),
		TotalCents:           in.Total.Cents(),
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
		ProductPriceCents:    in.ProductPrice.Cents(),
		ProductQuantity:      int64(in.ProductQuantity),
		SKU:                  in.SKU,
		IsPhysicalProduct:    in.IsPhysicalProduct,
		Channel:              in.Channel,
		SalesBranch:          in.SalesBranch,
		Seller:               in.Seller,
		RegisteredBy:         in.RegisteredBy,
		BuyerNotes:           in.BuyerNotes,
		SellerNotes:          in.SellerNotes,
	}
	if in.PaymentDate != nil {
		row.PaymentDate = sql.NullString{String: in.PaymentDate.String(), Valid: true}
	}
	return row
}

func incomeFromRow(row Income) (core.Income, error) {
	date, err := parseDay(row.Date)
	if err != nil {
		return core.Income{}, err
	}
	in := core.Income{
		ID:                   row.ID,
		BusinessUnitID:       intPtr(row.BusinessUnitID),
		OrderNumber:          row.OrderNumber,
		Date:                 date,
		BusinessType:         core.BusinessType(row.BusinessType),
		OrderStatus:          core.OrderStatus(row.OrderStatus),
		PaymentStatus:        core.PaymentStatus(row.PaymentStatus),
		Currency:             core.Currency(row.Currency),
		ProductSubtotal:      core.MoneyFromCents(row.ProductSubtotalCents),
		Discount:             core.MoneyFromCents(row.DiscountCents),
		ShippingCost:         core.MoneyFromCents(row.ShippingCostCents),
		Total:                core.MoneyFromCents(row.TotalCents),
		BuyerName:            row.BuyerName,
		Email:                row.Email,
		TaxID:                row.TaxID,
		Phone:                row.Phone,
		ShippingStatus:       core.ShippingStatus(row.ShippingStatus),
		ShippingMethod:       core.ShippingMethod(row.ShippingMethod),
		Address:              row.Address,
		City:                 row.City,
		StateProvince:        row.StateProvince,
		PostalCode:           row.PostalCode,
		Country:              row.Country,
		PaymentMethod:        core.PaymentMethod(row.PaymentMethod),
		PaymentTransactionID: row.PaymentTransactionID,
		DiscountCoupon:       row.DiscountCoupon,
		ProductName:          row.ProductName,
		ProductPrice:         core.MoneyFromCents(row.ProductPriceCents),
		ProductQuantity:      int(row.ProductQuantity),
		SKU:                  row.SKU,
		IsPhysicalProduct:    row.IsPhysicalProduct,
		Channel:              row.Channel,
		SalesBranch:          row.SalesBranch,
		Seller:               row.Seller,
		RegisteredBy:         row.RegisteredBy,
		BuyerNotes:           row.BuyerNotes,
		SellerNotes:          row.SellerNotes,
		CreatedAt:            parseStamp(row.CreatedAt),
		UpdatedAt:            parseStamp(row.UpdatedAt),
	}
	if row.PaymentDate.Valid {
		pd, err := parseDay(row.PaymentDate.String)
		if err != nil {
			return core.Income{}, err
		}
		in.PaymentDate = &pd
	}
	return in, nil
}

func supplierFromRow(row Supplier) core.Supplier {
	return core.Supplier{
		ID:             row.ID,
		BusinessUnitID: intPtr(row.BusinessUnitID),
		BusinessName:   row.BusinessName,
		CommercialName: row.CommercialName,
		TaxID:          row.TaxID,
		ContactPerson:  row.ContactPerson,
		Email:          row.Email,
		Phone:          row.Phone,
		Address:        row.Address,
		City:           row.City,
		Country:        row.Country,
		BankName:       row.BankName,
		BankCBUAlias:   row.BankCBUAlias,
		IsActive:       row.IsActive,
		Notes:          row.Notes,
		CreatedAt:      parseStamp(row.CreatedAt),
	}
}
