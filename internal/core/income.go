package core

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	BusinessType   string
	OrderStatus    string
	PaymentStatus  string
	ShippingStatus string
	PaymentMethod  string
	ShippingMethod string
	Currency       string
)

const (
	BusinessEcommerce BusinessType = "ecommerce"
	BusinessPhysical  BusinessType = "fisico"
	BusinessMixed     BusinessType = "mixto"
)

const (
	OrderOpen              OrderStatus = "abierta"
	OrderPending           OrderStatus = "pendiente"
	OrderProcessing        OrderStatus = "procesando"
	OrderCompleted         OrderStatus = "completada"
	OrderCancelled         OrderStatus = "cancelada"
	OrderRefunded          OrderStatus = "reembolsada"
	OrderOnHold            OrderStatus = "en_espera"
	OrderPartiallyRefunded OrderStatus = "parcialmente_reembolsada"
)

const (
	PaymentPending       PaymentStatus = "pendiente"
	PaymentPaid          PaymentStatus = "pagado"
	PaymentPartiallyPaid PaymentStatus = "parcialmente_pagado"
	PaymentRefunded      PaymentStatus = "reembolsado"
	PaymentFailed        PaymentStatus = "fallido"
	PaymentCancelled     PaymentStatus = "cancelado"
)

const (
	ShippingNotPackaged ShippingStatus = "no_empaquetado"
	ShippingPackaged    ShippingStatus = "empaquetado"
	ShippingShipped     ShippingStatus = "enviado"
	ShippingDelivered   ShippingStatus = "entregado"
	ShippingReturned    ShippingStatus = "devuelto"
	ShippingNotRequired ShippingStatus = "no_requiere"
)

const (
	MethodCash         PaymentMethod = "efectivo"
	MethodCreditCard   PaymentMethod = "tarjeta_credito"
	MethodDebitCard    PaymentMethod = "tarjeta_debito"
	MethodBankTransfer PaymentMethod = "transferencia"
	MethodMercadoPago  PaymentMethod = "mercado_pago"
	MethodPayPal       PaymentMethod = "paypal"
	MethodOther        PaymentMethod = "otro"
)

const (
	ShipPickup      ShippingMethod = "retiro"
	ShipDelivery    ShippingMethod = "envio"
	ShipExpress     ShippingMethod = "express"
	ShipStandard    ShippingMethod = "estandar"
	ShipNotRequired ShippingMethod = "no_requiere"
)

const (
	CurrencyARS Currency = "ARS"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyBRL Currency = "BRL"
	CurrencyCLP Currency = "CLP"
	CurrencyUYU Currency = "UYU"
	CurrencyPEN Currency = "PEN"
	CurrencyCOP Currency = "COP"
	CurrencyMXN Currency = "MXN"
)

var (
	businessTypes   = []BusinessType{BusinessEcommerce, BusinessPhysical, BusinessMixed}
	orderStatuses   = []OrderStatus{OrderOpen, OrderPending, OrderProcessing, OrderCompleted, OrderCancelled, OrderRefunded, OrderOnHold, OrderPartiallyRefunded}
	paymentStatuses = []PaymentStatus{PaymentPending, PaymentPaid, PaymentPartiallyPaid, PaymentRefunded, PaymentFailed, PaymentCancelled}
	shippingStatus  = []ShippingStatus{ShippingNotPackaged, ShippingPackaged, ShippingShipped, ShippingDelivered, ShippingReturned, ShippingNotRequired}
	paymentMethods  = []PaymentMethod{MethodCash, MethodCreditCard, MethodDebitCard, MethodBankTransfer, MethodMercadoPago, MethodPayPal, MethodOther}
	shippingMethods = []ShippingMethod{ShipPickup, ShipDelivery, ShipExpress, ShipStandard, ShipNotRequired}
	currencies      = []Currency{CurrencyARS, CurrencyUSD, CurrencyEUR, CurrencyBRL, CurrencyCLP, CurrencyUYU, CurrencyPEN, CurrencyCOP, CurrencyMXN}
)

func oneOf[T ~string](v T, allowed []T) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// Income is a sale recorded by a business unit.
type Income struct {
	ID             int64
	BusinessUnitID *int64
	OrderNumber    string
	Date           Date
	BusinessType   BusinessType
	OrderStatus    OrderStatus
	PaymentStatus  PaymentStatus
	Currency       Currency

	ProductSubtotal Money
	Discount        Money
	ShippingCost    Money
	Total           Money

	BuyerName string
	Email     string
	TaxID     string
	Phone     string

	ShippingStatus ShippingStatus
	ShippingMethod ShippingMethod
	Address        string
	City           string
	StateProvince  string
	PostalCode     string
	Country        string

	PaymentMethod        PaymentMethod
	PaymentDate          *Date
	PaymentTransactionID string
	DiscountCoupon       string

	ProductName       string
	ProductPrice      Money
	ProductQuantity   int
	SKU               string
	IsPhysicalProduct bool

	Channel      string
	SalesBranch  string
	Seller       string
	RegisteredBy string
	BuyerNotes   string
	SellerNotes  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApplyDefaults fills the choice fields left empty by the caller.
func (i *Income) ApplyDefaults() {
	if i.BusinessType == "" {
		i.BusinessType = BusinessPhysical
	}
	if i.OrderStatus == "" {
		i.OrderStatus = OrderOpen
	}
	if i.PaymentStatus == "" {
		i.PaymentStatus = PaymentPending
	}
	if i.Currency == "" {
		i.Currency = CurrencyARS
	}
	if i.ShippingStatus == "" {
		i.ShippingStatus = ShippingNotRequired
	}
	if i.ShippingMethod == "" {
		i.ShippingMethod = ShipNotRequired
	}
	if i.PaymentMethod == "" {
		i.PaymentMethod = MethodCash
	}
	if i.ProductQuantity == 0 {
		i.ProductQuantity = 1
	}
}

// ComputeTotal derives Total from subtotal, discount and shipping.
// The discount never exceeds the subtotal and the total is never negative.
func (i *Income) ComputeTotal() {
	subtotal := i.ProductSubtotal.Decimal
	discount := decimal.Min(i.Discount.Decimal, subtotal)
	total := subtotal.Sub(discount).Add(i.ShippingCost.Decimal)
	i.Total = Money{Decimal: decimal.Max(total, decimal.Zero)}
}

func (i Income) Validate() error {
	if strings.TrimSpace(i.OrderNumber) == "" {
		return ErrEmptyOrderNumber
	}
	if len(i.OrderNumber) > 30 {
		return fmt.Errorf("order number too long (max 30 characters)")
	}
	if err := i.Date.Validate(); err != nil {
		return err
	}
	for _, m := range []Money{i.ProductSubtotal, i.Discount, i.ShippingCost, i.ProductPrice} {
		if m.IsNegative() {
			return ErrNegativeAmount
		}
	}
	if i.ProductQuantity < 0 {
		return fmt.Errorf("product quantity cannot be negative")
	}
	if !oneOf(i.BusinessType, businessTypes) {
		return fmt.Errorf("%w: business type %q", ErrInvalidChoice, i.BusinessType)
	}
	if !oneOf(i.OrderStatus, orderStatuses) {
		return fmt.Errorf("%w: order status %q", ErrInvalidChoice, i.OrderStatus)
	}
	if !oneOf(i.PaymentStatus, paymentStatuses) {
		return fmt.Errorf("%w: payment status %q", ErrInvalidChoice, i.PaymentStatus)
	}
	if !oneOf(i.Currency, currencies) {
		return fmt.Errorf("%w: currency %q", ErrInvalidChoice, i.Currency)
	}
	if !oneOf(i.ShippingStatus, shippingStatus) {
		return fmt.Errorf("%w: shipping status %q", ErrInvalidChoice, i.ShippingStatus)
	}
	if !oneOf(i.ShippingMethod, shippingMethods) {
		return fmt.Errorf("%w: shipping method %q", ErrInvalidChoice, i.ShippingMethod)
	}
	if !oneOf(i.PaymentMethod, paymentMethods) {
		return fmt.Errorf("%w: payment method %q", ErrInvalidChoice, i.PaymentMethod)
	}
	return nil
}

// Supplier is a vendor a business unit buys from.
type Supplier struct {
	ID             int64
	BusinessUnitID *int64
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
	CreatedAt      time.Time
}

func (s Supplier) Validate() error {
	if strings.TrimSpace(s.BusinessName) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(s.TaxID) == "" {
		return ErrEmptyTaxID
	}
	if len(s.TaxID) > 20 {
		return fmt.Errorf("tax id too long (max 20 characters)")
	}
	if s.Email != "" {
		if _, err := mail.ParseAddress(s.Email); err != nil {
			return ErrInvalidEmail
		}
	}
	return nil
}

// FullAddress joins address, city and country. When any of the three is
// missing only the first present one is returned.
func (s Supplier) FullAddress() string {
	switch {
	case s.Address != "" && s.City != "" && s.Country != "":
		return s.Address + ", " + s.City + ", " + s.Country
	case s.Address != "":
		return s.Address
	case s.City != "":
		return s.City
	default:
		return s.Country
	}
}
