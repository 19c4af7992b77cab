package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateMonthBounds(t *testing.T) {
	d := NewDate(2024, 2, 17)
	if got := d.MonthStart(); !got.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected month start %v", got)
	}
	if got := d.MonthEnd(); got.Day() != 29 {
		t.Fatalf("expected leap-year month end 29, got %d", got.Day())
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{Date: NewDate(2025, 1, 1), Amount: MustAmount("10")}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{Date: Date{}, Amount: MustAmount("1")},
		{Date: NewDate(2025, 1, 1), Amount: MustAmount("0")},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestExpenseTypeExceeded(t *testing.T) {
	limit := MustAmount("100")
	typed := ExpenseType{Code: "ALQ", Name: "Alquiler", Limit: &limit}
	if typed.Exceeded(MustAmount("100")) {
		t.Fatalf("spending equal to the limit must not exceed it")
	}
	if !typed.Exceeded(MustAmount("100.01")) {
		t.Fatalf("expected limit exceeded")
	}
	unlimited := ExpenseType{Code: "OTR", Name: "Otros"}
	if unlimited.Exceeded(MustAmount("1000000")) {
		t.Fatalf("type without limit is never exceeded")
	}
}

func TestExpenseTypeValidate(t *testing.T) {
	if err := (ExpenseType{Code: "ALQU", Name: "x"}).Validate(); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	neg := MoneyFromCents(-1)
	if err := (ExpenseType{Code: "A", Name: "x", Limit: &neg}).Validate(); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
}

func TestCustomerAndUnitValidate(t *testing.T) {
	if err := (Customer{Name: "Acme", Email: "ops@acme.test"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Customer{Name: "Acme", Email: "nope"}).Validate(); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if err := (BusinessUnit{Name: "Shop"}).Validate(); !errors.Is(err, ErrMissingCustomer) {
		t.Fatalf("expected ErrMissingCustomer, got %v", err)
	}
}

func TestIncomeComputeTotal(t *testing.T) {
	cases := []struct {
		name                         string
		subtotal, discount, shipping string
		want                         string
	}{
		{"plain", "100", "10", "5", "95"},
		{"discount capped at subtotal", "100", "150", "5", "5"},
		{"no shipping", "250.50", "0", "0", "250.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := Income{
				ProductSubtotal: MustAmount(tc.subtotal),
				Discount:        MustAmount(tc.discount),
				ShippingCost:    MustAmount(tc.shipping),
			}
			in.ComputeTotal()
			if !in.Total.Equal(MustAmount(tc.want).Decimal) {
				t.Fatalf("total = %s, want %s", in.Total, tc.want)
			}
		})
	}
}

func TestIncomeValidate(t *testing.T) {
	in := Income{OrderNumber: "A-1", Date: NewDate(2024, 5, 1)}
	in.ApplyDefaults()
	if err := in.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bad := in
	bad.PaymentStatus = "unknown"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("expected ErrInvalidChoice, got %v", err)
	}

	bad = in
	bad.OrderNumber = " "
	if err := bad.Validate(); !errors.Is(err, ErrEmptyOrderNumber) {
		t.Fatalf("expected ErrEmptyOrderNumber, got %v", err)
	}
}

func TestSupplierFullAddress(t *testing.T) {
	cases := []struct {
		s    Supplier
		want string
	}{
		{Supplier{Address: "Calle 1", City: "Rosario", Country: "AR"}, "Calle 1, Rosario, AR"},
		{Supplier{Address: "Calle 1", City: "Rosario"}, "Calle 1"},
		{Supplier{City: "Rosario", Country: "AR"}, "Rosario"},
		{Supplier{Country: "AR"}, "AR"},
		{Supplier{}, ""},
	}
	for i, tc := range cases {
		if got := tc.s.FullAddress(); got != tc.want {
			t.Fatalf("case %d: got %q want %q", i, got, tc.want)
		}
	}
}

func TestFilterEffectiveUnits(t *testing.T) {
	f := Filter{}
	if units, ok := f.EffectiveUnits(); !ok || units != nil {
		t.Fatalf("unscoped empty filter should be unrestricted")
	}

	f = Filter{BusinessUnits: []int64{1, 2}, Scope: []int64{2, 3}}
	units, ok := f.EffectiveUnits()
	if !ok || len(units) != 1 || units[0] != 2 {
		t.Fatalf("expected [2], got %v ok=%v", units, ok)
	}

	f = Filter{BusinessUnits: []int64{1}, Scope: []int64{3}}
	if _, ok := f.EffectiveUnits(); ok {
		t.Fatalf("disjoint request and scope must yield nothing")
	}

	f = Filter{Scope: []int64{}}
	if _, ok := f.EffectiveUnits(); ok {
		t.Fatalf("empty scope must yield nothing")
	}
}
