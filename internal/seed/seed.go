// Package seed fills a database with realistic demo tenants, expenses and
// incomes. Runs are reproducible for a given Options.Seed.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"thot/internal/core"
	"thot/internal/log"
	"thot/internal/storage"
)

type Options struct {
	Customers        int
	UnitsPerCustomer int
	ExpenseTypes     int
	Expenses         int
	Incomes          int
	Start            core.Date
	End              core.Date
	ClearExisting    bool
	Seed             int64
}

// DefaultOptions mirrors the volumes of the demo data set: 8 customers with
// 3 units each, 15 expense types, 500 expenses and 1000 incomes over 2023-2024.
func DefaultOptions() Options {
	return Options{
		Customers:        8,
		UnitsPerCustomer: 3,
		ExpenseTypes:     15,
		Expenses:         500,
		Incomes:          1000,
		Start:            core.NewDate(2023, 1, 1),
		End:              core.NewDate(2024, 12, 31),
	}
}

func (o Options) Validate() error {
	var errs []error
	for name, n := range map[string]int{
		"customers": o.Customers, "expense types": o.ExpenseTypes,
		"expenses": o.Expenses, "incomes": o.Incomes,
	} {
		if n < 0 {
			errs = append(errs, fmt.Errorf("%s cannot be negative", name))
		}
	}
	if o.Customers > 0 && (o.UnitsPerCustomer < 1 || o.UnitsPerCustomer > len(unitNames)) {
		errs = append(errs, fmt.Errorf("units per customer must be between 1 and %d", len(unitNames)))
	}
	if o.ExpenseTypes > len(expenseCategories) {
		errs = append(errs, fmt.Errorf("at most %d expense types are available", len(expenseCategories)))
	}
	if o.Start.IsZero() || o.End.IsZero() {
		errs = append(errs, errors.New("start and end dates are required"))
	} else if o.End.Before(o.Start.Time) {
		errs = append(errs, errors.New("end date is before start date"))
	}
	if (o.Expenses > 0 || o.Incomes > 0) && o.Customers == 0 {
		errs = append(errs, errors.New("expenses and incomes need at least one customer"))
	}
	if o.Expenses > 0 && o.ExpenseTypes == 0 {
		errs = append(errs, errors.New("expenses need at least one expense type"))
	}
	return errors.Join(errs...)
}

// Summary counts what a run generated.
type Summary struct {
	Customers     int
	BusinessUnits int
	ExpenseTypes  int
	Expenses      int
	Incomes       int
	ExpenseTotal  core.Money
	IncomeTotal   core.Money
}

func (s Summary) String() string {
	return fmt.Sprintf("customers=%d business_units=%d expense_types=%d expenses=%d (%s) incomes=%d (%s)",
		s.Customers, s.BusinessUnits, s.ExpenseTypes,
		s.Expenses, s.ExpenseTotal.StringFixed(2),
		s.Incomes, s.IncomeTotal.StringFixed(2))
}

type Generator struct {
	repo   *storage.SQLiteRepository
	logger *log.Logger
	rng    *rand.Rand
}

func NewGenerator(repo *storage.SQLiteRepository, logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Generator{repo: repo, logger: logger.WithComponent(log.ComponentSeed)}
}

// Run generates the data set in a single transaction. With ClearExisting
// every record is deleted first. A zero Seed seeds from the clock.
func (g *Generator) Run(ctx context.Context, opts Options) (Summary, error) {
	if err := opts.Validate(); err != nil {
		return Summary{}, fmt.Errorf("invalid seed options: %w", err)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g.rng = rand.New(rand.NewSource(seed))

	var sum Summary
	err := g.repo.WithinTx(ctx, func(tx *storage.SQLiteRepository) error {
		if opts.ClearExisting {
			if err := tx.ClearAll(ctx); err != nil {
				return err
			}
		}
		units, err := g.tenants(ctx, tx, opts, &sum)
		if err != nil {
			return err
		}
		types, err := g.expenseTypes(ctx, tx, opts.ExpenseTypes, &sum)
		if err != nil {
			return err
		}
		if err := g.expenses(ctx, tx, units, types, opts, &sum); err != nil {
			return err
		}
		return g.incomes(ctx, tx, units, opts, &sum)
	})
	if err != nil {
		return Summary{}, err
	}

	g.logger.InfoContext(ctx, "Seed data generated",
		"customers", sum.Customers,
		"business_units", sum.BusinessUnits,
		"expense_types", sum.ExpenseTypes,
		"expenses", sum.Expenses,
		"incomes", sum.Incomes,
		"seed", seed)
	return sum, nil
}

// tenants creates customers and their units, returning the active units.
// The first unit of every customer is its head office and always active.
func (g *Generator) tenants(ctx context.Context, tx *storage.SQLiteRepository, opts Options, sum *Summary) ([]core.BusinessUnit, error) {
	var active []core.BusinessUnit
	usedNames := make(map[string]bool)

	for i := 0; i < opts.Customers; i++ {
		name := g.companyName(usedNames)
		c, err := tx.CreateCustomer(ctx, core.Customer{
			Name:    name,
			Email:   fmt.Sprintf("contacto%d@%s.example.com", i+1, slug(name)),
			Phone:   fmt.Sprintf("+54 11 %04d-%04d", g.rng.Intn(10000), g.rng.Intn(10000)),
			Address: fmt.Sprintf("%s %d, %s", pick(g.rng, streets), 100+g.rng.Intn(4900), pick(g.rng, cities)),
		})
		if err != nil {
			return nil, err
		}
		sum.Customers++

		names := append([]string{unitNames[0]}, shuffled(g.rng, unitNames[1:])...)
		for j := 0; j < opts.UnitsPerCustomer; j++ {
			u, err := tx.CreateBusinessUnit(ctx, core.BusinessUnit{
				CustomerID:  c.ID,
				Name:        names[j],
				Description: fmt.Sprintf("%s de %s", names[j], c.Name),
				IsActive:    j == 0 || g.rng.Intn(4) != 0,
			})
			if err != nil {
				return nil, err
			}
			sum.BusinessUnits++
			if u.IsActive {
				active = append(active, u)
			}
		}
	}
	return active, nil
}

// companyName picks an unused name, numbering repeats ("Grupo Andino 2").
func (g *Generator) companyName(used map[string]bool) string {
	base := pick(g.rng, companyPrefixes) + " " + pick(g.rng, companySuffixes)
	name := base
	for n := 2; used[name]; n++ {
		name = fmt.Sprintf("%s %d", base, n)
	}
	used[name] = true
	return name
}

func (g *Generator) expenseTypes(ctx context.Context, tx *storage.SQLiteRepository, count int, sum *Summary) ([]core.ExpenseType, error) {
	out := make([]core.ExpenseType, 0, count)
	for _, cat := range expenseCategories[:count] {
		limit := core.NewMoney(decimal.NewFromInt(cat.limit))
		t, err := tx.CreateExpenseType(ctx, core.ExpenseType{Code: cat.code, Name: cat.name, Limit: &limit})
		if err != nil {
			return nil, err
		}
		sum.ExpenseTypes++
		out = append(out, t)
	}
	return out, nil
}

// expenses books amounts between 10% and 150% of the type's monthly limit.
func (g *Generator) expenses(ctx context.Context, tx *storage.SQLiteRepository, units []core.BusinessUnit, types []core.ExpenseType, opts Options, sum *Summary) error {
	total := decimal.Zero
	for i := 0; i < opts.Expenses; i++ {
		unit := units[g.rng.Intn(len(units))]
		typ := types[g.rng.Intn(len(types))]

		base := decimal.NewFromInt(10000)
		if typ.Limit != nil {
			base = typ.Limit.Decimal
		}
		factor := decimal.NewFromFloat(0.1 + g.rng.Float64()*1.4)
		amount := decimal.Max(base.Mul(factor).Round(2), decimal.New(1, -2))

		e := core.Expense{
			Date:           g.date(opts.Start, opts.End),
			BusinessUnitID: &unit.ID,
			ExpenseTypeID:  &typ.ID,
			Amount:         core.NewMoney(amount),
			IsFixed:        pickFixed(g.rng),
		}
		if g.rng.Float64() > 0.7 {
			e.Observations = pick(g.rng, observations)
		}
		if _, err := tx.CreateExpense(ctx, e); err != nil {
			return err
		}
		sum.Expenses++
		total = total.Add(amount)
	}
	sum.ExpenseTotal = core.NewMoney(total)
	return nil
}

func (g *Generator) incomes(ctx context.Context, tx *storage.SQLiteRepository, units []core.BusinessUnit, opts Options, sum *Summary) error {
	total := decimal.Zero
	for i := 0; i < opts.Incomes; i++ {
		unit := units[g.rng.Intn(len(units))]
		p := products[g.rng.Intn(len(products))]
		date := g.date(opts.Start, opts.End)

		quantity := 1 + g.rng.Intn(5)
		price := decimal.NewFromInt(p.price)
		subtotal := price.Mul(decimal.NewFromInt(int64(quantity)))
		discount := subtotal.Mul(decimal.NewFromFloat(g.rng.Float64() * 0.3)).Round(2)
		shipping := decimal.Zero
		if g.rng.Float64() > 0.5 {
			shipping = decimal.NewFromFloat(g.rng.Float64() * 5000).Round(2)
		}

		in := core.Income{
			BusinessUnitID:    &unit.ID,
			OrderNumber:       fmt.Sprintf("ORD-%05d", 10000+g.rng.Intn(90000)),
			Date:              date,
			BusinessType:      pick(g.rng, []core.BusinessType{core.BusinessPhysical, core.BusinessEcommerce, core.BusinessMixed}),
			OrderStatus:       pick(g.rng, orderStatuses),
			PaymentStatus:     pick(g.rng, paymentStatuses),
			Currency:          pick(g.rng, []core.Currency{core.CurrencyARS, core.CurrencyUSD, core.CurrencyEUR}),
			ProductSubtotal:   core.NewMoney(subtotal),
			Discount:          core.NewMoney(discount),
			ShippingCost:      core.NewMoney(shipping),
			BuyerName:         pick(g.rng, firstNames) + " " + pick(g.rng, lastNames),
			TaxID:             fmt.Sprintf("%08d", 10000000+g.rng.Intn(90000000)),
			ShippingStatus:    pick(g.rng, shippingStatuses),
			ShippingMethod:    pick(g.rng, shippingMethods),
			PaymentMethod:     pick(g.rng, paymentMethods),
			ProductName:       p.name,
			ProductPrice:      core.NewMoney(price),
			ProductQuantity:   quantity,
			SKU:               p.sku,
			IsPhysicalProduct: g.rng.Intn(2) == 0,
			Channel:           pick(g.rng, channels),
			RegisteredBy:      pick(g.rng, []string{"Sistema", "Vendedor 1", "Vendedor 2", "Admin"}),
			Seller:            pick(g.rng, []string{"Vendedor 1", "Vendedor 2", "Vendedor 3", "Auto"}),
		}
		in.Email = strings.ToLower(fmt.Sprintf("%s.%d@example.com", slug(in.BuyerName), i+1))
		if in.PaymentStatus == core.PaymentPaid {
			paid := date
			in.PaymentDate = &paid
			id, err := uuid.NewRandomFromReader(g.rng)
			if err != nil {
				return fmt.Errorf("payment transaction id: %w", err)
			}
			in.PaymentTransactionID = id.String()
		}

		created, err := tx.CreateIncome(ctx, in)
		if err != nil {
			return err
		}
		sum.Incomes++
		total = total.Add(created.Total.Decimal)
	}
	sum.IncomeTotal = core.NewMoney(total)
	return nil
}

// date returns a uniformly random day in [start, end].
func (g *Generator) date(start, end core.Date) core.Date {
	days := int(end.Sub(start.Time).Hours() / 24)
	return core.Date{Time: start.AddDate(0, 0, g.rng.Intn(days+1))}
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.Intn(len(items))]
}

func shuffled(rng *rand.Rand, items []string) []string {
	out := append([]string(nil), items...)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func pickFixed(rng *rand.Rand) *bool {
	switch rng.Intn(3) {
	case 0:
		v := true
		return &v
	case 1:
		v := false
		return &v
	default:
		return nil
	}
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
