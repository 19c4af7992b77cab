package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"thot/internal/core"
	"thot/internal/log"
	"thot/internal/services"
	"thot/internal/storage"
)

// scope parses the tenant scope header, writing a 400 on failure.
func scope(w http.ResponseWriter, r *http.Request) ([]int64, bool) {
	ids, err := ParseScope(r.Header)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return nil, false
	}
	return ids, true
}

// parseBody reads the request body, writing a 400 when it is malformed.
func parseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("malformed request body").Write(w)
		return nil, false
	}
	return p, true
}

func pathID(r *http.Request) (int64, error) {
	return parseID(mux.Vars(r)["id"])
}

// listLimit reads ?limit, defaulting to defaultListLimit and capped at
// maxListLimit.
func listLimit(r *http.Request) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return defaultListLimit, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, &FieldError{Field: "limit", Reason: "expected a positive integer"}
	}
	return min(n, maxListLimit), nil
}

// unscoped rejects writes to tenant-wide records from scoped callers.
func (s *Server) unscoped(w http.ResponseWriter, r *http.Request, ids []int64) bool {
	if ids == nil {
		return true
	}
	s.metrics.scopeViolations.Add(1)
	ForbiddenError("scoped callers cannot modify " + r.URL.Path).Write(w)
	return false
}

// allowUnit rejects writes for a unit outside the caller's scope.
func (s *Server) allowUnit(w http.ResponseWriter, ids []int64, unit *int64) bool {
	if inScope(ids, unit) {
		return true
	}
	s.metrics.scopeViolations.Add(1)
	ForbiddenError("business unit outside the caller's scope").Write(w)
	return false
}

// created writes a 201. location is set only for records readable by id.
func created(w http.ResponseWriter, location string, body interface{}) {
	b := NewJSONResponse().Status(http.StatusCreated).Body(body)
	if location != "" {
		b.Header("Location", location)
	}
	b.Write(w)
}

// --- customers ---

// handleListCustomers lists customers. Scoped callers only see customers
// owning at least one unit in their scope.
func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	ids, ok := scope(w, r)
	if !ok {
		return
	}
	customers, err := s.store.ListCustomers(r.Context())
	if err != nil {
		s.respondError(w, r, log.OpList, err)
		return
	}

	if ids != nil {
		units, err := s.store.ListBusinessUnits(r.Context(), nil, false)
		if err != nil {
			s.respondError(w, r, log.OpList, err)
			return
		}
		owners := make(map[int64]bool)
		for _, u := range units {
			if inScope(ids, &u.ID) {
				owners[u.CustomerID] = true
			}
		}
		visible := customers[:0]
		for _, c := range customers {
			if owners[c.ID] {
				visible = append(visible, c)
			}
		}
		customers = visible
	}

	NewJSONResponse().Body(mapJSON(customers, toCustomerJSON)).Write(w)
}

func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	ids, ok := scope(w, r)
	if !ok || !s.unscoped(w, r, ids) {
		return
	}
	p, ok := parseBody(w, r)
	if !ok {
		return
	}

	c := customerFromBody(p)
	if err := c.Validate(); err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	c, err := s.store.CreateCustomer(r.Context(), c)
	if err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	requestLog(r).LogRecordCreated(r.Context(), "customer", c.ID, nil)
	created(w, "", toCustomerJSON(c))
}

// --- business units ---

// handleListBusinessUnits lists units, optionally for ?customer_id and only
// active ones with ?active=true.
func (s *Server) handleListBusinessUnits(w http.ResponseWriter, r *http.Request) {
	ids, ok := scope(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	var customerID *int64
	if v := q.Get("customer_id"); v != "" {
		id, err := parseID(v)
		if err != nil {
			BadRequestError("customer_id: " + err.Error()).Write(w)
			return
		}
		customerID = &id
	}
	activeOnly, _ := strconv.ParseBool(q.Get("active"))

	units, err := s.store.ListBusinessUnits(r.Context(), customerID, activeOnly)
	if err != nil {
		s.respondError(w, r, log.OpList, err)
		return
	}
	visible := units[:0]
	for _, u := range units {
		if inScope(ids, &u.ID) {
			visible = append(visible, u)
		}
	}
	NewJSONResponse().Body(mapJSON(visible, toBusinessUnitJSON)).Write(w)
}

func (s *Server) handleCreateBusinessUnit(w http.ResponseWriter, r *http.Request) {
	ids, ok := scope(w, r)
	if !ok || !s.unscoped(w, r, ids) {
		return
	}
	p, ok := parseBody(w, r)
	if !ok {
		return
	}

	b, err := businessUnitFromBody(p)
	if err == nil {
		err = b.Validate()
	}
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	if _, err := s.store.GetCustomer(r.Context(), b.CustomerID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = fmt.Errorf("%w: customer %d", services.ErrUnknownReference, b.CustomerID)
		}
		s.respondError(w, r, log.OpCreate, err)
		return
	}

	b, err = s.store.CreateBusinessUnit(r.Context(), b)
	if err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	requestLog(r).LogRecordCreated(r.Context(), "business_unit", b.ID, nil)
	created(w, "", toBusinessUnitJSON(b))
}

// --- expense types ---

// Expense types are shared by every tenant.
func (s *Server) handleListExpenseTypes(w http.ResponseWriter, r *http.Request) {
	if _, ok := scope(w, r); !ok {
		return
	}
	types, err := s.store.ListExpenseTypes(r.Context())
	if err != nil {
		s.respondError(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().Body(mapJSON(types, toExpenseTypeJSON)).Write(w)
}

func (s *Server) handleCreateExpenseType(w http.ResponseWriter, r *http.Request) {
	ids, ok := scope(w, r)
	if !ok || !s.unscoped(w, r, ids) {
		return
	}
	p, ok := parseBody(w, r)
	if !ok {
		return
	}

	t, err := expenseTypeFromBody(p)
	if err == nil {
		err = t.Validate()
	}
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	t, err = s.store.CreateExpenseType(r.Context(), t)
	if err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	requestLog(r).LogRecordCreated(r.Context(), "expense_type", t.ID, nil)
	created(w, "", toExpenseTypeJSON(t))
}

// --- expenses ---

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	f, limit, ok := s.listFilter(w, r)
	if !ok {
		return
	}
	expenses, err := s.store.ListExpenses(r.Context(), f, limit)
	if err != nil {
		s.respondError(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().Body(mapJSON(expenses, toExpenseJSON)).Write(w)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	ids, ok := scope(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	e, err := s.store.GetExpense(r.Context(), id)
	if err == nil && !inScope(ids, e.BusinessUnitID) {
		err = fmt.Errorf("expense %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Body(toExpenseJSON(e)).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	ids, ok := scope(w, r)
	if !ok {
		return
	}
	p, ok := parseBody(w, r)
	if !ok {
		return
	}

	e, err := expenseFromBody(p)
	if err == nil {
		err = e.Validate()
	}
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	if !s.allowUnit(w, ids, e.BusinessUnitID) {
		return
	}

	e, err = s.recorder.RecordExpense(r.Context(), e)
	if err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	requestLog(r).LogRecordCreated(r.Context(), "expense", e.ID,
		log.NewFields().WithExpense(e.BusinessUnitID, e.ExpenseTypeID, e.Amount.Cents(), e.Date.String()))
	created(w, fmt.Sprintf("/api/expenses/%d", e.ID), toExpenseJSON(e))
}

// --- incomes ---

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	f, limit, ok := s.listFilter(w, r)
	if !ok {
		return
	}
	incomes, err := s.store.ListIncomes(r.Context(), f, limit)
	if err != nil {
		s.respondError(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().Body(mapJSON(incomes, toIncomeJSON)).Write(w)
}

func (s *Server) handleGetIncome(w http.ResponseWriter, r *http.Request) {
	ids, ok := scope(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	in, err := s.store.GetIncome(r.Context(), id)
	if err == nil && !inScope(ids, in.BusinessUnitID) {
		err = fmt.Errorf("income %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Body(toIncomeJSON(in)).Write(w)
}

// handleCreateIncome stores an income. The total is always derived from
// subtotal, discount and shipping; a total in the body is ignored.
func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	ids, ok := scope(w, r)
	if !ok {
		return
	}
	p, ok := parseBody(w, r)
	if !ok {
		return
	}

	in, err := incomeFromBody(p)
	if err == nil {
		in.ApplyDefaults()
		in.ComputeTotal()
		err = in.Validate()
	}
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	if !s.allowUnit(w, ids, in.BusinessUnitID) {
		return
	}

	in, err = s.recorder.RecordIncome(r.Context(), in)
	if err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	requestLog(r).LogRecordCreated(r.Context(), "income", in.ID,
		log.NewFields().WithExpense(in.BusinessUnitID, nil, in.Total.Cents(), in.Date.String()))
	created(w, fmt.Sprintf("/api/incomes/%d", in.ID), toIncomeJSON(in))
}

// --- suppliers ---

func (s *Server) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	ids, ok := scope(w, r)
	if !ok {
		return
	}
	f, err := ParseFilter(r.URL.Query(), ids)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	suppliers, err := s.store.ListSuppliers(r.Context(), f)
	if err != nil {
		s.respondError(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().Body(mapJSON(suppliers, toSupplierJSON)).Write(w)
}

func (s *Server) handleCreateSupplier(w http.ResponseWriter, r *http.Request) {
	ids, ok := scope(w, r)
	if !ok {
		return
	}
	p, ok := parseBody(w, r)
	if !ok {
		return
	}

	sup, err := supplierFromBody(p)
	if err == nil {
		err = sup.Validate()
	}
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	if !s.allowUnit(w, ids, sup.BusinessUnitID) {
		return
	}
	if sup.BusinessUnitID != nil {
		if _, err := s.store.GetBusinessUnit(r.Context(), *sup.BusinessUnitID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				err = fmt.Errorf("%w: business unit %d", services.ErrUnknownReference, *sup.BusinessUnitID)
			}
			s.respondError(w, r, log.OpCreate, err)
			return
		}
	}

	sup, err = s.store.CreateSupplier(r.Context(), sup)
	if err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	requestLog(r).LogRecordCreated(r.Context(), "supplier", sup.ID, nil)
	created(w, "", toSupplierJSON(sup))
}

// listFilter parses the scope, filter and limit shared by record listings.
func (s *Server) listFilter(w http.ResponseWriter, r *http.Request) (core.Filter, int, bool) {
	ids, ok := scope(w, r)
	if !ok {
		return core.Filter{}, 0, false
	}
	f, err := ParseFilter(r.URL.Query(), ids)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return core.Filter{}, 0, false
	}
	limit, err := listLimit(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return core.Filter{}, 0, false
	}
	return f, limit, true
}
