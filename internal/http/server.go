package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"thot/internal/analytics"
	"thot/internal/core"
	"thot/internal/log"
)

// Store is the record surface the API reads and administers directly.
type Store interface {
	Ping(ctx context.Context) error

	CreateCustomer(ctx context.Context, c core.Customer) (core.Customer, error)
	GetCustomer(ctx context.Context, id int64) (core.Customer, error)
	ListCustomers(ctx context.Context) ([]core.Customer, error)

	CreateBusinessUnit(ctx context.Context, b core.BusinessUnit) (core.BusinessUnit, error)
	GetBusinessUnit(ctx context.Context, id int64) (core.BusinessUnit, error)
	ListBusinessUnits(ctx context.Context, customerID *int64, activeOnly bool) ([]core.BusinessUnit, error)

	CreateExpenseType(ctx context.Context, t core.ExpenseType) (core.ExpenseType, error)
	ListExpenseTypes(ctx context.Context) ([]core.ExpenseType, error)

	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	ListExpenses(ctx context.Context, f core.Filter, limit int) ([]core.Expense, error)
	GetIncome(ctx context.Context, id int64) (core.Income, error)
	ListIncomes(ctx context.Context, f core.Filter, limit int) ([]core.Income, error)

	CreateSupplier(ctx context.Context, s core.Supplier) (core.Supplier, error)
	ListSuppliers(ctx context.Context, f core.Filter) ([]core.Supplier, error)
}

// Recorder stores expenses and incomes, with the side effects that follow
// a new transaction (report cache invalidation, expense events).
type Recorder interface {
	RecordExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	RecordIncome(ctx context.Context, in core.Income) (core.Income, error)
}

// Reports builds the analytics panel payloads.
type Reports interface {
	ExpenseReport(ctx context.Context, f core.Filter) (analytics.ExpenseReport, error)
	IncomeAnalysis(ctx context.Context, f core.Filter) (analytics.IncomeAnalysis, error)
	FinancialDashboard(ctx context.Context, f core.Filter) (analytics.Dashboard, error)
}

const (
	writesPerMinute  = 60
	defaultListLimit = 100
	maxListLimit     = 1000
)

type Server struct {
	http.Server
	store    Store
	recorder Recorder
	reports  Reports

	logger      *log.Logger
	rateLimiter *rateLimiter
	metrics     *securityMetrics

	shutdownOnce sync.Once
}

// NewServer wires the routes and middleware, returning a ready-to-run server.
func NewServer(addr string, store Store, recorder Recorder, reports Reports, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		store:       store,
		recorder:    recorder,
		reports:     reports,
		logger:      logger,
		rateLimiter: newRateLimiter(writesPerMinute, time.Minute),
		metrics:     &securityMetrics{},
	}
	go s.rateLimiter.startCleanup(5 * time.Minute)

	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.StrictSlash(true)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		NotFoundError("no route for " + req.URL.Path).Write(w)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		MethodNotAllowedError(allowedMethods(r, req)).Write(w)
	})

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.withRequestLogging, s.withSecurity)
	api.HandleFunc("/customers", s.handleListCustomers).Methods(http.MethodGet)
	api.HandleFunc("/customers", s.handleCreateCustomer).Methods(http.MethodPost)
	api.HandleFunc("/business-units", s.handleListBusinessUnits).Methods(http.MethodGet)
	api.HandleFunc("/business-units", s.handleCreateBusinessUnit).Methods(http.MethodPost)
	api.HandleFunc("/expense-types", s.handleListExpenseTypes).Methods(http.MethodGet)
	api.HandleFunc("/expense-types", s.handleCreateExpenseType).Methods(http.MethodPost)
	api.HandleFunc("/expenses", s.handleListExpenses).Methods(http.MethodGet)
	api.HandleFunc("/expenses", s.handleCreateExpense).Methods(http.MethodPost)
	api.HandleFunc("/expenses/{id:[0-9]+}", s.handleGetExpense).Methods(http.MethodGet)
	api.HandleFunc("/incomes", s.handleListIncomes).Methods(http.MethodGet)
	api.HandleFunc("/incomes", s.handleCreateIncome).Methods(http.MethodPost)
	api.HandleFunc("/incomes/{id:[0-9]+}", s.handleGetIncome).Methods(http.MethodGet)
	api.HandleFunc("/suppliers", s.handleListSuppliers).Methods(http.MethodGet)
	api.HandleFunc("/suppliers", s.handleCreateSupplier).Methods(http.MethodPost)

	panel := r.PathPrefix("/panel/analytics").Subrouter()
	panel.Use(s.withRequestLogging, s.withSecurity)
	panel.HandleFunc("/", s.handleAnalyticsIndex).Methods(http.MethodGet)
	panel.HandleFunc("/expense-report/data/", s.handleExpenseReportData).Methods(http.MethodGet)
	panel.HandleFunc("/income-analysis/data/", s.handleIncomeAnalysisData).Methods(http.MethodGet)
	panel.HandleFunc("/dashboard/data/", s.handleDashboardData).Methods(http.MethodGet)

	return log.Middleware(s.logger)(log.RequestIDMiddleware(requestID)(r))
}

// allowedMethods lists the methods the router would accept for req's path.
func allowedMethods(router *mux.Router, req *http.Request) string {
	var allowed []string
	for _, m := range []string{http.MethodGet, http.MethodPost} {
		probe := req.Clone(req.Context())
		probe.Method = m
		var match mux.RouteMatch
		if router.Match(probe, &match) && match.MatchErr == nil {
			allowed = append(allowed, m)
		}
	}
	return strings.Join(allowed, ", ")
}

// requestLog returns a structured logger carrying the request id.
func requestLog(r *http.Request) *log.StructuredLogger {
	return log.NewStructuredLogger(log.FromContext(r.Context()))
}

// withRequestLogging logs the start and end of every request with its
// status and duration.
func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		ctx := r.Context()

		sl := requestLog(r)
		sl.LogHTTPStart(ctx, r, clientIP)
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		sl.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
}

// withSecurity sets the security headers, flags probes and rate limits
// writes per client IP.
func (s *Server) withSecurity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setSecurityHeaders(w.Header())
		clientIP := extractClientIP(r)

		if reason := suspiciousReason(r); reason != "" {
			s.metrics.suspiciousRequests.Add(1)
			log.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
				log.FieldClientIP, clientIP,
				log.FieldPath, r.URL.Path,
				"reason", reason)
		}

		if r.Method == http.MethodPost {
			if ok, retry := s.rateLimiter.allow(clientIP); !ok {
				s.metrics.rateLimitHits.Add(1)
				log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
					log.FieldClientIP, clientIP,
					log.FieldPath, r.URL.Path)
				seconds := int(retry.Seconds()) + 1
				TooManyRequestsError(strconv.Itoa(seconds)).Write(w)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().NoStore().Body(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		ServiceUnavailableError("database unavailable").Write(w)
		return
	}
	NewJSONResponse().NoStore().Body(map[string]string{"status": "ready"}).Write(w)
}

// Shutdown stops background routines and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		s.logger.Info("Shutting down HTTP server",
			log.FieldOperation, log.OpShutdown,
			"rate_limit_hits", s.metrics.rateLimitHits.Load(),
			"suspicious_requests", s.metrics.suspiciousRequests.Load(),
			"scope_violations", s.metrics.scopeViolations.Load())
		err = s.Server.Shutdown(ctx)
	})
	return err
}
