package http

import (
	"context"
	"net/http"

	"thot/internal/core"
	"thot/internal/log"
)

type analyticsSection struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Data        string `json:"data"`
}

var analyticsSections = []analyticsSection{
	{
		Title:       "Dashboard Financiero",
		Description: "Vista general de gastos, ingresos y métricas clave",
		URL:         "dashboard",
		Data:        "/panel/analytics/dashboard/data/",
	},
	{
		Title:       "Reporte de Gastos",
		Description: "Análisis detallado de gastos por categoría y período",
		URL:         "expense-report",
		Data:        "/panel/analytics/expense-report/data/",
	},
	{
		Title:       "Análisis de Ingresos",
		Description: "Evolución y proyección de ingresos",
		URL:         "income-analysis",
		Data:        "/panel/analytics/income-analysis/data/",
	},
}

func (s *Server) handleAnalyticsIndex(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]interface{}{
		"title":    "Analítica",
		"sections": analyticsSections,
	}).Write(w)
}

func (s *Server) handleExpenseReportData(w http.ResponseWriter, r *http.Request) {
	serveReport(s, w, r, s.reports.ExpenseReport)
}

func (s *Server) handleIncomeAnalysisData(w http.ResponseWriter, r *http.Request) {
	serveReport(s, w, r, s.reports.IncomeAnalysis)
}

func (s *Server) handleDashboardData(w http.ResponseWriter, r *http.Request) {
	serveReport(s, w, r, s.reports.FinancialDashboard)
}

// serveReport parses the scope and filter, builds the report and writes it.
// Reports are per-caller and never cached by clients.
func serveReport[T any](s *Server, w http.ResponseWriter, r *http.Request, build func(context.Context, core.Filter) (T, error)) {
	ids, ok := scope(w, r)
	if !ok {
		return
	}
	f, err := ParseFilter(r.URL.Query(), ids)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	report, err := build(r.Context(), f)
	if err != nil {
		s.respondError(w, r, log.OpReport, err)
		return
	}
	NewJSONResponse().NoStore().Body(report).Write(w)
}
