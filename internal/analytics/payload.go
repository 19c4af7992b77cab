package analytics

import (
	"math"
	"time"

	"thot/internal/core"
	"thot/internal/projection"
)

// Labels for records without a unit or expense type.
const (
	NoCategory = "Sin categoría"
	NoType     = "Sin tipo"
	NoUnit     = "Sin unidad"
)

type (
	CategoryTotal struct {
		Name  string  `json:"expense_type__name"`
		Total float64 `json:"total"`
	}
	DayTotal struct {
		Day   string  `json:"day"`
		Total float64 `json:"total"`
	}
	WeekTotal struct {
		Week  string  `json:"week"`
		Total float64 `json:"total"`
	}
	MonthTotal struct {
		Month string  `json:"month"`
		Total float64 `json:"total"`
	}
	YearTotal struct {
		Year  string  `json:"year"`
		Total float64 `json:"total"`
	}
	SourceTotal struct {
		BusinessType string  `json:"business_type"`
		Total        float64 `json:"total"`
	}
	UnitTotal struct {
		BusinessUnit string  `json:"business_unit"`
		Total        float64 `json:"total"`
	}
	StatusTotal struct {
		PaymentStatus string  `json:"payment_status"`
		Total         float64 `json:"total"`
	}
)

// ExpenseReport is the payload of the expense report data endpoint.
type ExpenseReport struct {
	ByCategory []CategoryTotal `json:"gastos_por_categoria"`
	Daily      []DayTotal      `json:"gastos_diarios"`
	Weekly     []WeekTotal     `json:"gastos_semanales"`
	Monthly    []MonthTotal    `json:"gastos_mensuales"`
	Stats      ExpenseStats    `json:"stats"`
}

type ExpenseStats struct {
	Total           float64 `json:"total_gastos"`
	DailyAverage    float64 `json:"promedio_diario"`
	Categories      int     `json:"num_categorias"`
	LargestCategory float64 `json:"mayor_categoria"`
}

// IncomeAnalysis is the payload of the income analysis data endpoint.
type IncomeAnalysis struct {
	BySource    []SourceTotal `json:"ingresos_por_fuente"`
	ByUnit      []UnitTotal   `json:"ingresos_por_unidad"`
	Monthly     []MonthTotal  `json:"ingresos_mensuales"`
	Yearly      []YearTotal   `json:"ingresos_anuales"`
	ByStatus    []StatusTotal `json:"ingresos_por_estado"`
	Stats       IncomeStats   `json:"stats"`
	Projections Horizons      `json:"proyecciones"`
}

type IncomeStats struct {
	Total         float64    `json:"total_ingresos"`
	DailyAverage  float64    `json:"promedio_diario"`
	Transactions  int        `json:"num_transacciones"`
	Projection    float64    `json:"proyeccion"`
	PercentChange float64    `json:"cambio_porcentual"`
	Reliability   string     `json:"confiabilidad"`
	Indicators    Indicators `json:"indicadores"`
}

// Indicators describes a projection's reliability. Regression results fill
// the numeric fields; the other tiers only carry a reason.
type Indicators struct {
	Reliability string   `json:"confiabilidad,omitempty"`
	CV          *float64 `json:"coef_variacion,omitempty"`
	Trend       *float64 `json:"tendencia,omitempty"`
	Samples     int      `json:"datos_disponibles"`
	Stability   string   `json:"estabilidad,omitempty"`
	Reason      string   `json:"razon,omitempty"`
}

// Horizons are the projected amounts; absent horizons encode as null.
type Horizons struct {
	NextMonth *float64 `json:"proximo_mes"`
	In2Months *float64 `json:"en_2_meses"`
	In3Months *float64 `json:"en_3_meses"`
	In6Months *float64 `json:"en_6_meses"`
	Trend     *float64 `json:"tendencia,omitempty"`
	Intercept *float64 `json:"intercepto,omitempty"`
}

// Dashboard is the payload of the financial dashboard data endpoint.
type Dashboard struct {
	Units        []UnitBreakdown `json:"unidades"`
	ExpenseTypes []string        `json:"tipos_gasto"`
	Evolution    []MonthBalance  `json:"evolucion_mensual"`
	Stats        DashboardStats  `json:"stats"`
}

type UnitBreakdown struct {
	Unit           string             `json:"unidad"`
	Incomes        float64            `json:"ingresos"`
	ExpensesByType map[string]float64 `json:"gastos_por_tipo"`
}

type MonthBalance struct {
	Month    string  `json:"mes"`
	Expenses float64 `json:"gastos"`
	Incomes  float64 `json:"ingresos"`
}

type DashboardStats struct {
	TotalExpenses float64 `json:"total_gastos"`
	TotalIncomes  float64 `json:"total_ingresos"`
	Balance       float64 `json:"balance"`
	MonthExpenses float64 `json:"gastos_mes"`
	MonthIncomes  float64 `json:"ingresos_mes"`
	MonthBalance  float64 `json:"balance_mes"`
}

var reliabilityLabels = map[projection.Reliability]string{
	projection.NoData: "SIN_DATOS",
	projection.Low:    "BAJA",
	projection.Medium: "MEDIA",
	projection.High:   "ALTA",
}

// ReliabilityLabel is the panel label for a reliability rating.
func ReliabilityLabel(r projection.Reliability) string {
	if l, ok := reliabilityLabels[r]; ok {
		return l
	}
	return string(r)
}

// projectionStats fills the projection part of the income stats and
// returns the horizon details.
func projectionStats(stats *IncomeStats, r projection.Result) Horizons {
	if r.NextMonth != nil {
		stats.Projection = *r.NextMonth
	}
	stats.PercentChange = r.PercentChange
	stats.Reliability = ReliabilityLabel(r.Reliability)
	stats.Indicators = indicatorsFor(r)
	return Horizons{
		NextMonth: r.NextMonth,
		In2Months: r.In2Months,
		In3Months: r.In3Months,
		In6Months: r.In6Months,
		Trend:     r.Slope,
		Intercept: r.Intercept,
	}
}

func indicatorsFor(r projection.Result) Indicators {
	ind := Indicators{Samples: r.Indicators.SampleCount}
	if r.Indicators.CV == nil {
		ind.Reason = r.Reason
		return ind
	}
	cv := roundTo(*r.Indicators.CV, 3)
	trend := roundTo(*r.Indicators.Slope, 2)
	ind.Reliability = ReliabilityLabel(r.Reliability)
	ind.CV = &cv
	ind.Trend = &trend
	ind.Stability = ReliabilityLabel(r.Indicators.Stability)
	return ind
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func day(t time.Time) string {
	return t.Format(time.DateOnly)
}

func orLabel(name, label string) string {
	if name == "" {
		return label
	}
	return name
}

func dayTotals(in []core.PeriodTotal) []DayTotal {
	out := make([]DayTotal, len(in))
	for i, p := range in {
		out[i] = DayTotal{Day: day(p.Period), Total: p.Amount.Float()}
	}
	return out
}

func weekTotals(in []core.PeriodTotal) []WeekTotal {
	out := make([]WeekTotal, len(in))
	for i, p := range in {
		out[i] = WeekTotal{Week: day(p.Period), Total: p.Amount.Float()}
	}
	return out
}

func monthTotals(in []core.PeriodTotal) []MonthTotal {
	out := make([]MonthTotal, len(in))
	for i, p := range in {
		out[i] = MonthTotal{Month: day(p.Period), Total: p.Amount.Float()}
	}
	return out
}

func yearTotals(in []core.PeriodTotal) []YearTotal {
	out := make([]YearTotal, len(in))
	for i, p := range in {
		out[i] = YearTotal{Year: day(p.Period), Total: p.Amount.Float()}
	}
	return out
}
