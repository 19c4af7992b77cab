// Package projection turns a series of monthly totals into a revenue
// projection with a linear trend, forward horizons and a reliability rating.
//
// Everything here is a pure function of its input: no I/O, no shared state,
// safe to call from concurrent requests.
package projection

import (
	"math"

	"thot/internal/core"
)

// Reliability qualifies how much a projection can be trusted.
type Reliability string

const (
	NoData Reliability = "NO_DATA"
	Low    Reliability = "LOW"
	Medium Reliability = "MEDIUM"
	High   Reliability = "HIGH"
)

const (
	ReasonNoData        = "no data available"
	ReasonSinglePoint   = "only one data point"
	ReasonFewPoints     = "fewer than four data points"
	ReasonDegenerateFit = "cannot compute trend"
)

// Result is the outcome of a projection. Horizons, Slope and Intercept are
// nil when the tier that produced the result does not populate them.
type Result struct {
	NextMonth     *float64
	In2Months     *float64
	In3Months     *float64
	In6Months     *float64
	Slope         *float64
	Intercept     *float64
	PercentChange float64
	Reliability   Reliability
	Reason        string
	Indicators    Indicators
}

// Indicators are the diagnostics behind a reliability rating. CV, Slope and
// Stability are only set when the regression tier ran.
type Indicators struct {
	CV          *float64
	Slope       *float64
	SampleCount int
	Stability   Reliability
}

// Project computes the projection for an ascending series of monthly totals.
func Project(series []core.MonthlyTotal) Result {
	values := make([]float64, len(series))
	for i, m := range series {
		values[i] = m.Amount.Float()
	}
	return ProjectValues(values)
}

type tier int

const (
	tierEmpty tier = iota
	tierSingle
	tierFew
	tierTrend
)

func tierFor(n int) tier {
	switch {
	case n == 0:
		return tierEmpty
	case n == 1:
		return tierSingle
	case n <= 3:
		return tierFew
	default:
		return tierTrend
	}
}

// ProjectValues is Project over raw amounts, oldest first.
func ProjectValues(values []float64) Result {
	switch tierFor(len(values)) {
	case tierEmpty:
		return projectEmpty()
	case tierSingle:
		return projectSingle(values[0])
	case tierFew:
		return projectFew(values)
	default:
		return projectTrend(values)
	}
}

func projectEmpty() Result {
	return Result{
		Reliability: NoData,
		Reason:      ReasonNoData,
	}
}

func projectSingle(v float64) Result {
	return Result{
		NextMonth:   ptr(v),
		In2Months:   ptr(v),
		In3Months:   ptr(v),
		In6Months:   ptr(v),
		Reliability: Low,
		Reason:      ReasonSinglePoint,
		Indicators:  Indicators{SampleCount: 1},
	}
}

func projectFew(values []float64) Result {
	return Result{
		NextMonth:     ptr(mean(values)),
		PercentChange: PercentChange(values),
		Reliability:   Medium,
		Reason:        ReasonFewPoints,
		Indicators:    Indicators{SampleCount: len(values)},
	}
}

func projectTrend(values []float64) Result {
	n := float64(len(values))
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	// Unreachable for consecutive integer indices with n >= 2; kept so a
	// zero denominator can never produce Inf/NaN.
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		avg := sumY / n
		return Result{
			NextMonth:     ptr(avg),
			In2Months:     ptr(avg),
			In3Months:     ptr(avg),
			In6Months:     ptr(avg),
			PercentChange: PercentChange(values),
			Reliability:   Medium,
			Reason:        ReasonDegenerateFit,
			Indicators:    Indicators{SampleCount: len(values)},
		}
	}

	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n
	at := func(x float64) *float64 {
		return ptr(math.Max(intercept+slope*x, 0))
	}

	ind := indicators(values, slope)
	return Result{
		NextMonth:     at(n),
		In2Months:     at(n + 1),
		In3Months:     at(n + 2),
		In6Months:     at(n + 5),
		Slope:         ptr(slope),
		Intercept:     ptr(intercept),
		PercentChange: PercentChange(values),
		Reliability:   rate(*ind.CV, slope, mean(values)),
		Indicators:    ind,
	}
}

func indicators(values []float64, slope float64) Indicators {
	cv := CoefficientOfVariation(values)
	return Indicators{
		CV:          ptr(cv),
		Slope:       ptr(slope),
		SampleCount: len(values),
		Stability:   stability(cv),
	}
}

func rate(cv, slope, avg float64) Reliability {
	if cv < 0.3 && math.Abs(slope) < 0.2*avg {
		return High
	}
	return stabilityBelowHigh(cv)
}

func stability(cv float64) Reliability {
	if cv < 0.3 {
		return High
	}
	return stabilityBelowHigh(cv)
}

func stabilityBelowHigh(cv float64) Reliability {
	if cv < 0.5 {
		return Medium
	}
	return Low
}

// PercentChange is the signed change between the last two values, in
// percent rounded to one decimal. It is 0 for fewer than two values and,
// when the previous value is 0, 100 if the last is positive and 0 otherwise.
func PercentChange(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	last, prev := values[len(values)-1], values[len(values)-2]
	if prev == 0 {
		if last > 0 {
			return 100
		}
		return 0
	}
	return round1((last - prev) / prev * 100)
}

// CoefficientOfVariation is the population standard deviation over the
// mean, or 0 when the mean is not positive.
func CoefficientOfVariation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	avg := mean(values)
	if avg <= 0 {
		return 0
	}
	var ss float64
	for _, v := range values {
		ss += (v - avg) * (v - avg)
	}
	return math.Sqrt(ss/float64(len(values))) / avg
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func ptr(v float64) *float64 {
	return &v
}
