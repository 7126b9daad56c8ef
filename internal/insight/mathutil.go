package insight

import (
	"math"

	"github.com/shopspring/decimal"
)

// NoDemandDays is reported as days-of-stock when there is no demand to consume the stock.
const NoDemandDays = 999

// ceilEpsilon absorbs floating point noise such as 500.0000000001 before rounding up.
const ceilEpsilon = 1e-9

// round rounds v half away from zero to the given number of decimal places.
func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// ceilInt rounds v up to the next whole number, ignoring sub-epsilon overshoot.
func ceilInt(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Ceil(v - ceilEpsilon)
}

// safeDiv returns a/b, or fallback when b is zero.
func safeDiv(a, b, fallback float64) float64 {
	if b == 0 {
		return fallback
	}
	return a / b
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

// populationStdDev is the standard deviation over the whole series (divides by n).
func populationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var sq float64
	for _, v := range values {
		d := v - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

// coefficientOfVariation is stddev/mean; 0 for fewer than two points or a zero mean.
func coefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	if m == 0 {
		return 0
	}
	return populationStdDev(values) / m
}

// ZScore returns the standard normal quantile for a service level given in percent.
// The level is clamped to [50, 99.99] so the result stays finite and non-negative.
func ZScore(serviceLevelPct float64) float64 {
	p := clamp(serviceLevelPct, 50, 99.99) / 100
	return math.Sqrt2 * math.Erfinv(2*p-1)
}

func pct(part, whole float64) float64 {
	return safeDiv(part*100, whole, 0)
}
