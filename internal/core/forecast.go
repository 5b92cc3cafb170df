package core

import (
	"errors"
	"fmt"
	"math"
)

// ErrNonFinite is returned when a series or its projection leaves the
// float64 range.
var ErrNonFinite = errors.New("value out of numeric range")

// FitLine fits y = slope*x + intercept by ordinary least squares with
// x_i = i. A zero denominator is treated as 1, so a single point yields a
// flat line through it. An empty input yields (0, 0).
func FitLine(values []float64) (slope, intercept float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		denom = 1
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// Extrapolate projects the fitted line over the next months points
// following the series. An empty series or non-positive horizon yields an
// empty forecast.
func Extrapolate(values []float64, months int) []float64 {
	if len(values) == 0 || months <= 0 {
		return []float64{}
	}
	slope, intercept := FitLine(values)
	last := float64(len(values) - 1)
	out := make([]float64, months)
	for k := 1; k <= months; k++ {
		out[k-1] = slope*(last+float64(k)) + intercept
	}
	return out
}

// Forecast extrapolates history over months points. History values or
// projected points that do not fit in a finite float64 yield ErrNonFinite.
func Forecast(history TimeSeries, months int) (ForecastResult, error) {
	values := history.Floats()
	if i := firstNonFinite(values); i >= 0 {
		return ForecastResult{}, fmt.Errorf("%w: history %s", ErrNonFinite, history.Months[i])
	}
	projected := Extrapolate(values, months)
	if i := firstNonFinite(projected); i >= 0 {
		return ForecastResult{}, fmt.Errorf("%w: forecast point %d", ErrNonFinite, i+1)
	}
	return ForecastResult{
		Months:   months,
		History:  history,
		Forecast: projected,
	}, nil
}

func firstNonFinite(values []float64) int {
	for i, v := range values {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return i
		}
	}
	return -1
}
