// Package stats provides the pure numeric primitives behind the dashboard:
// means, sample standard deviations, regressions, correlation, heart-rate
// zone bucketing and age derivation.
//
// None of these functions return errors. Degenerate input (empty slices,
// zero variance, missing values) degrades to a zero/empty/nil sentinel,
// because consumers branch on those sentinels rather than on error values.
package stats

import (
	"math"
	"time"

	mstats "github.com/montanaflynn/stats"
)

// Point is an (x, y) observation for regression and correlation.
type Point struct {
	X float64
	Y float64
}

// Mean returns the arithmetic mean of values, or 0 for an empty input.
func Mean(values []float64) float64 {
	m, err := mstats.Mean(values)
	if err != nil {
		return 0
	}
	return m
}

// StdDev returns the sample standard deviation (n-1 denominator) of values.
// Fewer than two values yield 0.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sd, err := mstats.StandardDeviationSample(values)
	if err != nil || math.IsNaN(sd) || math.IsInf(sd, 0) {
		return 0
	}
	return sd
}

// LinearRegression fits an ordinary least squares line through points and
// returns its slope and intercept. When the x-variance is zero (vertical or
// constant input) the slope is 0 and the intercept is the mean of y.
func LinearRegression(points []Point) (slope, intercept float64) {
	n := float64(len(points))
	if n == 0 {
		return 0, 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
		sumXY += p.X * p.Y
		sumXX += p.X * p.X
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// Correlation returns the Pearson correlation coefficient of points, or 0
// when either dimension has zero variance.
func Correlation(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}
	r, err := mstats.Pearson(xs, ys)
	if err != nil || math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// AgeFromBirthdate returns the whole years between a YYYY-MM-DD birthdate
// and now, decremented by one if the birthday has not yet occurred this
// year. Returns nil for an empty or unparseable input.
func AgeFromBirthdate(birthdate string, now time.Time) *int {
	if birthdate == "" {
		return nil
	}
	born, err := time.Parse("2006-01-02", birthdate)
	if err != nil {
		return nil
	}
	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	return &age
}
