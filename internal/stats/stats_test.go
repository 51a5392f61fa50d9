package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, Mean([]float64{}))
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-9)
	assert.InDelta(t, 5.0, Mean([]float64{5}), 1e-9)
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, StdDev([]float64{42}))

	// Sample (n-1) deviation, not population.
	sd := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 2.138, sd, 0.001)

	assert.Equal(t, 0.0, StdDev([]float64{3, 3, 3}))
}

func TestLinearRegression(t *testing.T) {
	slope, intercept := LinearRegression([]Point{
		{X: 0, Y: 1}, {X: 1, Y: 3}, {X: 2, Y: 5}, {X: 3, Y: 7},
	})
	assert.InDelta(t, 2.0, slope, 1e-9)
	assert.InDelta(t, 1.0, intercept, 1e-9)
}

func TestLinearRegressionZeroXVariance(t *testing.T) {
	slope, intercept := LinearRegression([]Point{
		{X: 5, Y: 1}, {X: 5, Y: 2}, {X: 5, Y: 6},
	})
	assert.Equal(t, 0.0, slope)
	assert.InDelta(t, 3.0, intercept, 1e-9)
}

func TestLinearRegressionEmpty(t *testing.T) {
	slope, intercept := LinearRegression(nil)
	assert.Equal(t, 0.0, slope)
	assert.Equal(t, 0.0, intercept)
}

func TestCorrelation(t *testing.T) {
	perfect := []Point{{X: 1, Y: 2}, {X: 2, Y: 4}, {X: 3, Y: 6}}
	assert.InDelta(t, 1.0, Correlation(perfect), 1e-9)

	inverse := []Point{{X: 1, Y: 6}, {X: 2, Y: 4}, {X: 3, Y: 2}}
	assert.InDelta(t, -1.0, Correlation(inverse), 1e-9)

	// Zero variance in y collapses to the 0 sentinel instead of NaN.
	flat := []Point{{X: 1, Y: 5}, {X: 2, Y: 5}, {X: 3, Y: 5}}
	assert.Equal(t, 0.0, Correlation(flat))

	assert.Equal(t, 0.0, Correlation([]Point{{X: 1, Y: 1}}))
}

func TestAgeFromBirthdate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	age := AgeFromBirthdate("1990-06-15", now)
	require.NotNil(t, age)
	assert.Equal(t, 35, *age)

	// Birthday tomorrow: not yet 35.
	age = AgeFromBirthdate("1990-06-16", now)
	require.NotNil(t, age)
	assert.Equal(t, 34, *age)

	assert.Nil(t, AgeFromBirthdate("", now))
	assert.Nil(t, AgeFromBirthdate("15/06/1990", now))
}

func TestHRZoneTimes(t *testing.T) {
	maxHr := 200.0
	// 110 -> 55% Recovery, 130 -> 65% Endurance, 150 -> 75% Tempo,
	// 150 again, 190 -> 95% Max.
	samples := []float64{110, 130, 150, 150, 190}

	zones := HRZoneTimes(samples, maxHr, DefaultZones)
	require.Len(t, zones, 4)
	assert.Equal(t, "Recovery", zones[0].Name)
	assert.Equal(t, 1.0, zones[0].Seconds)
	assert.Equal(t, "Endurance", zones[1].Name)
	assert.Equal(t, 1.0, zones[1].Seconds)
	assert.Equal(t, "Tempo", zones[2].Name)
	assert.Equal(t, 2.0, zones[2].Seconds)
	assert.Equal(t, "Max", zones[3].Name)
	assert.Equal(t, 1.0, zones[3].Seconds)
}

func TestHRZoneTimesBoundaries(t *testing.T) {
	maxHr := 100.0
	// Exactly 60% belongs to Endurance, not Recovery: bands are [min, max).
	zones := HRZoneTimes([]float64{60}, maxHr, DefaultZones)
	require.Len(t, zones, 1)
	assert.Equal(t, "Endurance", zones[0].Name)
}

func TestHRZoneTimesDegenerate(t *testing.T) {
	assert.Nil(t, HRZoneTimes(nil, 200, DefaultZones))
	assert.Nil(t, HRZoneTimes([]float64{150}, 0, DefaultZones))
	assert.Nil(t, HRZoneTimes([]float64{150}, 200, nil))
}
