package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func TestComputeDerivedMetrics(t *testing.T) {
	swim := Swim{
		Distance:   100,
		Duration:   60,
		StrokeRate: fptr(30),
		HeartRate:  fptr(150),
	}
	swim.ComputeDerivedMetrics()

	require.NotNil(t, swim.Velocity)
	assert.InDelta(t, 1.667, *swim.Velocity, 0.001)

	require.NotNil(t, swim.StrokeLength)
	assert.InDelta(t, 3.333, *swim.StrokeLength, 0.001)

	require.NotNil(t, swim.StrokeIndex)
	assert.InDelta(t, 5.556, *swim.StrokeIndex, 0.001)

	require.NotNil(t, swim.IERatio)
	assert.InDelta(t, 27.0, *swim.IERatio, 0.001)
}

func TestComputeDerivedMetricsPartialInputs(t *testing.T) {
	// No stroke rate: only velocity can be derived.
	swim := Swim{Distance: 100, Duration: 80, HeartRate: fptr(140)}
	swim.ComputeDerivedMetrics()

	require.NotNil(t, swim.Velocity)
	assert.InDelta(t, 1.25, *swim.Velocity, 1e-9)
	assert.Nil(t, swim.StrokeLength)
	assert.Nil(t, swim.StrokeIndex)
	assert.Nil(t, swim.IERatio)
}

func TestComputeDerivedMetricsIdempotent(t *testing.T) {
	swim := Swim{
		Distance:   100,
		Duration:   60,
		StrokeRate: fptr(30),
		HeartRate:  fptr(150),
	}
	swim.ComputeDerivedMetrics()
	first := *swim.Velocity

	// Changing an input must not disturb already-computed values.
	swim.Duration = 90
	swim.ComputeDerivedMetrics()
	assert.Equal(t, first, *swim.Velocity)
}

func TestComputeDerivedMetricsZeroDuration(t *testing.T) {
	swim := Swim{Distance: 100, Duration: 0}
	swim.ComputeDerivedMetrics()
	assert.Nil(t, swim.Velocity)
}

func TestHasGear(t *testing.T) {
	withFins := Swim{Gear: []Gear{GearFins, GearSnorkel}}
	bare := Swim{}

	assert.True(t, withFins.HasGear(nil), "empty filter matches everything")
	assert.True(t, withFins.HasGear([]Gear{GearFins}))
	assert.True(t, withFins.HasGear([]Gear{GearPaddles, GearSnorkel}))
	assert.False(t, withFins.HasGear([]Gear{GearPaddles}))
	assert.False(t, withFins.HasGear([]Gear{GearNone}), "geared swim never matches the no-gear sentinel")

	assert.True(t, bare.HasGear(nil))
	assert.True(t, bare.HasGear([]Gear{GearNone}))
	assert.True(t, bare.HasGear([]Gear{GearFins, GearNone}))
	assert.False(t, bare.HasGear([]Gear{GearFins}))
}

func TestSwimPatchApply(t *testing.T) {
	swim := Swim{
		Distance: 100,
		Duration: 60,
		Stroke:   StrokeFreestyle,
		Velocity: fptr(1.667),
	}

	newDuration := 58.5
	newStroke := StrokeButterfly
	patch := SwimPatch{Duration: &newDuration, Stroke: &newStroke}
	patch.Apply(&swim)

	assert.Equal(t, 58.5, swim.Duration)
	assert.Equal(t, StrokeButterfly, swim.Stroke)
	assert.Equal(t, 100, swim.Distance, "unset fields are untouched")
	assert.Equal(t, 1.667, *swim.Velocity, "derived metrics survive edits")
}

func TestFilterComplete(t *testing.T) {
	f := Filter{}
	assert.False(t, f.Complete())

	stroke := StrokeFreestyle
	distance := 100
	pool := PoolShort
	f = Filter{Stroke: &stroke, Distance: &distance, PoolLength: &pool}
	assert.False(t, f.Complete(), "gear missing")

	f.Gear = []Gear{GearNone}
	assert.True(t, f.Complete())
}

func TestFilterMatches(t *testing.T) {
	stroke := StrokeFreestyle
	distance := 100
	pool := PoolShort
	f := Filter{Stroke: &stroke, Distance: &distance, PoolLength: &pool, Gear: []Gear{GearNone}}

	match := Swim{Stroke: StrokeFreestyle, Distance: 100, PoolLength: PoolShort}
	assert.True(t, f.Matches(&match))

	wrongStroke := match
	wrongStroke.Stroke = StrokeBackstroke
	assert.False(t, f.Matches(&wrongStroke))

	geared := match
	geared.Gear = []Gear{GearFins}
	assert.False(t, f.Matches(&geared))
}

func TestFilterMatchesDateRange(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	f := Filter{DateFrom: &from, DateTo: &to}

	inside := Swim{Date: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)}
	assert.True(t, f.Matches(&inside))

	before := Swim{Date: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)}
	assert.False(t, f.Matches(&before))

	after := Swim{Date: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}
	assert.False(t, f.Matches(&after))
}

func TestFilterMatchesPaceDistance(t *testing.T) {
	f := Filter{PaceDistance: iptr(50)}

	assert.False(t, f.Matches(&Swim{}), "swim without pace annotation never matches a pace filter")
	assert.True(t, f.Matches(&Swim{PaceDistance: iptr(50)}))
	assert.False(t, f.Matches(&Swim{PaceDistance: iptr(100)}))
}

func TestFilterPatchApply(t *testing.T) {
	f := Filter{SortOrder: SortByDate}

	order := SortByDuration
	show := true
	patch := FilterPatch{SortOrder: &order, ShowVelocity: &show, Gear: []Gear{GearFins}}
	patch.Apply(&f)

	assert.Equal(t, SortByDuration, f.SortOrder)
	assert.True(t, f.ShowVelocity)
	assert.Equal(t, []Gear{GearFins}, f.Gear)
	assert.Nil(t, f.Stroke, "unset fields are untouched")
}
