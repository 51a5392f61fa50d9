package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stroke enumerates the four competitive strokes.
type Stroke string

const (
	StrokeFreestyle    Stroke = "freestyle"
	StrokeBackstroke   Stroke = "backstroke"
	StrokeBreaststroke Stroke = "breaststroke"
	StrokeButterfly    Stroke = "butterfly"
)

// Gear enumerates equipment tags a swim can carry.
type Gear string

const (
	GearFins      Gear = "Fins"
	GearPaddles   Gear = "Paddles"
	GearSnorkel   Gear = "Snorkel"
	GearPullbuoy  Gear = "Pullbuoy"
	GearKickboard Gear = "Kickboard"
	// GearNone is a filter sentinel matching swims with an empty gear set.
	// It is never stored on a swim itself.
	GearNone Gear = "NoGear"
)

// PoolLength enumerates the two supported pool lengths in meters.
type PoolLength int

const (
	PoolShort PoolLength = 25
	PoolLong  PoolLength = 50
)

// Swim represents one logged swim attempt.
//
// The authoritative copy always lives in the database; in-memory lists are
// full replace-on-reload caches. Derived metrics are computed once (at
// creation or on first load) and never recomputed when already present.
type Swim struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string     `gorm:"column:user_id;not null;index" json:"userId"`
	Date       time.Time  `gorm:"column:date;not null" json:"date"`
	Distance   int        `gorm:"column:distance;not null" json:"distance"` // meters
	Duration   float64    `gorm:"column:duration;not null" json:"duration"` // seconds
	TargetTime *float64   `gorm:"column:target_time" json:"targetTime,omitempty"`
	Stroke     Stroke     `gorm:"column:stroke;not null" json:"stroke"`
	Gear       []Gear     `gorm:"column:gear;serializer:json" json:"gear"`
	PoolLength PoolLength `gorm:"column:pool_length;not null" json:"poolLength"`
	StrokeRate *float64   `gorm:"column:stroke_rate" json:"strokeRate,omitempty"` // strokes/min
	HeartRate  *float64   `gorm:"column:heart_rate" json:"heartRate,omitempty"`   // bpm
	// PaceDistance annotates which sub-distance within a longer swim the
	// duration and target apply to.
	PaceDistance *int      `gorm:"column:pace_distance" json:"paceDistance,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	// Derived metrics. Stored alongside the raw inputs so a reload never
	// changes previously-computed values.
	Velocity     *float64 `gorm:"column:velocity" json:"velocity,omitempty"`          // m/s
	StrokeLength *float64 `gorm:"column:stroke_length" json:"strokeLength,omitempty"` // m/stroke
	StrokeIndex  *float64 `gorm:"column:stroke_index" json:"strokeIndex,omitempty"`
	IERatio      *float64 `gorm:"column:ie_ratio" json:"ieRatio,omitempty"`
}

func (Swim) TableName() string { return "swims" }

// ComputeDerivedMetrics fills in velocity, stroke length, stroke index and
// the internal/external ratio from the raw inputs. Fields that already hold
// a value are left untouched, so the backfill on load is idempotent and the
// add path and load path produce identical results.
func (s *Swim) ComputeDerivedMetrics() {
	if s.Duration <= 0 {
		return
	}
	if s.Velocity == nil {
		v := float64(s.Distance) / s.Duration
		s.Velocity = &v
	}
	if s.StrokeLength == nil && s.StrokeRate != nil && *s.StrokeRate > 0 {
		sl := *s.Velocity / (*s.StrokeRate / 60.0)
		s.StrokeLength = &sl
	}
	if s.StrokeIndex == nil && s.StrokeLength != nil {
		si := *s.Velocity * *s.StrokeLength
		s.StrokeIndex = &si
	}
	if s.IERatio == nil && s.HeartRate != nil && s.StrokeIndex != nil && *s.StrokeIndex > 0 {
		ie := *s.HeartRate / *s.StrokeIndex
		s.IERatio = &ie
	}
}

// SwimPatch is a partial swim update; nil fields are left unchanged.
// Derived metrics are not part of the patch surface and are never
// recomputed by an edit.
type SwimPatch struct {
	Date         *time.Time  `json:"date,omitempty"`
	Distance     *int        `json:"distance,omitempty"`
	Duration     *float64    `json:"duration,omitempty"`
	TargetTime   *float64    `json:"targetTime,omitempty"`
	Stroke       *Stroke     `json:"stroke,omitempty"`
	Gear         []Gear      `json:"gear,omitempty"`
	PoolLength   *PoolLength `json:"poolLength,omitempty"`
	StrokeRate   *float64    `json:"strokeRate,omitempty"`
	HeartRate    *float64    `json:"heartRate,omitempty"`
	PaceDistance *int        `json:"paceDistance,omitempty"`
}

// Apply merges the patch into the swim.
func (p *SwimPatch) Apply(s *Swim) {
	if p.Date != nil {
		s.Date = *p.Date
	}
	if p.Distance != nil {
		s.Distance = *p.Distance
	}
	if p.Duration != nil {
		s.Duration = *p.Duration
	}
	if p.TargetTime != nil {
		s.TargetTime = p.TargetTime
	}
	if p.Stroke != nil {
		s.Stroke = *p.Stroke
	}
	if p.Gear != nil {
		s.Gear = p.Gear
	}
	if p.PoolLength != nil {
		s.PoolLength = *p.PoolLength
	}
	if p.StrokeRate != nil {
		s.StrokeRate = p.StrokeRate
	}
	if p.HeartRate != nil {
		s.HeartRate = p.HeartRate
	}
	if p.PaceDistance != nil {
		s.PaceDistance = p.PaceDistance
	}
}

// HasGear reports whether the swim's gear set intersects the given set.
// An empty gear set on the swim matches a filter containing the NoGear
// sentinel.
func (s *Swim) HasGear(filter []Gear) bool {
	if len(filter) == 0 {
		return true
	}
	if len(s.Gear) == 0 {
		for _, g := range filter {
			if g == GearNone {
				return true
			}
		}
		return false
	}
	for _, want := range filter {
		for _, have := range s.Gear {
			if want == have {
				return true
			}
		}
	}
	return false
}
