package domain

import "time"

// SortOrder controls how filtered swim lists are ordered.
type SortOrder string

const (
	SortByDate     SortOrder = "date"     // newest first
	SortByDuration SortOrder = "duration" // fastest first
)

// ChartMetric selects which derived metric a chart plots on its value axis.
type ChartMetric string

const (
	MetricDuration     ChartMetric = "duration"
	MetricVelocity     ChartMetric = "velocity"
	MetricStrokeLength ChartMetric = "strokeLength"
	MetricStrokeIndex  ChartMetric = "strokeIndex"
	MetricIERatio      ChartMetric = "ieRatio"
)

// Filter holds the ephemeral per-session display preferences: the active
// filter predicate, sort order and chart settings. It is never persisted
// server-side and resets with the session.
type Filter struct {
	Stroke       *Stroke     `json:"stroke,omitempty"`
	Distance     *int        `json:"distance,omitempty"`
	Gear         []Gear      `json:"gear,omitempty"`
	PoolLength   *PoolLength `json:"poolLength,omitempty"`
	DateFrom     *time.Time  `json:"dateFrom,omitempty"`
	DateTo       *time.Time  `json:"dateTo,omitempty"`
	PaceDistance *int        `json:"paceDistance,omitempty"`
	UserID       *string     `json:"userId,omitempty"`

	SortOrder      SortOrder   `json:"sortOrder,omitempty"`
	ChartMetric    ChartMetric `json:"chartMetric,omitempty"`
	ShowVelocity   bool        `json:"showVelocity"`
	ShowSDBands    bool        `json:"showSdBands"`
	VisibleColumns []string    `json:"visibleColumns,omitempty"`
}

// FilterPatch is a partial filter update; nil fields are left unchanged.
type FilterPatch struct {
	Stroke       *Stroke      `json:"stroke,omitempty"`
	Distance     *int         `json:"distance,omitempty"`
	Gear         []Gear       `json:"gear,omitempty"`
	PoolLength   *PoolLength  `json:"poolLength,omitempty"`
	DateFrom     *time.Time   `json:"dateFrom,omitempty"`
	DateTo       *time.Time   `json:"dateTo,omitempty"`
	PaceDistance *int         `json:"paceDistance,omitempty"`
	UserID       *string      `json:"userId,omitempty"`
	SortOrder    *SortOrder   `json:"sortOrder,omitempty"`
	ChartMetric  *ChartMetric `json:"chartMetric,omitempty"`
	ShowVelocity *bool        `json:"showVelocity,omitempty"`
	ShowSDBands  *bool        `json:"showSdBands,omitempty"`
	// VisibleColumns replaces the column ordering when non-nil.
	VisibleColumns []string `json:"visibleColumns,omitempty"`
}

// Apply merges the patch into the filter.
func (p *FilterPatch) Apply(f *Filter) {
	if p.Stroke != nil {
		f.Stroke = p.Stroke
	}
	if p.Distance != nil {
		f.Distance = p.Distance
	}
	if p.Gear != nil {
		f.Gear = p.Gear
	}
	if p.PoolLength != nil {
		f.PoolLength = p.PoolLength
	}
	if p.DateFrom != nil {
		f.DateFrom = p.DateFrom
	}
	if p.DateTo != nil {
		f.DateTo = p.DateTo
	}
	if p.PaceDistance != nil {
		f.PaceDistance = p.PaceDistance
	}
	if p.UserID != nil {
		f.UserID = p.UserID
	}
	if p.SortOrder != nil {
		f.SortOrder = *p.SortOrder
	}
	if p.ChartMetric != nil {
		f.ChartMetric = *p.ChartMetric
	}
	if p.ShowVelocity != nil {
		f.ShowVelocity = *p.ShowVelocity
	}
	if p.ShowSDBands != nil {
		f.ShowSDBands = *p.ShowSDBands
	}
	if p.VisibleColumns != nil {
		f.VisibleColumns = p.VisibleColumns
	}
}

// Complete reports whether the filter pins down an unambiguous population:
// stroke, distance, gear and pool length all set. Summary statistics are
// only shown for complete filters.
func (f *Filter) Complete() bool {
	return f.Stroke != nil && f.Distance != nil && len(f.Gear) > 0 && f.PoolLength != nil
}

// Matches applies the filter predicate to a single swim. Every set field
// must match exactly, except gear which matches on intersection (see
// Swim.HasGear for the NoGear sentinel rule).
func (f *Filter) Matches(s *Swim) bool {
	if f.Stroke != nil && s.Stroke != *f.Stroke {
		return false
	}
	if f.Distance != nil && s.Distance != *f.Distance {
		return false
	}
	if f.PoolLength != nil && s.PoolLength != *f.PoolLength {
		return false
	}
	if f.UserID != nil && s.UserID != *f.UserID {
		return false
	}
	if f.PaceDistance != nil {
		if s.PaceDistance == nil || *s.PaceDistance != *f.PaceDistance {
			return false
		}
	}
	if f.DateFrom != nil && s.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && s.Date.After(*f.DateTo) {
		return false
	}
	if len(f.Gear) > 0 && !s.HasGear(f.Gear) {
		return false
	}
	return true
}
