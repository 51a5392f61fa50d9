package store

import (
	"alcyxob/swimtrack/internal/domain"
	"alcyxob/swimtrack/internal/stats"
	"fmt"
	"math"
	"sort"
)

// AverageSD is the summary statistic pair for a filtered population.
type AverageSD struct {
	Average float64 `json:"average"`
	SD      float64 `json:"sd"`
	Count   int     `json:"count"`
}

// AchievementZone is one band of the goal-deviation distribution.
type AchievementZone struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// ChartSeries is one grouped line for the velocity/distance chart.
type ChartSeries struct {
	Key    string        `json:"key"`
	Points []stats.Point `json:"points"`
}

// StrokeCount is one slice of the stroke distribution.
type StrokeCount struct {
	Stroke domain.Stroke `json:"stroke"`
	Count  int           `json:"count"`
}

// SDChart is the standard-deviation band chart: the selected metric over
// time with its mean, ±2 SD band and a fitted trend line.
type SDChart struct {
	Points      []stats.Point `json:"points"`
	Mean        float64       `json:"mean"`
	Upper       float64       `json:"upper"`
	Lower       float64       `json:"lower"`
	TrendSlope  float64       `json:"trendSlope"`
	TrendOffset float64       `json:"trendOffset"`
	Correlation float64       `json:"correlation"`
}

// Fixed achievement bands: absolute percentage deviation from the goal
// time, boundaries inclusive.
var achievementBands = []struct {
	label string
	limit float64
}{
	{"≤0.85%", 0.85},
	{"≤1.5%", 1.5},
	{"≤4%", 4},
	{">4%", math.Inf(1)},
}

// UserSwims is the role-scoped subset of the loaded swim list, re-derived
// from the current user and the swims rather than cached separately.
func (s *Store) UserSwims() []domain.Swim {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memoize("userSwims", func() interface{} {
		return s.userSwimsLocked()
	}).([]domain.Swim)
}

func (s *Store) userSwimsLocked() []domain.Swim {
	user := s.currentUser
	if user == nil {
		return nil
	}
	if user.Admin {
		return s.swims
	}

	allowed := map[string]bool{user.ID.Hex(): true}
	if user.IsCoach() {
		for _, u := range s.roster {
			for _, coachID := range u.CoachIDs {
				if coachID == user.ID {
					allowed[u.ID.Hex()] = true
				}
			}
		}
	}

	var out []domain.Swim
	for _, swim := range s.swims {
		if allowed[swim.UserID] {
			out = append(out, swim)
		}
	}
	return out
}

// FilteredSwims narrows UserSwims by the active filter predicate and sorts
// by date (newest first) or duration (fastest first) per the sort order.
func (s *Store) FilteredSwims() []domain.Swim {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memoize("filteredSwims", func() interface{} {
		return s.filteredSwimsLocked()
	}).([]domain.Swim)
}

func (s *Store) filteredSwimsLocked() []domain.Swim {
	var out []domain.Swim
	for _, swim := range s.userSwimsLocked() {
		if s.filter.Matches(&swim) {
			out = append(out, swim)
		}
	}
	if s.filter.SortOrder == domain.SortByDuration {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Duration < out[j].Duration })
	} else {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	}
	return out
}

// AverageAndSD returns mean and sample standard deviation of the filtered
// durations. Nil unless the filter pins down a complete combination
// (stroke, distance, gear, pool length): statistics over a mixed
// population would be meaningless.
func (s *Store) AverageAndSD() *AverageSD {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memoize("averageAndSd", func() interface{} {
		if !s.filter.Complete() {
			return (*AverageSD)(nil)
		}
		swims := s.filteredSwimsLocked()
		if len(swims) == 0 {
			return (*AverageSD)(nil)
		}
		durations := make([]float64, len(swims))
		for i, swim := range swims {
			durations[i] = swim.Duration
		}
		return &AverageSD{
			Average: stats.Mean(durations),
			SD:      stats.StdDev(durations),
			Count:   len(durations),
		}
	}).(*AverageSD)
}

// OutlierSwims flags the most recent filtered swim when its duration falls
// outside ±2 sample standard deviations of the remaining (historical)
// filtered population. Backward-looking anomaly check only; needs at least
// two filtered records.
func (s *Store) OutlierSwims() []domain.Swim {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memoize("outlierSwims", func() interface{} {
		swims := s.filteredByDateLocked()
		if len(swims) < 2 {
			return []domain.Swim(nil)
		}
		latest := swims[0]
		rest := make([]float64, 0, len(swims)-1)
		for _, swim := range swims[1:] {
			rest = append(rest, swim.Duration)
		}
		mean := stats.Mean(rest)
		sd := stats.StdDev(rest)
		if math.Abs(latest.Duration-mean) > 2*sd {
			return []domain.Swim{latest}
		}
		return []domain.Swim(nil)
	}).([]domain.Swim)
}

// filteredByDateLocked is the filtered list forced to date order so
// "most recent" is well-defined regardless of the active sort preference.
func (s *Store) filteredByDateLocked() []domain.Swim {
	var out []domain.Swim
	for _, swim := range s.userSwimsLocked() {
		if s.filter.Matches(&swim) {
			out = append(out, swim)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// AchievementZones buckets the filtered swims that carry a target time by
// absolute percentage deviation from it. Band boundaries are fixed
// constants; only non-empty bands are returned, with their share of the
// goal-carrying population.
func (s *Store) AchievementZones() []AchievementZone {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memoize("achievementZones", func() interface{} {
		counts := make([]int, len(achievementBands))
		total := 0
		for _, swim := range s.filteredSwimsLocked() {
			if swim.TargetTime == nil || *swim.TargetTime <= 0 {
				continue
			}
			deviation := math.Abs(swim.Duration-*swim.TargetTime) / *swim.TargetTime * 100
			for i, band := range achievementBands {
				if deviation <= band.limit {
					counts[i]++
					break
				}
			}
			total++
		}
		var out []AchievementZone
		for i, band := range achievementBands {
			if counts[i] > 0 {
				out = append(out, AchievementZone{
					Label:   band.label,
					Count:   counts[i],
					Percent: float64(counts[i]) / float64(total) * 100,
				})
			}
		}
		return out
	}).([]AchievementZone)
}

// VelocityDistanceData groups the visible swims by swimmer, stroke, gear,
// pool length and pace distance, and averages velocity per distance within
// each group, producing one chart series per group.
func (s *Store) VelocityDistanceData() []ChartSeries {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memoize("velocityDistance", func() interface{} {
		type bucket struct {
			sum   float64
			count int
		}
		groups := make(map[string]map[int]*bucket)
		for _, swim := range s.userSwimsLocked() {
			if swim.Velocity == nil {
				continue
			}
			key := seriesKey(&swim)
			if groups[key] == nil {
				groups[key] = make(map[int]*bucket)
			}
			b := groups[key][swim.Distance]
			if b == nil {
				b = &bucket{}
				groups[key][swim.Distance] = b
			}
			b.sum += *swim.Velocity
			b.count++
		}

		keys := make([]string, 0, len(groups))
		for key := range groups {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		out := make([]ChartSeries, 0, len(keys))
		for _, key := range keys {
			series := ChartSeries{Key: key}
			distances := make([]int, 0, len(groups[key]))
			for d := range groups[key] {
				distances = append(distances, d)
			}
			sort.Ints(distances)
			for _, d := range distances {
				b := groups[key][d]
				series.Points = append(series.Points, stats.Point{X: float64(d), Y: b.sum / float64(b.count)})
			}
			out = append(out, series)
		}
		return out
	}).([]ChartSeries)
}

func seriesKey(swim *domain.Swim) string {
	gear := "NoGear"
	if len(swim.Gear) > 0 {
		parts := make([]string, len(swim.Gear))
		for i, g := range swim.Gear {
			parts[i] = string(g)
		}
		sort.Strings(parts)
		gear = ""
		for i, p := range parts {
			if i > 0 {
				gear += "+"
			}
			gear += p
		}
	}
	pace := ""
	if swim.PaceDistance != nil {
		pace = fmt.Sprintf("/%dm", *swim.PaceDistance)
	}
	return fmt.Sprintf("%s %s %s %dm%s", swim.UserID, swim.Stroke, gear, swim.PoolLength, pace)
}

// StrokeDistribution counts the visible swims per stroke.
func (s *Store) StrokeDistribution() []StrokeCount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memoize("strokeDistribution", func() interface{} {
		order := []domain.Stroke{
			domain.StrokeFreestyle,
			domain.StrokeBackstroke,
			domain.StrokeBreaststroke,
			domain.StrokeButterfly,
		}
		counts := make(map[domain.Stroke]int)
		for _, swim := range s.userSwimsLocked() {
			counts[swim.Stroke]++
		}
		var out []StrokeCount
		for _, stroke := range order {
			if counts[stroke] > 0 {
				out = append(out, StrokeCount{Stroke: stroke, Count: counts[stroke]})
			}
		}
		return out
	}).([]StrokeCount)
}

// SDChartData plots the selected chart metric of the filtered swims over
// time together with the mean and a ±2 SD band. Nil when no filtered swim
// carries the metric.
func (s *Store) SDChartData() *SDChart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memoize("sdChart", func() interface{} {
		metric := s.filter.ChartMetric
		if metric == "" {
			metric = domain.MetricDuration
		}
		var points []stats.Point
		var values []float64
		for _, swim := range s.filteredByDateLocked() {
			v := metricValue(&swim, metric)
			if v == nil {
				continue
			}
			points = append(points, stats.Point{X: float64(swim.Date.Unix()), Y: *v})
			values = append(values, *v)
		}
		if len(points) == 0 {
			return (*SDChart)(nil)
		}
		mean := stats.Mean(values)
		sd := stats.StdDev(values)
		slope, offset := stats.LinearRegression(points)
		return &SDChart{
			Points:      points,
			Mean:        mean,
			Upper:       mean + 2*sd,
			Lower:       mean - 2*sd,
			TrendSlope:  slope,
			TrendOffset: offset,
			Correlation: stats.Correlation(points),
		}
	}).(*SDChart)
}

func metricValue(swim *domain.Swim, metric domain.ChartMetric) *float64 {
	switch metric {
	case domain.MetricVelocity:
		return swim.Velocity
	case domain.MetricStrokeLength:
		return swim.StrokeLength
	case domain.MetricStrokeIndex:
		return swim.StrokeIndex
	case domain.MetricIERatio:
		return swim.IERatio
	default:
		d := swim.Duration
		return &d
	}
}
