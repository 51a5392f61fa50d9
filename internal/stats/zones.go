package stats

// Zone defines one heart-rate band as a half-open percentage-of-max range
// [Min, Max). Zones are evaluated in definition order; each sample lands in
// the first matching band.
type Zone struct {
	Name  string  `json:"name"`
	Color string  `json:"color"`
	Min   float64 `json:"min"` // inclusive, percent of max HR
	Max   float64 `json:"max"` // exclusive, percent of max HR
}

// ZoneTime is the time accumulated in one zone. Samples arrive at one per
// second, so the sample count is the time in seconds.
type ZoneTime struct {
	Name    string  `json:"name"`
	Color   string  `json:"color"`
	Seconds float64 `json:"seconds"`
}

// DefaultZones is the standard five-band breakdown used for Strava session
// enrichment.
var DefaultZones = []Zone{
	{Name: "Recovery", Color: "#8bc34a", Min: 0, Max: 60},
	{Name: "Endurance", Color: "#03a9f4", Min: 60, Max: 70},
	{Name: "Tempo", Color: "#ffc107", Min: 70, Max: 80},
	{Name: "Threshold", Color: "#ff9800", Min: 80, Max: 90},
	{Name: "Max", Color: "#f44336", Min: 90, Max: 200},
}

// HRZoneTimes buckets a heart-rate time series into zones expressed as
// percentages of maxHr. Only non-empty buckets are returned, in zone
// definition order. A missing stream, an empty zone list or a non-positive
// maxHr yields an empty result.
func HRZoneTimes(samples []float64, maxHr float64, zones []Zone) []ZoneTime {
	if len(samples) == 0 || len(zones) == 0 || maxHr <= 0 {
		return nil
	}
	counts := make([]float64, len(zones))
	for _, hr := range samples {
		pct := hr / maxHr * 100
		for i, z := range zones {
			if pct >= z.Min && pct < z.Max {
				counts[i]++
				break
			}
		}
	}
	var out []ZoneTime
	for i, z := range zones {
		if counts[i] > 0 {
			out = append(out, ZoneTime{Name: z.Name, Color: z.Color, Seconds: counts[i]})
		}
	}
	return out
}
