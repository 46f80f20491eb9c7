package profiling

import (
	"math"

	"leadboard/domain/leads"
	"leadboard/internal/pipeline"

	"github.com/montanaflynn/stats"
)

// TimelineProfile summarizes daily lead volume over the days that have leads
type TimelineProfile struct {
	Days         int         `json:"days"`
	MeanPerDay   float64     `json:"mean_per_day"`
	MedianPerDay float64     `json:"median_per_day"`
	MinPerDay    int         `json:"min_per_day"`
	MaxPerDay    int         `json:"max_per_day"`
	P90PerDay    float64     `json:"p90_per_day"`
	BusiestDay   *leads.Date `json:"busiest_day,omitempty"`
	FirstDay     *leads.Date `json:"first_day,omitempty"`
	LastDay      *leads.Date `json:"last_day,omitempty"`
}

// ProfileTimeline computes volume statistics from a sparse, date-ordered timeline.
// An empty timeline yields the zero profile.
func ProfileTimeline(series []pipeline.DateCount) (TimelineProfile, error) {
	profile := TimelineProfile{Days: len(series)}
	if len(series) == 0 {
		return profile, nil
	}

	data := make(stats.Float64Data, len(series))
	busiest := series[0]
	for i, point := range series {
		data[i] = float64(point.Count)
		if point.Count > busiest.Count {
			busiest = point
		}
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return profile, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return profile, err
	}
	lo, err := stats.Min(data)
	if err != nil {
		return profile, err
	}
	hi, err := stats.Max(data)
	if err != nil {
		return profile, err
	}
	p90, err := stats.PercentileNearestRank(data, 90)
	if err != nil {
		return profile, err
	}

	first, last := series[0].Date, series[len(series)-1].Date
	profile.MeanPerDay = round2(mean)
	profile.MedianPerDay = round2(median)
	profile.MinPerDay = int(lo)
	profile.MaxPerDay = int(hi)
	profile.P90PerDay = round2(p90)
	profile.BusiestDay = &busiest.Date
	profile.FirstDay = &first
	profile.LastDay = &last
	return profile, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
