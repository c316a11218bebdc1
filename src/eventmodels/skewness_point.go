package eventmodels

import "time"

type SkewnessPoint struct {
	QuoteDate       time.Time `json:"quote_date"`
	SkewnessPremium float64   `json:"skewness_premium"`
}

// SkewnessResult is the output of the extraction stage: the per-date series and
// the dates that were dropped along the way.
type SkewnessResult struct {
	Points  []SkewnessPoint
	Skipped []*NoValidSkewnessDataError
}

func (r SkewnessResult) Values() []float64 {
	values := make([]float64, len(r.Points))
	for i, p := range r.Points {
		values[i] = p.SkewnessPremium
	}
	return values
}

func (r SkewnessResult) Dates() []time.Time {
	dates := make([]time.Time, len(r.Points))
	for i, p := range r.Points {
		dates[i] = p.QuoteDate
	}
	return dates
}
