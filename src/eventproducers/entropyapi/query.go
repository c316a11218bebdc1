package entropyapi

import (
	"fmt"
	"time"

	"github.com/jiaming2012/skew-entropy/src/eventmodels"
)

type SkewnessQuery struct {
	StartDate string `schema:"start_date,required"`
	EndDate   string `schema:"end_date"`
	MinDte    *int   `schema:"min_dte"`
	MaxDte    *int   `schema:"max_dte"`
}

type EntropyQuery struct {
	SkewnessQuery
	WindowWidth  *int     `schema:"window_width"`
	SlidingStep  *int     `schema:"sliding_step"`
	EmbeddingDim *int     `schema:"embedding_dim"`
	Tolerance    *float64 `schema:"tolerance"`
	Save         bool     `schema:"save"`
}

// Dates parses the date range. A missing end date is returned as zero.
func (q *SkewnessQuery) Dates() (start, end time.Time, err error) {
	start, err = time.Parse(eventmodels.DateLayout, q.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, &eventmodels.InvalidParameterError{Name: "start_date", Value: q.StartDate}
	}

	if q.EndDate == "" {
		return start, time.Time{}, nil
	}

	end, err = time.Parse(eventmodels.DateLayout, q.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, &eventmodels.InvalidParameterError{Name: "end_date", Value: q.EndDate}
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, &eventmodels.InvalidParameterError{Name: "end_date", Value: fmt.Sprintf("%s is before %s", q.EndDate, q.StartDate)}
	}

	return start, end, nil
}

func (q *SkewnessQuery) apply(cfg *eventmodels.PipelineConfigYAML) {
	if q.MinDte != nil {
		cfg.Skewness.MinDte = *q.MinDte
	}

	if q.MaxDte != nil {
		cfg.Skewness.MaxDte = *q.MaxDte
	}
}

func (q *EntropyQuery) apply(cfg *eventmodels.PipelineConfigYAML) {
	q.SkewnessQuery.apply(cfg)

	if q.WindowWidth != nil {
		cfg.Entropy.WindowWidth = *q.WindowWidth
	}

	if q.SlidingStep != nil {
		cfg.Entropy.SlidingStep = *q.SlidingStep
	}

	if q.EmbeddingDim != nil {
		cfg.Entropy.EmbeddingDim = *q.EmbeddingDim
	}

	if q.Tolerance != nil {
		cfg.Entropy.Tolerance = q.Tolerance
	}
}
