package eventmodels

import (
	"time"

	"github.com/google/uuid"
)

// EntropyRun is one execution of the pipeline together with the parameters it used.
type EntropyRun struct {
	ID           uuid.UUID      `json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	StartDate    time.Time      `json:"start_date"`
	EndDate      time.Time      `json:"end_date"`
	MinDte       int            `json:"min_dte"`
	MaxDte       int            `json:"max_dte"`
	WindowWidth  int            `json:"window_width"`
	SlidingStep  int            `json:"sliding_step"`
	EmbeddingDim int            `json:"embedding_dim"`
	Tolerance    float64        `json:"tolerance"`
	Points       []EntropyPoint `json:"points"`
}

func NewEntropyRun(startDate, endDate time.Time, minDte, maxDte int) *EntropyRun {
	return &EntropyRun{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		StartDate: startDate,
		EndDate:   endDate,
		MinDte:    minDte,
		MaxDte:    maxDte,
	}
}
