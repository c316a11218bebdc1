package data

import (
	"time"

	"github.com/google/uuid"

	"github.com/jiaming2012/skew-entropy/src/eventmodels"
)

type EntropyRunRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt    time.Time
	StartDate    time.Time `gorm:"type:date"`
	EndDate      time.Time `gorm:"type:date"`
	MinDte       int
	MaxDte       int
	WindowWidth  int
	SlidingStep  int
	EmbeddingDim int
	Tolerance    float64
	Points       []EntropyPointRecord `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

func (EntropyRunRecord) TableName() string {
	return "entropy_runs"
}

type EntropyPointRecord struct {
	ID       uint      `gorm:"primaryKey"`
	RunID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Date     time.Time `gorm:"type:date;not null"`
	Entropy  float64
	Skewness float64
}

func (EntropyPointRecord) TableName() string {
	return "entropy_points"
}

func NewEntropyRunRecord(run *eventmodels.EntropyRun) *EntropyRunRecord {
	points := make([]EntropyPointRecord, len(run.Points))
	for i, p := range run.Points {
		points[i] = EntropyPointRecord{
			RunID:    run.ID,
			Date:     p.Date,
			Entropy:  p.Entropy,
			Skewness: p.Skewness,
		}
	}

	return &EntropyRunRecord{
		ID:           run.ID,
		CreatedAt:    run.CreatedAt,
		StartDate:    run.StartDate,
		EndDate:      run.EndDate,
		MinDte:       run.MinDte,
		MaxDte:       run.MaxDte,
		WindowWidth:  run.WindowWidth,
		SlidingStep:  run.SlidingStep,
		EmbeddingDim: run.EmbeddingDim,
		Tolerance:    run.Tolerance,
		Points:       points,
	}
}

func (r *EntropyRunRecord) ToModel() *eventmodels.EntropyRun {
	points := make([]eventmodels.EntropyPoint, len(r.Points))
	for i, p := range r.Points {
		points[i] = eventmodels.EntropyPoint{
			Date:     p.Date.UTC(),
			Entropy:  p.Entropy,
			Skewness: p.Skewness,
		}
	}

	return &eventmodels.EntropyRun{
		ID:           r.ID,
		CreatedAt:    r.CreatedAt,
		StartDate:    r.StartDate.UTC(),
		EndDate:      r.EndDate.UTC(),
		MinDte:       r.MinDte,
		MaxDte:       r.MaxDte,
		WindowWidth:  r.WindowWidth,
		SlidingStep:  r.SlidingStep,
		EmbeddingDim: r.EmbeddingDim,
		Tolerance:    r.Tolerance,
		Points:       points,
	}
}
