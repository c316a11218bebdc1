package eventmodels

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

type EntropyPointDTO struct {
	Date     string  `csv:"Date" json:"date"`
	Entropy  float64 `csv:"Entropy" json:"entropy"`
	Skewness float64 `csv:"Skewness" json:"skewness"`
}

func (dto *EntropyPointDTO) ToModel() (EntropyPoint, error) {
	date, err := time.Parse(DateLayout, dto.Date)
	if err != nil {
		return EntropyPoint{}, fmt.Errorf("EntropyPointDTO.ToModel: failed to parse date %q: %w", dto.Date, err)
	}

	return EntropyPoint{
		Date:     date,
		Entropy:  dto.Entropy,
		Skewness: dto.Skewness,
	}, nil
}
