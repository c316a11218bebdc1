package eventmodels

import "time"

// EntropyPoint is the approximate entropy of one sliding window. Date and
// Skewness are taken from the last element of the window.
type EntropyPoint struct {
	Date     time.Time `json:"date"`
	Entropy  float64   `json:"entropy"`
	Skewness float64   `json:"skewness"`
}

func (p EntropyPoint) ToDTO() EntropyPointDTO {
	return EntropyPointDTO{
		Date:     p.Date.Format(DateLayout),
		Entropy:  p.Entropy,
		Skewness: p.Skewness,
	}
}
