package eventmodels

import (
	"fmt"
	"time"
)

// InsufficientDataError is returned when a series is too short for the
// requested embedding dimension.
type InsufficientDataError struct {
	Length   int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("time series is too short to calculate approximate entropy: got %d values, need at least %d", e.Length, e.Required)
}

// NoValidSkewnessDataError describes a quote date that produced no skewness
// premium. It is recorded and the date is skipped.
type NoValidSkewnessDataError struct {
	QuoteDate time.Time
	Reason    string
}

func (e *NoValidSkewnessDataError) Error() string {
	return fmt.Sprintf("no valid skewness data for %s: %s", e.QuoteDate.Format(DateLayout), e.Reason)
}

// DataAlignmentError is returned when the values and dates of a series differ in length.
type DataAlignmentError struct {
	SeriesLength int
	DatesLength  int
}

func (e *DataAlignmentError) Error() string {
	return fmt.Sprintf("series and dates are misaligned: %d values, %d dates", e.SeriesLength, e.DatesLength)
}

type InvalidParameterError struct {
	Name  string
	Value interface{}
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %v", e.Name, e.Value)
}
