package eventmodels

import (
	"time"

	"github.com/shopspring/decimal"
)

// OptionChainRow is a full row of a daily chain file, including the greeks and
// open interest that are stored but not used by the skewness calculation.
type OptionChainRow struct {
	OptionQuote
	UnderlyingLast   float64
	CallIV           *float64
	CallDelta        *float64
	CallGamma        *float64
	CallOpenInterest int64
	PutIV            *float64
	PutDelta         *float64
	PutGamma         *float64
	PutOpenInterest  int64
}

func NewOptionChainRow(quoteDate, expireDate time.Time, strike decimal.Decimal, underlyingLast float64) *OptionChainRow {
	return &OptionChainRow{
		OptionQuote: OptionQuote{
			QuoteDate:  quoteDate,
			ExpireDate: expireDate,
			DTE:        DaysBetween(quoteDate, expireDate),
			Strike:     strike,
		},
		UnderlyingLast: underlyingLast,
	}
}

// DaysBetween returns the whole number of calendar days from start to end.
func DaysBetween(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours() / 24)
}
