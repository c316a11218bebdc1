package eventmodels

import (
	"time"

	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// OptionQuote is one strike of an options chain on a given quote date. Call
// and put legs share the strike and expiry.
type OptionQuote struct {
	QuoteDate  time.Time
	ExpireDate time.Time
	DTE        int
	Strike     decimal.Decimal
	CallBid    decimal.NullDecimal
	CallAsk    decimal.NullDecimal
	PutBid     decimal.NullDecimal
	PutAsk     decimal.NullDecimal
	CallVolume int64
	PutVolume  int64
}

// CallMid returns (bid+ask)/2 of the call leg. ok is false when either side is missing.
func (q *OptionQuote) CallMid() (mid float64, ok bool) {
	return midPrice(q.CallBid, q.CallAsk)
}

// PutMid returns (bid+ask)/2 of the put leg. ok is false when either side is missing.
func (q *OptionQuote) PutMid() (mid float64, ok bool) {
	return midPrice(q.PutBid, q.PutAsk)
}

// HasRequiredFields reports whether the quote carries everything the skewness
// calculation needs.
func (q *OptionQuote) HasRequiredFields() bool {
	return !q.QuoteDate.IsZero() && !q.ExpireDate.IsZero() &&
		q.CallBid.Valid && q.CallAsk.Valid && q.PutBid.Valid && q.PutAsk.Valid
}

func midPrice(bid, ask decimal.NullDecimal) (float64, bool) {
	if !bid.Valid || !ask.Valid {
		return 0, false
	}

	return bid.Decimal.Add(ask.Decimal).Div(two).InexactFloat64(), true
}
