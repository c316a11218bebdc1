package data

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jiaming2012/skew-entropy/src/eventmodels"
)

// OptionQuoteRecord is a row of the options_data table.
type OptionQuoteRecord struct {
	ID             uint                `gorm:"primaryKey"`
	QuoteDate      time.Time           `gorm:"column:quote_date;type:date;not null;uniqueIndex:idx_options_data_contract,priority:1;index"`
	UnderlyingLast float64             `gorm:"column:underlying_last"`
	ExpireDate     time.Time           `gorm:"column:expire_date;type:date;not null;uniqueIndex:idx_options_data_contract,priority:2"`
	DTE            int                 `gorm:"column:dte"`
	CVolume        int64               `gorm:"column:c_volume"`
	CBid           decimal.NullDecimal `gorm:"column:c_bid;type:numeric"`
	CAsk           decimal.NullDecimal `gorm:"column:c_ask;type:numeric"`
	CIV            *float64            `gorm:"column:c_iv"`
	CDelta         *float64            `gorm:"column:c_delta"`
	CGamma         *float64            `gorm:"column:c_gamma"`
	COpenInterest  int64               `gorm:"column:c_open_interest"`
	Strike         decimal.Decimal     `gorm:"column:strike;type:numeric;not null;uniqueIndex:idx_options_data_contract,priority:3"`
	PBid           decimal.NullDecimal `gorm:"column:p_bid;type:numeric"`
	PAsk           decimal.NullDecimal `gorm:"column:p_ask;type:numeric"`
	PVolume        int64               `gorm:"column:p_volume"`
	PIV            *float64            `gorm:"column:p_iv"`
	PDelta         *float64            `gorm:"column:p_delta"`
	PGamma         *float64            `gorm:"column:p_gamma"`
	POpenInterest  int64               `gorm:"column:p_open_interest"`
}

func (OptionQuoteRecord) TableName() string {
	return "options_data"
}

func NewOptionQuoteRecord(row *eventmodels.OptionChainRow) *OptionQuoteRecord {
	return &OptionQuoteRecord{
		QuoteDate:      row.QuoteDate,
		UnderlyingLast: row.UnderlyingLast,
		ExpireDate:     row.ExpireDate,
		DTE:            row.DTE,
		CVolume:        row.CallVolume,
		CBid:           row.CallBid,
		CAsk:           row.CallAsk,
		CIV:            row.CallIV,
		CDelta:         row.CallDelta,
		CGamma:         row.CallGamma,
		COpenInterest:  row.CallOpenInterest,
		Strike:         row.Strike,
		PBid:           row.PutBid,
		PAsk:           row.PutAsk,
		PVolume:        row.PutVolume,
		PIV:            row.PutIV,
		PDelta:         row.PutDelta,
		PGamma:         row.PutGamma,
		POpenInterest:  row.PutOpenInterest,
	}
}

func (r *OptionQuoteRecord) ToOptionQuote() *eventmodels.OptionQuote {
	return &eventmodels.OptionQuote{
		QuoteDate:  r.QuoteDate.UTC(),
		ExpireDate: r.ExpireDate.UTC(),
		DTE:        r.DTE,
		Strike:     r.Strike,
		CallBid:    r.CBid,
		CallAsk:    r.CAsk,
		PutBid:     r.PBid,
		PutAsk:     r.PAsk,
		CallVolume: r.CVolume,
		PutVolume:  r.PVolume,
	}
}
