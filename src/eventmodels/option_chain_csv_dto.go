package eventmodels

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var expireDateLayouts = []string{
	"Mon Jan 02 2006",
	"Mon Jan 2 2006",
	DateLayout,
	"01/02/2006",
	"1/2/2006",
	time.RFC3339,
}

// OptionChainCsvDTO is one data row of a daily chain export. The file repeats
// its column names for the call and put halves, so columns are bound by
// position and every field is read as text.
type OptionChainCsvDTO struct {
	ExpireDate       string `csv:"expire_date"`
	Calls            string `csv:"Calls"`
	CallLastSale     string `csv:"C_Last Sale"`
	CallNet          string `csv:"C_Net"`
	CallBid          string `csv:"C_Bid"`
	CallAsk          string `csv:"C_Ask"`
	CallVolume       string `csv:"C_Volume"`
	CallIV           string `csv:"C_IV"`
	CallDelta        string `csv:"C_Delta"`
	CallGamma        string `csv:"C_Gamma"`
	CallOpenInterest string `csv:"C_Open Interest"`
	Strike           string `csv:"Strike"`
	Puts             string `csv:"Puts"`
	PutLastSale      string `csv:"P_Last Sale"`
	PutNet           string `csv:"P_Net"`
	PutBid           string `csv:"P_Bid"`
	PutAsk           string `csv:"P_Ask"`
	PutVolume        string `csv:"P_Volume"`
	PutIV            string `csv:"P_IV"`
	PutDelta         string `csv:"P_Delta"`
	PutGamma         string `csv:"P_Gamma"`
	PutOpenInterest  string `csv:"P_Open Interest"`
}

// IsBlank reports whether every column of the row is empty.
func (dto *OptionChainCsvDTO) IsBlank() bool {
	for _, v := range []string{
		dto.ExpireDate, dto.Calls, dto.CallLastSale, dto.CallNet, dto.CallBid, dto.CallAsk, dto.CallVolume,
		dto.CallIV, dto.CallDelta, dto.CallGamma, dto.CallOpenInterest, dto.Strike, dto.Puts, dto.PutLastSale,
		dto.PutNet, dto.PutBid, dto.PutAsk, dto.PutVolume, dto.PutIV, dto.PutDelta, dto.PutGamma, dto.PutOpenInterest,
	} {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}

	return true
}

// ToModel converts the row. Missing prices stay null; an unparseable expire
// date or strike is an error.
func (dto *OptionChainCsvDTO) ToModel(quoteDate time.Time, underlyingLast float64) (*OptionChainRow, error) {
	expireDate, err := ParseExpireDate(dto.ExpireDate)
	if err != nil {
		return nil, err
	}

	strike, err := decimal.NewFromString(strings.TrimSpace(dto.Strike))
	if err != nil {
		return nil, fmt.Errorf("OptionChainCsvDTO.ToModel: failed to parse strike %q: %w", dto.Strike, err)
	}

	row := NewOptionChainRow(quoteDate, expireDate, strike, underlyingLast)
	row.CallBid = parseNullDecimal(dto.CallBid)
	row.CallAsk = parseNullDecimal(dto.CallAsk)
	row.PutBid = parseNullDecimal(dto.PutBid)
	row.PutAsk = parseNullDecimal(dto.PutAsk)
	row.CallVolume = parseInt(dto.CallVolume)
	row.PutVolume = parseInt(dto.PutVolume)
	row.CallIV = parseFloatPtr(dto.CallIV)
	row.CallDelta = parseFloatPtr(dto.CallDelta)
	row.CallGamma = parseFloatPtr(dto.CallGamma)
	row.CallOpenInterest = parseInt(dto.CallOpenInterest)
	row.PutIV = parseFloatPtr(dto.PutIV)
	row.PutDelta = parseFloatPtr(dto.PutDelta)
	row.PutGamma = parseFloatPtr(dto.PutGamma)
	row.PutOpenInterest = parseInt(dto.PutOpenInterest)

	return row, nil
}

func ParseExpireDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range expireDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("ParseExpireDate: unrecognized expiration date %q", s)
}

func parseNullDecimal(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.NullDecimal{}
	}

	return decimal.NewNullDecimal(d)
}

func parseFloatPtr(s string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}

	return &f
}

func parseInt(s string) int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}

	return 0
}
