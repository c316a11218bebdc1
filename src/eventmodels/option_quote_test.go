package eventmodels

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionQuoteMids(t *testing.T) {
	q := &OptionQuote{
		QuoteDate:  time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
		ExpireDate: time.Date(2024, 8, 30, 0, 0, 0, 0, time.UTC),
		CallBid:    decimal.NewNullDecimal(decimal.RequireFromString("1.05")),
		CallAsk:    decimal.NewNullDecimal(decimal.RequireFromString("1.15")),
		PutBid:     decimal.NewNullDecimal(decimal.RequireFromString("3")),
	}

	mid, ok := q.CallMid()
	require.True(t, ok)
	assert.InDelta(t, 1.1, mid, 1e-12)

	_, ok = q.PutMid()
	assert.False(t, ok)
	assert.False(t, q.HasRequiredFields())

	q.PutAsk = decimal.NewNullDecimal(decimal.RequireFromString("4"))
	mid, ok = q.PutMid()
	require.True(t, ok)
	assert.Equal(t, 3.5, mid)
	assert.True(t, q.HasRequiredFields())
}

func TestDaysBetween(t *testing.T) {
	quoteDate := time.Date(2024, 7, 15, 16, 15, 0, 0, time.UTC)
	assert.Equal(t, 46, DaysBetween(quoteDate, time.Date(2024, 8, 30, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, DaysBetween(quoteDate, quoteDate))
	assert.Equal(t, -1, DaysBetween(quoteDate, time.Date(2024, 7, 14, 0, 0, 0, 0, time.UTC)))
}

func TestOptionChainCsvDTO(t *testing.T) {
	quoteDate := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)

	t.Run("to model", func(t *testing.T) {
		dto := &OptionChainCsvDTO{
			ExpireDate:      "Fri Aug 30 2024",
			CallBid:         "1.00",
			CallAsk:         "1.20",
			CallVolume:      "1,204",
			CallIV:          "0.1512",
			Strike:          "6000",
			PutBid:          "400.1",
			PutAsk:          "",
			PutOpenInterest: "901",
		}

		row, err := dto.ToModel(quoteDate, 5631.22)
		require.NoError(t, err)

		assert.Equal(t, 46, row.DTE)
		assert.True(t, row.Strike.Equal(decimal.NewFromInt(6000)))
		assert.True(t, row.CallBid.Valid)
		assert.False(t, row.PutAsk.Valid)
		assert.Equal(t, int64(1204), row.CallVolume)
		assert.Equal(t, int64(901), row.PutOpenInterest)
		require.NotNil(t, row.CallIV)
		assert.Nil(t, row.PutIV)
		assert.Equal(t, 5631.22, row.UnderlyingLast)
	})

	t.Run("invalid expire date", func(t *testing.T) {
		_, err := (&OptionChainCsvDTO{ExpireDate: "soon", Strike: "6000"}).ToModel(quoteDate, 0)
		assert.Error(t, err)
	})

	t.Run("invalid strike", func(t *testing.T) {
		_, err := (&OptionChainCsvDTO{ExpireDate: "2024-08-30", Strike: ""}).ToModel(quoteDate, 0)
		assert.Error(t, err)
	})

	t.Run("blank", func(t *testing.T) {
		assert.True(t, (&OptionChainCsvDTO{Strike: "  "}).IsBlank())
		assert.False(t, (&OptionChainCsvDTO{PutGamma: "0.1"}).IsBlank())
	})
}

func TestParseExpireDate(t *testing.T) {
	expected := time.Date(2024, 8, 2, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"Fri Aug 02 2024", "Fri Aug 2 2024", "2024-08-02", "08/02/2024", "8/2/2024"} {
		d, err := ParseExpireDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, expected, d, s)
	}
}

func TestToWebError(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
	}{
		{"insufficient data", &InsufficientDataError{Length: 1, Required: 3}, http.StatusBadRequest},
		{"alignment", &DataAlignmentError{SeriesLength: 2, DatesLength: 3}, http.StatusBadRequest},
		{"parameter", &InvalidParameterError{Name: "windowWidth", Value: 1}, http.StatusBadRequest},
		{"web error", NewWebError(http.StatusNotFound, "missing", nil), http.StatusNotFound},
		{"other", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			webErr := ToWebError("test", tc.err)
			assert.Equal(t, tc.status, webErr.StatusCode)
			assert.ErrorIs(t, webErr, tc.err)
		})
	}
}
