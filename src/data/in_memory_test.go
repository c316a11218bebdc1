package data

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/skew-entropy/src/eventmodels"
)

func day(s string) time.Time {
	d, err := time.Parse(eventmodels.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func newChainRow(quoteDate, expireDate string, strike float64) *eventmodels.OptionChainRow {
	row := eventmodels.NewOptionChainRow(day(quoteDate), day(expireDate), decimal.NewFromFloat(strike), 5500)
	row.CallBid = decimal.NewNullDecimal(decimal.NewFromFloat(1.0))
	row.CallAsk = decimal.NewNullDecimal(decimal.NewFromFloat(1.2))
	row.PutBid = decimal.NewNullDecimal(decimal.NewFromFloat(2.0))
	row.PutAsk = decimal.NewNullDecimal(decimal.NewFromFloat(2.2))
	return row
}

func quotesOf(rows ...*eventmodels.OptionChainRow) []*eventmodels.OptionQuote {
	quotes := make([]*eventmodels.OptionQuote, len(rows))
	for i, row := range rows {
		q := row.OptionQuote
		quotes[i] = &q
	}
	return quotes
}

func TestInMemoryOptionQuoteSource(t *testing.T) {
	ctx := context.Background()

	t.Run("date range is inclusive", func(t *testing.T) {
		source := NewInMemoryOptionQuoteSource(quotesOf(
			newChainRow("2024-07-01", "2024-08-30", 6000),
			newChainRow("2024-07-02", "2024-08-30", 6000),
			newChainRow("2024-07-03", "2024-08-30", 6000),
			newChainRow("2024-07-04", "2024-08-30", 6000),
		))

		quotes, err := source.FetchOptionQuotes(ctx, day("2024-07-02"), day("2024-07-03"))
		require.NoError(t, err)
		require.Len(t, quotes, 2)
		assert.Equal(t, day("2024-07-02"), quotes[0].QuoteDate)
		assert.Equal(t, day("2024-07-03"), quotes[1].QuoteDate)
	})

	t.Run("rows missing prices are excluded", func(t *testing.T) {
		incomplete := newChainRow("2024-07-01", "2024-08-30", 4000)
		incomplete.PutAsk = decimal.NullDecimal{}

		source := NewInMemoryOptionQuoteSource(quotesOf(incomplete, newChainRow("2024-07-01", "2024-08-30", 6000)))

		quotes, err := source.FetchOptionQuotes(ctx, day("2024-07-01"), day("2024-07-01"))
		require.NoError(t, err)
		require.Len(t, quotes, 1)
		assert.True(t, quotes[0].Strike.Equal(decimal.NewFromInt(6000)))
	})

	t.Run("zero end date means today", func(t *testing.T) {
		today := time.Now().UTC()
		row := eventmodels.NewOptionChainRow(today, today.AddDate(0, 2, 0), decimal.NewFromInt(6000), 5500)
		row.CallBid = decimal.NewNullDecimal(decimal.NewFromFloat(1.0))
		row.CallAsk = decimal.NewNullDecimal(decimal.NewFromFloat(1.2))
		row.PutBid = decimal.NewNullDecimal(decimal.NewFromFloat(2.0))
		row.PutAsk = decimal.NewNullDecimal(decimal.NewFromFloat(2.2))

		future := newChainRow("2999-01-01", "2999-03-01", 6000)
		source := NewInMemoryOptionQuoteSource(quotesOf(row, future))

		quotes, err := source.FetchOptionQuotes(ctx, today.AddDate(0, 0, -1), time.Time{})
		require.NoError(t, err)
		assert.Len(t, quotes, 1)
	})

	t.Run("replace quote date", func(t *testing.T) {
		source := NewInMemoryOptionQuoteSource(quotesOf(
			newChainRow("2024-07-01", "2024-08-30", 6000),
			newChainRow("2024-07-02", "2024-08-30", 6000),
		))

		n, err := source.ReplaceQuoteDate(ctx, day("2024-07-01"), []*eventmodels.OptionChainRow{
			newChainRow("2024-07-01", "2024-08-30", 6100),
			newChainRow("2024-07-01", "2024-08-30", 4100),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		quotes, err := source.FetchOptionQuotes(ctx, day("2024-07-01"), day("2024-07-01"))
		require.NoError(t, err)
		require.Len(t, quotes, 2)
		for _, q := range quotes {
			assert.False(t, q.Strike.Equal(decimal.NewFromInt(6000)))
		}

		quotes, err = source.FetchOptionQuotes(ctx, day("2024-07-02"), day("2024-07-02"))
		require.NoError(t, err)
		assert.Len(t, quotes, 1)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := NewInMemoryOptionQuoteSource(nil).FetchOptionQuotes(cancelled, day("2024-07-01"), day("2024-07-02"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestInMemoryEntropyRunStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryEntropyRunStore()

	run := eventmodels.NewEntropyRun(day("2024-01-01"), day("2024-07-01"), 28, 118)
	run.Points = []eventmodels.EntropyPoint{{Date: day("2024-06-28"), Entropy: 0.42, Skewness: -0.6}}

	require.NoError(t, store.SaveEntropyRun(ctx, run))

	found, err := store.FetchEntropyRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run, found)
	assert.Len(t, store.EntropyRuns(), 1)

	_, err = store.FetchEntropyRun(ctx, uuid.New())
	var webErr *eventmodels.WebError
	require.True(t, errors.As(err, &webErr))
	assert.Equal(t, 404, webErr.StatusCode)
}
