package data

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jiaming2012/skew-entropy/src/eventmodels"
)

// OptionQuoteSource returns the option quotes with start <= quote date <= end.
// A zero end date means today.
type OptionQuoteSource interface {
	FetchOptionQuotes(ctx context.Context, startDate, endDate time.Time) ([]*eventmodels.OptionQuote, error)
}

// OptionQuoteWriter replaces every stored row of a quote date.
type OptionQuoteWriter interface {
	ReplaceQuoteDate(ctx context.Context, quoteDate time.Time, rows []*eventmodels.OptionChainRow) (int64, error)
}

type EntropyRunStore interface {
	SaveEntropyRun(ctx context.Context, run *eventmodels.EntropyRun) error
	FetchEntropyRun(ctx context.Context, id uuid.UUID) (*eventmodels.EntropyRun, error)
}

// Models lists every table owned by this package, in migration order.
func Models() []interface{} {
	return []interface{}{
		&OptionQuoteRecord{},
		&EntropyRunRecord{},
		&EntropyPointRecord{},
	}
}

func resolveEndDate(endDate time.Time) time.Time {
	if endDate.IsZero() {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	return endDate
}

func newEntropyRunNotFoundError(id uuid.UUID) *eventmodels.WebError {
	return eventmodels.NewWebError(http.StatusNotFound, fmt.Sprintf("entropy run %s not found", id), nil)
}
