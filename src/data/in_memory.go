package data

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jiaming2012/skew-entropy/src/eventmodels"
)

// InMemoryOptionQuoteSource serves quotes from memory. It is used by tests
// and by the CLI when quotes are read straight from chain files.
type InMemoryOptionQuoteSource struct {
	mu     sync.Mutex
	quotes []*eventmodels.OptionQuote
}

func NewInMemoryOptionQuoteSource(quotes []*eventmodels.OptionQuote) *InMemoryOptionQuoteSource {
	return &InMemoryOptionQuoteSource{quotes: quotes}
}

func (s *InMemoryOptionQuoteSource) FetchOptionQuotes(ctx context.Context, startDate, endDate time.Time) ([]*eventmodels.OptionQuote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	endDate = resolveEndDate(endDate)
	start := truncateToDate(startDate)
	end := truncateToDate(endDate)

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*eventmodels.OptionQuote
	for _, q := range s.quotes {
		if !q.HasRequiredFields() {
			continue
		}

		d := truncateToDate(q.QuoteDate)
		if d.Before(start) || d.After(end) {
			continue
		}

		out = append(out, q)
	}

	return out, nil
}

func (s *InMemoryOptionQuoteSource) ReplaceQuoteDate(ctx context.Context, quoteDate time.Time, rows []*eventmodels.OptionChainRow) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	day := truncateToDate(quoteDate)

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.quotes[:0]
	for _, q := range s.quotes {
		if !truncateToDate(q.QuoteDate).Equal(day) {
			kept = append(kept, q)
		}
	}
	s.quotes = kept

	for _, row := range rows {
		q := row.OptionQuote
		s.quotes = append(s.quotes, &q)
	}

	return int64(len(rows)), nil
}

type InMemoryEntropyRunStore struct {
	mu   sync.Mutex
	runs map[uuid.UUID]*eventmodels.EntropyRun
}

func NewInMemoryEntropyRunStore() *InMemoryEntropyRunStore {
	return &InMemoryEntropyRunStore{
		runs: make(map[uuid.UUID]*eventmodels.EntropyRun),
	}
}

func (s *InMemoryEntropyRunStore) SaveEntropyRun(ctx context.Context, run *eventmodels.EntropyRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = run
	return nil
}

func (s *InMemoryEntropyRunStore) FetchEntropyRun(ctx context.Context, id uuid.UUID) (*eventmodels.EntropyRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, found := s.runs[id]
	if !found {
		return nil, newEntropyRunNotFoundError(id)
	}

	return run, nil
}

// EntropyRuns returns the stored runs, oldest first.
func (s *InMemoryEntropyRunStore) EntropyRuns() []*eventmodels.EntropyRun {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs := make([]*eventmodels.EntropyRun, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.Before(runs[j].CreatedAt)
	})

	return runs
}

func truncateToDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
