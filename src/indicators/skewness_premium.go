package indicators

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/skew-entropy/src/eventmodels"
)

// SkewnessClampLimit bounds the premium. Values at or beyond it are replaced by zero.
const SkewnessClampLimit = 200.0

// SkewnessExtractor computes one skewness premium per quote date from the
// deepest out-of-the-money strikes with minDte < dte < maxDte.
type SkewnessExtractor struct {
	MinDte int
	MaxDte int
}

type pricedQuote struct {
	strike  decimal.Decimal
	callMid float64
	putMid  float64
}

func NewSkewnessExtractor(minDte, maxDte int) *SkewnessExtractor {
	return &SkewnessExtractor{
		MinDte: minDte,
		MaxDte: maxDte,
	}
}

// ExtractSkewnessPremium returns the ascending per-date skewness series.
func ExtractSkewnessPremium(quotes []*eventmodels.OptionQuote, minDte, maxDte int) []eventmodels.SkewnessPoint {
	return NewSkewnessExtractor(minDte, maxDte).Extract(quotes).Points
}

func (e *SkewnessExtractor) Extract(quotes []*eventmodels.OptionQuote) eventmodels.SkewnessResult {
	groups := e.groupByQuoteDate(quotes)

	quoteDates := make([]time.Time, 0, len(groups))
	for d := range groups {
		quoteDates = append(quoteDates, d)
	}
	sort.Slice(quoteDates, func(i, j int) bool { return quoteDates[i].Before(quoteDates[j]) })

	var result eventmodels.SkewnessResult
	var raw []eventmodels.SkewnessPoint
	for _, d := range quoteDates {
		premium, err := skewnessForDate(d, groups[d])
		if err != nil {
			log.Debugf("SkewnessExtractor: skipping quote date: %v", err)
			result.Skipped = append(result.Skipped, err)
			continue
		}

		raw = append(raw, eventmodels.SkewnessPoint{
			QuoteDate:       d,
			SkewnessPremium: clampSkewness(premium),
		})
	}

	result.Points = dedupByMax(raw)
	return result
}

// groupByQuoteDate keeps the quotes inside the maturity band whose call and
// put mids are both present and non-zero.
func (e *SkewnessExtractor) groupByQuoteDate(quotes []*eventmodels.OptionQuote) map[time.Time][]pricedQuote {
	groups := make(map[time.Time][]pricedQuote)
	for _, q := range quotes {
		if q == nil {
			continue
		}

		callMid, ok := q.CallMid()
		if !ok || callMid == 0 {
			continue
		}

		putMid, ok := q.PutMid()
		if !ok || putMid == 0 {
			continue
		}

		if q.DTE <= e.MinDte || q.DTE >= e.MaxDte {
			continue
		}

		d := truncateToDate(q.QuoteDate)
		groups[d] = append(groups[d], pricedQuote{
			strike:  q.Strike,
			callMid: callMid,
			putMid:  putMid,
		})
	}

	return groups
}

func skewnessForDate(quoteDate time.Time, group []pricedQuote) (float64, *eventmodels.NoValidSkewnessDataError) {
	callStrike, putStrike, found := extremeStrikes(group)
	if !found {
		return 0, &eventmodels.NoValidSkewnessDataError{QuoteDate: quoteDate, Reason: "no quotes in maturity band"}
	}

	var callMids, putMids []float64
	for _, q := range group {
		if q.strike.Equal(callStrike) {
			callMids = append(callMids, q.callMid)
		}
		if q.strike.Equal(putStrike) {
			putMids = append(putMids, q.putMid)
		}
	}

	if len(callMids) == 0 || len(putMids) == 0 {
		return 0, &eventmodels.NoValidSkewnessDataError{QuoteDate: quoteDate, Reason: "no rows at the extreme strikes"}
	}

	callMedian, err := stats.Median(callMids)
	if err != nil {
		return 0, &eventmodels.NoValidSkewnessDataError{QuoteDate: quoteDate, Reason: fmt.Sprintf("call median: %v", err)}
	}

	putMedian, err := stats.Median(putMids)
	if err != nil {
		return 0, &eventmodels.NoValidSkewnessDataError{QuoteDate: quoteDate, Reason: fmt.Sprintf("put median: %v", err)}
	}

	if !(callMedian > 0) || !(putMedian > 0) {
		return 0, &eventmodels.NoValidSkewnessDataError{
			QuoteDate: quoteDate,
			Reason:    fmt.Sprintf("non-positive median: call=%v put=%v", callMedian, putMedian),
		}
	}

	return putMedian/callMedian - 1, nil
}

// extremeStrikes returns the highest strike (deepest call) and the lowest
// strike (deepest put) across every expiry in the group.
func extremeStrikes(group []pricedQuote) (maxStrike, minStrike decimal.Decimal, found bool) {
	if len(group) == 0 {
		return decimal.Zero, decimal.Zero, false
	}

	maxStrike, minStrike = group[0].strike, group[0].strike
	for _, q := range group[1:] {
		if q.strike.GreaterThan(maxStrike) {
			maxStrike = q.strike
		}
		if q.strike.LessThan(minStrike) {
			minStrike = q.strike
		}
	}

	return maxStrike, minStrike, true
}

func clampSkewness(premium float64) float64 {
	if math.Abs(premium) < SkewnessClampLimit {
		return premium
	}

	return 0
}

// dedupByMax collapses multiple values for the same date to their maximum and
// returns the series sorted by date.
func dedupByMax(points []eventmodels.SkewnessPoint) []eventmodels.SkewnessPoint {
	byDate := make(map[time.Time]float64, len(points))
	for _, p := range points {
		d := truncateToDate(p.QuoteDate)
		if current, found := byDate[d]; !found || p.SkewnessPremium > current {
			byDate[d] = p.SkewnessPremium
		}
	}

	out := make([]eventmodels.SkewnessPoint, 0, len(byDate))
	for d, v := range byDate {
		out = append(out, eventmodels.SkewnessPoint{QuoteDate: d, SkewnessPremium: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuoteDate.Before(out[j].QuoteDate) })

	return out
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
