package interest

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// BalanceSegment is a stretch of days over which the balance is constant.
type BalanceSegment struct {
	Start   time.Time
	Balance decimal.Decimal
	Days    int
}

// segmentsFor slices an interval into constant-balance stretches.
// openingBalance is the balance at the start of the interval, before any
// change dated on the start day; changes dated inside the interval take
// effect on their own day.
func segmentsFor(iv Interval, openingBalance decimal.Decimal, changes []BalanceChange) []BalanceSegment {
	// net change per day inside the interval
	perDay := make(map[time.Time]decimal.Decimal)
	days := make([]time.Time, 0, len(changes))
	for _, c := range changes {
		d := toDate(c.Date)
		if !iv.Contains(d) {
			continue
		}
		if _, ok := perDay[d]; !ok {
			days = append(days, d)
		}
		perDay[d] = perDay[d].Add(c.Amount)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	var segments []BalanceSegment
	balance := openingBalance
	cursor := toDate(iv.Start)
	for _, d := range days {
		if afterDay(d, cursor) {
			segments = append(segments, BalanceSegment{
				Start:   cursor,
				Balance: balance,
				Days:    daysBetween(cursor, d),
			})
			cursor = d
		}
		balance = balance.Add(perDay[d])
	}
	if !afterDay(cursor, iv.End) {
		segments = append(segments, BalanceSegment{
			Start:   cursor,
			Balance: balance,
			Days:    daysBetween(cursor, iv.End) + 1,
		})
	}
	return segments
}

// closingBalanceOf returns the balance after the last segment.
func closingBalanceOf(segments []BalanceSegment, opening decimal.Decimal) decimal.Decimal {
	if len(segments) == 0 {
		return opening
	}
	return segments[len(segments)-1].Balance
}

// averageBalance returns the time-weighted average over the segments.
func averageBalance(segments []BalanceSegment) decimal.Decimal {
	total := decimal.Zero
	days := 0
	for _, s := range segments {
		total = total.Add(s.Balance.Mul(decimal.NewFromInt(int64(s.Days))))
		days += s.Days
	}
	if days == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(days)))
}
