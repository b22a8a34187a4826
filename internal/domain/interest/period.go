package interest

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalculatePeriods partitions [start, upTo] into posting periods and
// computes the interest accrued in each. The union of the returned
// intervals is exactly [start, upTo] and they never overlap. Given the
// same inputs the result is identical on every call; the replay engine
// depends on that.
func CalculatePeriods(start, upTo time.Time, opening decimal.Decimal, changes []BalanceChange, p Params) []PostingPeriod {
	start = toDate(start)
	upTo = toDate(upTo)
	if afterDay(start, upTo) {
		return nil
	}

	intervals := postingIntervals(start, upTo, p)
	periods := make([]PostingPeriod, 0, len(intervals))

	// Interest compounds across posting periods: a posted amount is not a
	// balance change for calculation purposes, so the compounded figure is
	// carried forward here instead.
	compounded := decimal.Zero
	uncompounded := decimal.Zero
	periodOpening := opening

	for _, iv := range intervals {
		period := PostingPeriod{
			Interval:       iv,
			OpeningBalance: periodOpening,
			Complete:       sameDay(iv.End, naturalPeriodEnd(iv.Start, p.Posting.months(), p.FinancialYearStart)) || isManualEnd(iv.End, p.ManualPostingDates),
			UserPosted:     isManualEnd(iv.End, p.ManualPostingDates),
		}

		total := decimal.Zero
		sliceOpening := periodOpening
		for _, slice := range compoundingSlices(iv, p) {
			segs := segmentsFor(slice.iv, sliceOpening, changes)
			interest := p.sliceInterest(segs, slice, compounded)
			total = total.Add(interest)
			uncompounded = uncompounded.Add(interest)
			if slice.complete {
				compounded = compounded.Add(uncompounded)
				uncompounded = decimal.Zero
			}
			sliceOpening = closingBalanceOf(segs, sliceOpening)
		}

		period.Interest = total
		period.ClosingBalance = sliceOpening
		period.PostingDate = iv.End.AddDate(0, 0, 1)
		if !period.Complete && p.FinalizePartial {
			// Closure or transfer: the open partial period is settled as
			// of the cut-off date itself.
			period.PostingDate = iv.End
			period.Complete = true
		}

		periods = append(periods, period)
		periodOpening = period.ClosingBalance
	}

	return periods
}

// postingIntervals splits [start, upTo] at posting-frequency boundaries
// and at manual posting dates.
func postingIntervals(start, upTo time.Time, p Params) []Interval {
	months := p.Posting.months()

	var intervals []Interval
	cur := start
	for !afterDay(cur, upTo) {
		end := minDay(naturalPeriodEnd(cur, months, p.FinancialYearStart), upTo)
		// A manual posting on date D closes the running period at D-1.
		for _, manual := range p.ManualPostingDates {
			boundary := toDate(manual).AddDate(0, 0, -1)
			if !beforeDay(boundary, cur) && beforeDay(boundary, end) {
				end = boundary
			}
		}
		intervals = append(intervals, Interval{Start: cur, End: end})
		cur = end.AddDate(0, 0, 1)
	}
	return intervals
}

// naturalPeriodEnd returns the last day of the frequency period that
// contains d. For monthly that is the end of d's month; for longer
// frequencies the boundary months are anchored on the financial year
// start month.
func naturalPeriodEnd(d time.Time, months int, fyStart time.Month) time.Time {
	if fyStart == 0 {
		fyStart = time.January
	}
	m := toDate(d)
	for i := 0; i < 12; i++ {
		offset := (int(m.Month()) - int(fyStart) + 12) % 12
		if offset%months == months-1 {
			end := endOfMonth(m)
			if !beforeDay(end, d) {
				return end
			}
		}
		m = time.Date(m.Year(), m.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	}
	// months always divides 12, so a boundary month exists within a year
	return endOfMonth(d)
}

func isManualEnd(end time.Time, manualDates []time.Time) bool {
	for _, manual := range manualDates {
		if sameDay(end, toDate(manual).AddDate(0, 0, -1)) {
			return true
		}
	}
	return false
}

// compoundingSlice is one compounding sub-interval of a posting period.
type compoundingSlice struct {
	iv Interval
	// complete is true when the slice ends on a natural compounding
	// boundary; only then does its interest start compounding.
	complete bool
}

func compoundingSlices(iv Interval, p Params) []compoundingSlice {
	switch p.Compounding {
	case CompoundDaily:
		// single slice, compounded per day inside sliceInterest
		return []compoundingSlice{{iv: iv, complete: true}}
	case CompoundWeekly:
		return weeklySlices(iv)
	default:
		months := compoundingMonths(p.Compounding)
		var slices []compoundingSlice
		cur := iv.Start
		for !afterDay(cur, iv.End) {
			natural := naturalPeriodEnd(cur, months, p.FinancialYearStart)
			end := minDay(natural, iv.End)
			slices = append(slices, compoundingSlice{iv: Interval{Start: cur, End: end}, complete: sameDay(end, natural)})
			cur = end.AddDate(0, 0, 1)
		}
		return slices
	}
}

// weeklySlices cuts seven-day stretches anchored on the period start.
func weeklySlices(iv Interval) []compoundingSlice {
	var slices []compoundingSlice
	cur := iv.Start
	for !afterDay(cur, iv.End) {
		natural := cur.AddDate(0, 0, 6)
		end := minDay(natural, iv.End)
		slices = append(slices, compoundingSlice{iv: Interval{Start: cur, End: end}, complete: sameDay(end, natural)})
		cur = end.AddDate(0, 0, 1)
	}
	return slices
}

func compoundingMonths(c CompoundingType) int {
	switch c {
	case CompoundQuarterly:
		return 3
	case CompoundSemiAnnual:
		return 6
	case CompoundAnnual:
		return 12
	default:
		return 1
	}
}

// sliceInterest computes the interest of one compounding slice.
// compounded is interest already earning interest from earlier slices.
func (p Params) sliceInterest(segments []BalanceSegment, slice compoundingSlice, compounded decimal.Decimal) decimal.Decimal {
	daysInYear := decimal.NewFromInt(int64(p.DaysInYear))

	if p.Method == AverageDailyBalance {
		avg := averageBalance(segments)
		days := decimal.NewFromInt(int64(slice.iv.Days()))
		switch {
		case avg.IsNegative():
			if p.OverdraftRate.IsZero() {
				return decimal.Zero
			}
			return avg.Add(compounded).Mul(p.OverdraftRate).Div(daysInYear).Mul(days)
		case avg.GreaterThanOrEqual(p.MinBalanceForInterest):
			return avg.Add(compounded).Mul(p.AnnualRate).Div(daysInYear).Mul(days)
		default:
			return decimal.Zero
		}
	}

	// daily balance method
	total := decimal.Zero
	dailyCompounded := compounded
	for _, seg := range segments {
		days := decimal.NewFromInt(int64(seg.Days))
		base := seg.Balance.Add(dailyCompounded)
		var interest decimal.Decimal
		switch {
		case seg.Balance.IsNegative():
			if p.OverdraftRate.IsZero() {
				continue
			}
			interest = base.Mul(p.OverdraftRate).Div(daysInYear).Mul(days)
		case seg.Balance.GreaterThanOrEqual(p.MinBalanceForInterest):
			if p.Compounding == CompoundDaily {
				// compounds every day: balance*((1+r/n)^days - 1)
				factor := decimal.NewFromInt(1).Add(p.AnnualRate.Div(daysInYear))
				interest = base.Mul(factor.Pow(days).Sub(decimal.NewFromInt(1)))
			} else {
				interest = base.Mul(p.AnnualRate).Div(daysInYear).Mul(days)
			}
		default:
			continue
		}
		total = total.Add(interest)
		if p.Compounding == CompoundDaily {
			dailyCompounded = dailyCompounded.Add(interest)
		}
	}
	return total
}
