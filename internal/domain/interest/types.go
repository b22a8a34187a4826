// Package interest partitions an account's life into posting and
// compounding periods and computes the interest accrued in each. It is
// purely computational: amounts are raw decimals, rounding to currency
// precision is the caller's concern.
package interest

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompoundingType is the frequency at which accrued interest starts
// itself earning interest.
type CompoundingType string

const (
	CompoundDaily      CompoundingType = "daily"
	CompoundWeekly     CompoundingType = "weekly"
	CompoundMonthly    CompoundingType = "monthly"
	CompoundQuarterly  CompoundingType = "quarterly"
	CompoundSemiAnnual CompoundingType = "semi_annual"
	CompoundAnnual     CompoundingType = "annual"
)

// PostingType is the frequency at which computed interest is materialized
// as a ledger transaction.
type PostingType string

const (
	PostMonthly   PostingType = "monthly"
	PostQuarterly PostingType = "quarterly"
	PostBiAnnual  PostingType = "biannual"
	PostAnnual    PostingType = "annual"
)

// months returns the posting frequency length in months.
func (p PostingType) months() int {
	switch p {
	case PostQuarterly:
		return 3
	case PostBiAnnual:
		return 6
	case PostAnnual:
		return 12
	default:
		return 1
	}
}

// CalculationMethod selects how the balance is sampled inside a
// compounding period.
type CalculationMethod string

const (
	// DailyBalance accrues on the exact balance held each calendar day.
	DailyBalance CalculationMethod = "daily_balance"
	// AverageDailyBalance accrues on the time-weighted average balance of
	// the whole compounding period.
	AverageDailyBalance CalculationMethod = "average_daily_balance"
)

// Params carries everything needed to compute interest for one account.
type Params struct {
	Compounding CompoundingType
	Posting     PostingType
	Method      CalculationMethod
	// DaysInYear is the day-count convention, 360 or 365.
	DaysInYear int
	// AnnualRate is the nominal annual rate as a fraction (0.12 = 12%).
	AnnualRate decimal.Decimal
	// OverdraftRate applies to negative balance stretches; zero disables
	// overdraft interest.
	OverdraftRate decimal.Decimal
	// MinBalanceForInterest: balances below this accrue nothing.
	MinBalanceForInterest decimal.Decimal
	// FinancialYearStart shifts quarterly/biannual/annual boundaries.
	FinancialYearStart time.Month
	// ManualPostingDates force extra posting boundaries the day before
	// each listed date.
	ManualPostingDates []time.Time
	// FinalizePartial treats the trailing partial period as postable as
	// of its cut-off date (account closure or transfer).
	FinalizePartial bool
}

// BalanceChange is one signed ledger movement on a given day. Inputs must
// exclude interest postings: the engine re-derives those.
type BalanceChange struct {
	Date   time.Time
	Amount decimal.Decimal
}

// Interval is a [Start, End] day span, both ends inclusive.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of calendar days covered.
func (iv Interval) Days() int {
	return daysBetween(iv.Start, iv.End) + 1
}

// Contains reports whether d falls inside the interval.
func (iv Interval) Contains(d time.Time) bool {
	return !beforeDay(d, iv.Start) && !afterDay(d, iv.End)
}

// PostingPeriod is one computed slice of accrued interest.
type PostingPeriod struct {
	Interval       Interval
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
	// Interest is unrounded; the caller rounds at currency precision.
	Interest decimal.Decimal
	// PostingDate is the day the interest transaction is dated: the day
	// after the period ends, or the cut-off itself for finalized partials.
	PostingDate time.Time
	// Complete is false for a trailing period cut short by the
	// computation horizon.
	Complete bool
	// UserPosted marks periods ended by a manual posting date.
	UserPosted bool
}

// date helpers, day granularity in UTC

func toDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func beforeDay(a, b time.Time) bool { return toDate(a).Before(toDate(b)) }
func afterDay(a, b time.Time) bool  { return toDate(a).After(toDate(b)) }
func sameDay(a, b time.Time) bool   { return toDate(a).Equal(toDate(b)) }

func daysBetween(a, b time.Time) int {
	return int(toDate(b).Sub(toDate(a)).Hours() / 24)
}

func minDay(a, b time.Time) time.Time {
	if beforeDay(b, a) {
		return b
	}
	return a
}

func endOfMonth(t time.Time) time.Time {
	d := toDate(t)
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1)
}
