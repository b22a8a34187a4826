package interest

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func defaultParams() Params {
	return Params{
		Compounding: CompoundMonthly,
		Posting:     PostMonthly,
		Method:      DailyBalance,
		DaysInYear:  365,
		AnnualRate:  dec("0.12"),
	}
}

func TestCalculatePeriods_FirstMonthDailyBalance(t *testing.T) {
	// 1000 on Jan 1, 500 more on Jan 10: nine days at 1000 then
	// twenty-two days at 1500.
	changes := []BalanceChange{
		{Date: date(2024, 1, 1), Amount: dec("1000")},
		{Date: date(2024, 1, 10), Amount: dec("500")},
	}

	periods := CalculatePeriods(date(2024, 1, 1), date(2024, 1, 31), decimal.Zero, changes, defaultParams())
	if len(periods) != 1 {
		t.Fatalf("expected 1 period, got %d", len(periods))
	}

	p := periods[0]
	if !p.Complete {
		t.Error("January should be a complete period")
	}
	if !p.PostingDate.Equal(date(2024, 2, 1)) {
		t.Errorf("posting date = %s, want 2024-02-01", p.PostingDate.Format("2006-01-02"))
	}
	if got := p.Interest.RoundBank(2).String(); got != "13.81" {
		// 1000*0.12/365*9 + 1500*0.12/365*22
		t.Errorf("interest = %s, want 13.81", got)
	}
	if !p.ClosingBalance.Equal(dec("1500")) {
		t.Errorf("closing balance = %s, want 1500", p.ClosingBalance)
	}
}

func TestCalculatePeriods_AverageDailyBalanceMatchesForSinglePeriod(t *testing.T) {
	// with one compounding slice the time-weighted average yields the
	// same interest as the daily method
	changes := []BalanceChange{
		{Date: date(2024, 1, 1), Amount: dec("1000")},
		{Date: date(2024, 1, 10), Amount: dec("500")},
	}
	params := defaultParams()
	params.Method = AverageDailyBalance

	periods := CalculatePeriods(date(2024, 1, 1), date(2024, 1, 31), decimal.Zero, changes, params)
	if len(periods) != 1 {
		t.Fatalf("expected 1 period, got %d", len(periods))
	}
	if got := periods[0].Interest.RoundBank(2).String(); got != "13.81" {
		t.Errorf("interest = %s, want 13.81", got)
	}
}

func TestCalculatePeriods_MinBalanceThreshold(t *testing.T) {
	changes := []BalanceChange{
		{Date: date(2024, 1, 1), Amount: dec("1000")},
		{Date: date(2024, 1, 10), Amount: dec("500")},
	}

	// daily method: only the 1500 stretch clears the threshold
	params := defaultParams()
	params.MinBalanceForInterest = dec("1200")
	periods := CalculatePeriods(date(2024, 1, 1), date(2024, 1, 31), decimal.Zero, changes, params)
	if got := periods[0].Interest.RoundBank(2).String(); got != "10.85" {
		t.Errorf("daily method interest = %s, want 10.85", got)
	}

	// average method: the period average (~1354.84) clears it, so the
	// whole period accrues
	params.Method = AverageDailyBalance
	periods = CalculatePeriods(date(2024, 1, 1), date(2024, 1, 31), decimal.Zero, changes, params)
	if got := periods[0].Interest.RoundBank(2).String(); got != "13.81" {
		t.Errorf("average method interest = %s, want 13.81", got)
	}
}

func TestCalculatePeriods_PartitionIsContiguous(t *testing.T) {
	params := defaultParams()
	params.Posting = PostQuarterly

	start := date(2024, 1, 15)
	upTo := date(2024, 7, 1)
	periods := CalculatePeriods(start, upTo, decimal.Zero, nil, params)

	if len(periods) != 3 {
		t.Fatalf("expected 3 periods, got %d", len(periods))
	}
	wantEnds := []time.Time{date(2024, 3, 31), date(2024, 6, 30), date(2024, 7, 1)}
	cursor := start
	for i, p := range periods {
		if !p.Interval.Start.Equal(cursor) {
			t.Errorf("period %d starts %s, want %s", i, p.Interval.Start, cursor)
		}
		if !p.Interval.End.Equal(wantEnds[i]) {
			t.Errorf("period %d ends %s, want %s", i, p.Interval.End, wantEnds[i])
		}
		cursor = p.Interval.End.AddDate(0, 0, 1)
	}
	if periods[2].Complete {
		t.Error("trailing partial quarter must not be complete")
	}
}

func TestCalculatePeriods_ManualPostingDateSplitsPeriod(t *testing.T) {
	params := defaultParams()
	params.ManualPostingDates = []time.Time{date(2024, 1, 20)}

	periods := CalculatePeriods(date(2024, 1, 1), date(2024, 1, 31), decimal.Zero, nil, params)
	if len(periods) != 2 {
		t.Fatalf("expected 2 periods, got %d", len(periods))
	}
	if !periods[0].Interval.End.Equal(date(2024, 1, 19)) {
		t.Errorf("first period ends %s, want 2024-01-19", periods[0].Interval.End)
	}
	if !periods[0].UserPosted || !periods[0].Complete {
		t.Error("manually ended period should be complete and user-posted")
	}
	if !periods[0].PostingDate.Equal(date(2024, 1, 20)) {
		t.Errorf("posting date = %s, want the manual date", periods[0].PostingDate)
	}
}

func TestCalculatePeriods_FinalizePartial(t *testing.T) {
	params := defaultParams()
	params.FinalizePartial = true

	changes := []BalanceChange{{Date: date(2024, 1, 1), Amount: dec("1000")}}
	periods := CalculatePeriods(date(2024, 1, 1), date(2024, 1, 15), decimal.Zero, changes, params)
	if len(periods) != 1 {
		t.Fatalf("expected 1 period, got %d", len(periods))
	}
	p := periods[0]
	if !p.Complete {
		t.Error("finalized partial must be postable")
	}
	if !p.PostingDate.Equal(date(2024, 1, 15)) {
		t.Errorf("posting date = %s, want the cut-off 2024-01-15", p.PostingDate)
	}
	// 15 days at 1000
	if got := p.Interest.RoundBank(2).String(); got != "4.93" {
		t.Errorf("interest = %s, want 4.93", got)
	}
}

func TestCalculatePeriods_CompoundingAddsInterestOnInterest(t *testing.T) {
	changes := []BalanceChange{{Date: date(2024, 1, 1), Amount: dec("1000")}}

	quarterlyCompound := defaultParams()
	quarterlyCompound.Posting = PostQuarterly
	quarterlyCompound.Compounding = CompoundQuarterly
	simple := CalculatePeriods(date(2024, 1, 1), date(2024, 3, 31), decimal.Zero, changes, quarterlyCompound)

	monthlyCompound := defaultParams()
	monthlyCompound.Posting = PostQuarterly
	compounded := CalculatePeriods(date(2024, 1, 1), date(2024, 3, 31), decimal.Zero, changes, monthlyCompound)

	if len(simple) != 1 || len(compounded) != 1 {
		t.Fatalf("expected single periods, got %d and %d", len(simple), len(compounded))
	}
	if !compounded[0].Interest.GreaterThan(simple[0].Interest) {
		t.Errorf("monthly compounding (%s) should beat quarterly (%s) over one quarter",
			compounded[0].Interest, simple[0].Interest)
	}
}

func TestCalculatePeriods_DailyCompounding(t *testing.T) {
	changes := []BalanceChange{{Date: date(2024, 1, 1), Amount: dec("1000")}}
	params := defaultParams()
	params.Compounding = CompoundDaily

	periods := CalculatePeriods(date(2024, 1, 1), date(2024, 1, 31), decimal.Zero, changes, params)
	got := periods[0].Interest
	// strictly more than simple interest (10.1918), but bounded
	if !got.GreaterThan(dec("10.19")) || !got.LessThan(dec("10.35")) {
		t.Errorf("daily compounded interest = %s, want within (10.19, 10.35)", got)
	}
}

func TestCalculatePeriods_OverdraftAccruesNegativeInterest(t *testing.T) {
	changes := []BalanceChange{{Date: date(2024, 1, 1), Amount: dec("-500")}}
	params := defaultParams()
	params.OverdraftRate = dec("0.18")

	periods := CalculatePeriods(date(2024, 1, 1), date(2024, 1, 31), decimal.Zero, changes, params)
	if !periods[0].Interest.IsNegative() {
		t.Errorf("overdraft stretch should accrue negative interest, got %s", periods[0].Interest)
	}

	// without an overdraft rate the stretch accrues nothing
	params.OverdraftRate = decimal.Zero
	periods = CalculatePeriods(date(2024, 1, 1), date(2024, 1, 31), decimal.Zero, changes, params)
	if !periods[0].Interest.IsZero() {
		t.Errorf("expected zero interest, got %s", periods[0].Interest)
	}
}

func TestCalculatePeriods_Deterministic(t *testing.T) {
	changes := []BalanceChange{
		{Date: date(2024, 1, 1), Amount: dec("1000")},
		{Date: date(2024, 2, 14), Amount: dec("-250")},
		{Date: date(2024, 3, 3), Amount: dec("777.77")},
	}
	params := defaultParams()
	params.Posting = PostQuarterly

	first := CalculatePeriods(date(2024, 1, 1), date(2024, 5, 20), decimal.Zero, changes, params)
	second := CalculatePeriods(date(2024, 1, 1), date(2024, 5, 20), decimal.Zero, changes, params)

	if len(first) != len(second) {
		t.Fatalf("period counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Interest.Equal(second[i].Interest) {
			t.Errorf("period %d interest differs: %s vs %s", i, first[i].Interest, second[i].Interest)
		}
		if !first[i].Interval.Start.Equal(second[i].Interval.Start) || !first[i].Interval.End.Equal(second[i].Interval.End) {
			t.Errorf("period %d boundaries differ", i)
		}
	}
}

func TestSegmentsFor(t *testing.T) {
	iv := Interval{Start: date(2024, 1, 1), End: date(2024, 1, 31)}
	changes := []BalanceChange{
		{Date: date(2024, 1, 10), Amount: dec("500")},
		{Date: date(2024, 1, 20), Amount: dec("-200")},
		{Date: date(2024, 2, 5), Amount: dec("999")}, // outside, ignored
	}

	segs := segmentsFor(iv, dec("1000"), changes)
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segs))
	}
	wantDays := []int{9, 10, 12}
	wantBalances := []string{"1000", "1500", "1300"}
	total := 0
	for i, s := range segs {
		if s.Days != wantDays[i] {
			t.Errorf("segment %d days = %d, want %d", i, s.Days, wantDays[i])
		}
		if s.Balance.String() != wantBalances[i] {
			t.Errorf("segment %d balance = %s, want %s", i, s.Balance, wantBalances[i])
		}
		total += s.Days
	}
	if total != 31 {
		t.Errorf("segments cover %d days, want 31", total)
	}
}
