package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/godeposit/internal/domain/interest"
)

var oneHundred = decimal.NewFromInt(100)

// interestParams maps the account configuration onto the computation
// engine's inputs.
func (a *Account) interestParams(finalize bool) interest.Params {
	return interest.Params{
		Compounding:           a.CompoundingPeriod,
		Posting:               a.PostingPeriod,
		Method:                a.CalculationMethod,
		DaysInYear:            a.DaysInYear,
		AnnualRate:            a.NominalAnnualRate.Div(oneHundred),
		OverdraftRate:         a.OverdraftRate.Div(oneHundred),
		MinBalanceForInterest: a.MinBalanceForInterest,
		FinancialYearStart:    a.FinancialYearStart,
		ManualPostingDates:    a.ManualPostingDates,
		FinalizePartial:       finalize,
	}
}

// prematureInterestParams deducts the penalty from the nominal rate, the
// rate the whole elapsed term is re-priced at on premature closure.
func (a *Account) prematureInterestParams() interest.Params {
	p := a.interestParams(true)
	rate := a.NominalAnnualRate.Sub(a.Term.PrematurePenaltyRate)
	if rate.IsNegative() {
		rate = decimal.Zero
	}
	p.AnnualRate = rate.Div(oneHundred)
	return p
}

// balanceChanges projects the ledger into the interest engine's input:
// every live movement except interest postings, which the engine
// re-derives itself.
func (a *Account) balanceChanges() []interest.BalanceChange {
	changes := make([]interest.BalanceChange, 0, len(a.Transactions))
	for _, tx := range a.Transactions {
		if tx.Reversed || tx.Type == TypeInterestPosting || tx.Type == TypeOverdraftInterest {
			continue
		}
		changes = append(changes, interest.BalanceChange{
			Date:   tx.TransactionDate,
			Amount: tx.SignedAmount(),
		})
	}
	return changes
}

// CalculateInterest projects accrued interest from activation up to and
// including upTo. It never mutates the account; callers use it for
// previews and projections.
func (a *Account) CalculateInterest(upTo time.Time) ([]interest.PostingPeriod, error) {
	return a.calculateInterestWithParams(upTo, a.interestParams(false))
}

func (a *Account) calculateInterestWithParams(upTo time.Time, params interest.Params) ([]interest.PostingPeriod, error) {
	if a.ActivatedOn == nil {
		return nil, ErrInterestNotStarted
	}
	if BeforeDay(upTo, *a.ActivatedOn) {
		return nil, ErrInterestNotStarted
	}
	if a.NominalAnnualRate.IsZero() && params.OverdraftRate.IsZero() {
		return nil, ErrNoInterestRate
	}
	return interest.CalculatePeriods(*a.ActivatedOn, ToDate(upTo), decimal.Zero, a.balanceChanges(), params), nil
}

// PostInterest materializes interest postings for every completed period
// up to upTo. Already-posted periods whose recomputed amount still
// matches are left alone; stale ones are reversed and re-posted, so the
// set of live postings is always non-overlapping and contiguous.
// finalize settles the open partial period too (closure, transfer).
func (a *Account) PostInterest(idGen func() string, upTo time.Time, finalize bool, now time.Time) error {
	return a.postInterestWithParams(idGen, upTo, now, a.interestParams(finalize))
}

func (a *Account) postInterestWithParams(idGen func() string, upTo time.Time, now time.Time, params interest.Params) error {
	upTo = ToDate(upTo)
	if a.LastInterestPostedOn != nil && AfterDay(*a.LastInterestPostedOn, upTo) {
		return ErrInterestPostedAfter
	}
	periods, err := a.calculateInterestWithParams(upTo, params)
	if err != nil {
		return err
	}

	// Two periods can share a posting date: closing on the first of a
	// month settles both the finished month and the one-day stub on the
	// same day. Aggregate per date before reconciling.
	type postingTotal struct {
		date   time.Time
		earned decimal.Decimal
	}
	var totals []postingTotal
	index := make(map[time.Time]int, len(periods))
	for i := range periods {
		period := &periods[i]
		if AfterDay(period.PostingDate, upTo) || !period.Complete {
			continue
		}
		if at, ok := index[period.PostingDate]; ok {
			totals[at].earned = totals[at].earned.Add(period.Interest)
			continue
		}
		index[period.PostingDate] = len(totals)
		totals = append(totals, postingTotal{date: period.PostingDate, earned: period.Interest})
	}

	mutated := false
	var lastPosted *time.Time
	for _, total := range totals {
		changed, err := a.reconcilePosting(idGen, total.date, NewMoney(a.Currency, total.earned), now)
		if err != nil {
			return err
		}
		mutated = mutated || changed
		d := total.date
		lastPosted = &d
	}

	// A posting dated off every computed period boundary is orphaned, for
	// example one finalized mid-period for a transfer that was then
	// rejected. Reverse it so the ledger carries each day's interest once.
	for _, tx := range a.Transactions {
		if tx.Reversed || (tx.Type != TypeInterestPosting && tx.Type != TypeOverdraftInterest) {
			continue
		}
		if AfterDay(tx.TransactionDate, upTo) {
			continue
		}
		if _, ok := index[tx.TransactionDate]; !ok {
			tx.Reversed = true
			mutated = true
		}
	}

	if lastPosted != nil && (a.LastInterestPostedOn == nil || AfterDay(*lastPosted, *a.LastInterestPostedOn)) {
		a.LastInterestPostedOn = lastPosted
	}
	if mutated {
		return a.RecalculateRunningBalances()
	}
	return nil
}

// reconcilePosting brings the posting dated postingDate in line with the
// computed amount: append when missing, reverse-and-repost when stale.
func (a *Account) reconcilePosting(idGen func() string, postingDate time.Time, earned Money, now time.Time) (bool, error) {
	existing := a.findInterestPostingOn(postingDate)

	if existing != nil && existing.postedAmount().Equal(earned.Amount()) {
		return false, nil
	}

	if existing != nil {
		existing.Reversed = true
	}
	if earned.IsZero() {
		return existing != nil, nil
	}

	txType := TypeInterestPosting
	amount := earned.Amount()
	if earned.IsNegative() {
		txType = TypeOverdraftInterest
		amount = amount.Neg()
	}
	tx := &Transaction{
		ID:              idGen(),
		Type:            txType,
		Amount:          NewMoney(a.Currency, amount),
		TransactionDate: postingDate,
		CreatedAt:       now.UTC(),
		Seq:             a.NextSeq,
	}
	a.NextSeq++
	a.Transactions = append(a.Transactions, tx)
	return true, nil
}

// findInterestPostingOn returns the live posting dated date, if any.
func (a *Account) findInterestPostingOn(date time.Time) *Transaction {
	for _, tx := range a.Transactions {
		if tx.Reversed {
			continue
		}
		if (tx.Type == TypeInterestPosting || tx.Type == TypeOverdraftInterest) && tx.OccursOn(date) {
			return tx
		}
	}
	return nil
}

// postedAmount returns the signed interest amount a posting represents.
func (tx *Transaction) postedAmount() decimal.Decimal {
	if tx.Type == TypeOverdraftInterest {
		return tx.Amount.Amount().Neg()
	}
	return tx.Amount.Amount()
}
