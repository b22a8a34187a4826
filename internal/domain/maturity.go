package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/godeposit/internal/domain/interest"
)

// UpdateMaturityDateAndAmount reprojects a term deposit's maturity. For
// the normal path the projection runs prospectively from activation to
// the contracted maturity date, compounding with the same period logic
// the accrual engine uses retrospectively. With prematureClosure the
// horizon is asOf and the penalty rate applies.
func (a *Account) UpdateMaturityDateAndAmount(prematureClosure bool, asOf time.Time) error {
	if !a.Kind.IsTermDeposit() || a.Term == nil {
		return ErrNotTermDeposit
	}
	if a.ActivatedOn == nil {
		return ErrInterestNotStarted
	}
	activation := *a.ActivatedOn

	maturityDate := activation.AddDate(0, a.Term.DepositPeriodMonths, 0)
	horizon := maturityDate
	params := a.interestParams(true)
	if prematureClosure {
		horizon = ToDate(asOf)
		params = a.prematureInterestParams()
	} else {
		a.Term.MaturityDate = &maturityDate
	}

	changes := a.projectedChanges(horizon, prematureClosure)
	periods := interest.CalculatePeriods(activation, horizon, decimal.Zero, changes, params)

	principal := decimal.Zero
	for _, c := range changes {
		principal = principal.Add(c.Amount)
	}
	totalInterest := decimal.Zero
	for _, p := range periods {
		totalInterest = totalInterest.Add(NewMoney(a.Currency, p.Interest).Amount())
	}
	a.Term.MaturityAmount = NewMoney(a.Currency, principal.Add(totalInterest)).Amount()
	return nil
}

// projectedChanges is the actual ledger plus, for recurring deposits on
// the normal path, the not-yet-due mandatory installments assumed paid on
// their due dates.
func (a *Account) projectedChanges(horizon time.Time, prematureClosure bool) []interest.BalanceChange {
	changes := a.balanceChanges()
	if prematureClosure || a.Kind != KindRecurringDeposit || a.Recurrence == nil {
		return changes
	}
	for _, inst := range a.Recurrence.Installments {
		outstanding := inst.Amount.Sub(inst.Deposited)
		if !outstanding.IsPositive() || AfterDay(inst.DueDate, horizon) {
			continue
		}
		if a.hasDepositOnOrAfter(inst.DueDate) {
			continue
		}
		changes = append(changes, interest.BalanceChange{Date: inst.DueDate, Amount: outstanding})
	}
	return changes
}

// hasDepositOnOrAfter guards against double counting an installment that
// was in fact already paid.
func (a *Account) hasDepositOnOrAfter(date time.Time) bool {
	for _, tx := range a.Transactions {
		if tx.Reversed || tx.Type != TypeDeposit {
			continue
		}
		if OnOrAfterDay(tx.TransactionDate, date) {
			return true
		}
	}
	return false
}

// PrematureClosureAmount quotes the payout for closing on asOf at the
// penalty rate: principal plus penalty-rate interest, net of any
// closure charges still outstanding. Interest is aggregated per posting
// date before rounding, the same way ClosePrematurely materializes
// postings, so the preview matches the withdrawal the commit makes.
func (a *Account) PrematureClosureAmount(asOf time.Time) (Money, error) {
	if !a.Kind.IsTermDeposit() || a.Term == nil {
		return ZeroMoney(a.Currency), ErrNotTermDeposit
	}
	if !a.Term.PrematureClosureAllowed {
		return ZeroMoney(a.Currency), ErrPrematureClosureNotAllowed
	}
	if a.ActivatedOn == nil {
		return ZeroMoney(a.Currency), ErrInterestNotStarted
	}
	asOf = ToDate(asOf)

	periods, err := a.calculateInterestWithParams(asOf, a.prematureInterestParams())
	if err != nil && !errors.Is(err, ErrNoInterestRate) {
		return ZeroMoney(a.Currency), err
	}

	principal := decimal.Zero
	for _, c := range a.balanceChanges() {
		if AfterDay(c.Date, asOf) {
			continue
		}
		principal = principal.Add(c.Amount)
	}

	// Two periods can share a posting date (a finished period plus the
	// finalized stub); the commit posts their sum as one transaction, so
	// the quote must round the sum, not the parts.
	perDate := make(map[time.Time]decimal.Decimal, len(periods))
	var dates []time.Time
	for _, p := range periods {
		if AfterDay(p.PostingDate, asOf) || !p.Complete {
			continue
		}
		if _, ok := perDate[p.PostingDate]; !ok {
			dates = append(dates, p.PostingDate)
		}
		perDate[p.PostingDate] = perDate[p.PostingDate].Add(p.Interest)
	}
	total := principal
	for _, d := range dates {
		total = total.Add(NewMoney(a.Currency, perDate[d]).Amount())
	}

	// Closure charges come out of the payout. Percentage charges are
	// priced against the balance at pay time, which shrinks as each
	// charge in turn is settled.
	for _, c := range a.Charges {
		if c.Time != ChargeOnClosure || !c.Active || c.IsFullySettled() {
			continue
		}
		outstanding := c.Outstanding()
		if c.Calculation != ChargeFlat {
			expected := NewMoney(a.Currency, total.Mul(c.Percentage).Div(decimal.NewFromInt(100))).Amount()
			outstanding = expected.Sub(c.AmountPaid).Sub(c.AmountWaived).Sub(c.AmountWrittenOff)
		}
		if outstanding.IsPositive() {
			total = total.Sub(outstanding)
		}
	}

	return NewMoney(a.Currency, total), nil
}
