package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ChargeCalculation selects how the expected amount is derived.
type ChargeCalculation string

const (
	ChargeFlat             ChargeCalculation = "flat"
	ChargePercentOfAmount  ChargeCalculation = "percent_of_amount"
	ChargePercentOfBalance ChargeCalculation = "percent_of_balance"
)

// ChargeTime selects when a charge falls due.
type ChargeTime string

const (
	ChargeSpecifiedDueDate ChargeTime = "specified_due_date"
	ChargeAnnualFee        ChargeTime = "annual_fee"
	ChargeMonthlyFee       ChargeTime = "monthly_fee"
	ChargeOnActivation     ChargeTime = "on_activation"
	ChargeOnClosure        ChargeTime = "on_closure"
	ChargeWithdrawalFee    ChargeTime = "withdrawal_fee"
)

// IsPeriodic reports whether the charge recurs and is picked up by the
// batch due-application job.
func (t ChargeTime) IsPeriodic() bool {
	return t == ChargeAnnualFee || t == ChargeMonthlyFee
}

// Charge is a fee or penalty bound to one account. The amounts always
// satisfy expected = paid + waived + writtenOff + outstanding.
type Charge struct {
	ID                 string
	ChargeDefinitionID string
	Name               string
	Calculation        ChargeCalculation
	Time               ChargeTime
	Penalty            bool
	DueDate            *time.Time
	// Percentage applies for the percent calculation types.
	Percentage       decimal.Decimal
	AmountExpected   decimal.Decimal
	AmountPaid       decimal.Decimal
	AmountWaived     decimal.Decimal
	AmountWrittenOff decimal.Decimal
	Active           bool
}

// Outstanding derives the unpaid remainder.
func (c *Charge) Outstanding() decimal.Decimal {
	return c.AmountExpected.Sub(c.AmountPaid).Sub(c.AmountWaived).Sub(c.AmountWrittenOff)
}

// IsFullySettled reports whether nothing remains outstanding.
func (c *Charge) IsFullySettled() bool {
	return !c.Outstanding().IsPositive()
}

// IsDueOn reports whether the charge is due and unpaid as of date.
func (c *Charge) IsDueOn(date time.Time) bool {
	if !c.Active || c.IsFullySettled() || c.DueDate == nil {
		return false
	}
	return OnOrBeforeDay(*c.DueDate, date)
}

// RecalculateExpected derives the expected amount for percentage charges
// against the given base (withdrawal amount or balance).
func (c *Charge) RecalculateExpected(currency Currency, base decimal.Decimal) {
	if c.Calculation == ChargeFlat {
		return
	}
	c.AmountExpected = NewMoney(currency, base.Mul(c.Percentage).Div(decimal.NewFromInt(100))).Amount()
}

// Pay settles part of the outstanding amount. The ledger transaction that
// goes with the payment is the account's concern.
func (c *Charge) Pay(amount decimal.Decimal) error {
	if !c.Active {
		return ErrChargeInactive
	}
	if c.IsFullySettled() {
		return ErrChargeAlreadyPaid
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(c.Outstanding()) {
		return fmt.Errorf("%w: outstanding %s, payment %s", ErrChargeOverpaid, c.Outstanding(), amount)
	}
	c.AmountPaid = c.AmountPaid.Add(amount)
	return nil
}

// Waive forgives the whole outstanding amount.
func (c *Charge) Waive() (decimal.Decimal, error) {
	if !c.Active {
		return decimal.Zero, ErrChargeInactive
	}
	outstanding := c.Outstanding()
	if !outstanding.IsPositive() {
		return decimal.Zero, ErrChargeAlreadyPaid
	}
	c.AmountWaived = c.AmountWaived.Add(outstanding)
	return outstanding, nil
}

// WriteOff removes the outstanding amount as uncollectable.
func (c *Charge) WriteOff() decimal.Decimal {
	outstanding := c.Outstanding()
	if outstanding.IsPositive() {
		c.AmountWrittenOff = c.AmountWrittenOff.Add(outstanding)
	}
	return outstanding
}

// AdvanceDueDate moves a periodic charge's due date to its next cycle.
func (c *Charge) AdvanceDueDate() {
	if c.DueDate == nil {
		return
	}
	var next time.Time
	switch c.Time {
	case ChargeMonthlyFee:
		next = c.DueDate.AddDate(0, 1, 0)
	case ChargeAnnualFee:
		next = c.DueDate.AddDate(1, 0, 0)
	default:
		return
	}
	c.DueDate = &next
	// a fresh cycle owes the full amount again
	c.AmountPaid = decimal.Zero
	c.AmountWaived = decimal.Zero
	c.AmountWrittenOff = decimal.Zero
}

// Clone returns a deep copy.
func (c *Charge) Clone() *Charge {
	cp := *c
	if c.DueDate != nil {
		d := *c.DueDate
		cp.DueDate = &d
	}
	return &cp
}
