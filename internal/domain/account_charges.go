package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddCharge attaches a charge to the account. Percentage charges against
// the balance are priced when they are applied, not when added.
func (a *Account) AddCharge(c *Charge) error {
	if a.Status.IsClosed() || a.Status.IsTerminal() {
		return ErrAccountClosed
	}
	var val Validator
	val.RequireNotBlank("chargeId", c.ID)
	val.RequireNotBlank("name", c.Name)
	if c.Calculation == ChargeFlat {
		val.RequirePositive("amount", c.AmountExpected)
	} else {
		val.RequirePositive("percentage", c.Percentage)
	}
	if c.Time == ChargeSpecifiedDueDate && c.DueDate == nil {
		val.Add("dueDate", "due.date.required", "specified-due-date charges need a due date")
	}
	if err := val.Result(); err != nil {
		return err
	}
	c.Active = true
	a.Charges = append(a.Charges, c)
	return nil
}

// PayCharge settles (part of) a charge and posts the payment as a debit.
// The charge state and the ledger move together: if the debit would break
// the balance floor, the charge is left untouched.
func (a *Account) PayCharge(txID, chargeID string, amount decimal.Decimal, date, now time.Time) (*Transaction, error) {
	if !a.Status.IsActive() {
		return nil, ErrAccountNotActive
	}
	c, err := a.FindCharge(chargeID)
	if err != nil {
		return nil, err
	}
	if c.Calculation != ChargeFlat {
		c.RecalculateExpected(a.Currency, a.RunningBalanceAsOf(date))
	}

	tx, err := a.appendNew(txID, TypeChargePayment, date, amount, now, "", chargeID)
	if err != nil {
		return nil, err
	}
	if err := c.Pay(amount); err != nil {
		tx.Reversed = true
		if recalcErr := a.RecalculateRunningBalances(); recalcErr != nil {
			return nil, recalcErr
		}
		return nil, err
	}
	return tx, nil
}

// WaiveCharge forgives a charge's outstanding amount. No ledger movement
// is posted; money never changed hands.
func (a *Account) WaiveCharge(chargeID string) (decimal.Decimal, error) {
	if !a.Status.IsActive() {
		return decimal.Zero, ErrAccountNotActive
	}
	c, err := a.FindCharge(chargeID)
	if err != nil {
		return decimal.Zero, err
	}
	return c.Waive()
}

// ApplyChargesDue pays every periodic or specified-due-date charge that
// is due on or before date, advancing periodic due dates to their next
// cycle. It is the batch/cron entry point.
func (a *Account) ApplyChargesDue(idGen func() string, date, now time.Time) ([]*Transaction, error) {
	if !a.Status.IsActive() {
		return nil, ErrAccountNotActive
	}
	var posted []*Transaction
	for _, c := range a.Charges {
		if !c.IsDueOn(date) {
			continue
		}
		tx, err := a.PayCharge(idGen(), c.ID, c.Outstanding(), *c.DueDate, now)
		if err != nil {
			return posted, err
		}
		posted = append(posted, tx)
		if c.Time.IsPeriodic() {
			c.AdvanceDueDate()
		}
	}
	return posted, nil
}
