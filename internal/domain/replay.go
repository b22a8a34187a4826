package domain

import "time"

// RecomputeFrom re-derives everything downstream of a historical change
// dated date: running balances, interest postings overlapping
// [date, last-posted], and the maturity projection for term deposits.
// It is idempotent — recomputing twice from the same snapshot yields
// identical state — which is what makes undo/adjust/insert safe.
//
// Callers run it on a clone of the aggregate and persist only on
// success; a floor violation discovered mid-replay aborts the command.
func (a *Account) RecomputeFrom(date time.Time, idGen func() string, now time.Time) error {
	date = ToDate(date)

	if err := a.RecalculateRunningBalances(); err != nil {
		return err
	}

	if a.LastInterestPostedOn != nil && OnOrAfterDay(*a.LastInterestPostedOn, date) {
		// the change lands inside already-posted territory: regenerate
		// every posting from the change forward
		if err := a.PostInterest(idGen, *a.LastInterestPostedOn, false, now); err != nil {
			return err
		}
	}

	if a.Kind.IsTermDeposit() && a.ActivatedOn != nil {
		if err := a.UpdateMaturityDateAndAmount(false, ToDate(now)); err != nil {
			return err
		}
	}
	return nil
}

// UndoTransaction reverses a historical transaction and replays all
// downstream state.
func (a *Account) UndoTransaction(txID string, idGen func() string, now time.Time) (*Transaction, error) {
	tx, err := a.Reverse(txID)
	if err != nil {
		return nil, err
	}
	if tx.ChargeID != "" {
		if c, chErr := a.FindCharge(tx.ChargeID); chErr == nil {
			c.AmountPaid = c.AmountPaid.Sub(tx.Amount.Amount())
		}
	}
	if err := a.RecomputeFrom(tx.TransactionDate, idGen, now); err != nil {
		return nil, err
	}
	return tx, nil
}

// AdjustTransaction reverses a historical transaction and appends a
// replacement with a corrected amount and/or date, replaying everything
// from the earlier of the two dates.
func (a *Account) AdjustTransaction(txID, replacementID string, newDate time.Time, newAmount Money, idGen func() string, now time.Time) (*Transaction, error) {
	original, err := a.Reverse(txID)
	if err != nil {
		return nil, err
	}

	replacement, err := a.appendNew(replacementID, original.Type, newDate, newAmount.Amount(), now, "", original.ChargeID)
	if err != nil {
		// leave the ledger exactly as found
		original.Reversed = false
		if recalcErr := a.RecalculateRunningBalances(); recalcErr != nil {
			return nil, recalcErr
		}
		return nil, err
	}
	original.ReplacedByID = replacement.ID

	from := original.TransactionDate
	if BeforeDay(replacement.TransactionDate, from) {
		from = replacement.TransactionDate
	}
	if err := a.RecomputeFrom(from, idGen, now); err != nil {
		return nil, err
	}
	return replacement, nil
}
