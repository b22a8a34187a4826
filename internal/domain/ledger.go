package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// balanceFloor is the lowest running balance the ledger tolerates: zero,
// or the negated overdraft limit when overdraft is allowed.
func (a *Account) balanceFloor() decimal.Decimal {
	if a.AllowOverdraft {
		return a.OverdraftLimit.Neg()
	}
	return decimal.Zero
}

// Deposit appends a credit dated date. Back-dated deposits are legal;
// every later running balance is recomputed.
func (a *Account) Deposit(id string, date time.Time, amount decimal.Decimal, createdAt time.Time) (*Transaction, error) {
	if err := a.validateTransactionalState(date, false); err != nil {
		return nil, err
	}
	tx, err := a.appendNew(id, TypeDeposit, date, amount, createdAt, "", "")
	if err != nil {
		return nil, err
	}
	if a.Kind == KindRecurringDeposit && a.Recurrence != nil {
		a.Recurrence.AllocateDeposit(ToDate(date), amount)
	}
	return tx, nil
}

// Withdraw appends a debit dated date, rejecting it before mutation when
// the running balance anywhere downstream would fall through the floor.
func (a *Account) Withdraw(id string, date time.Time, amount decimal.Decimal, createdAt time.Time) (*Transaction, error) {
	if err := a.validateTransactionalState(date, true); err != nil {
		return nil, err
	}
	return a.appendNew(id, TypeWithdrawal, date, amount, createdAt, "", "")
}

func (a *Account) validateTransactionalState(date time.Time, withdrawal bool) error {
	if !a.Status.IsActive() {
		return ErrAccountNotActive
	}
	if a.ActivatedOn != nil && BeforeDay(date, *a.ActivatedOn) {
		return fmt.Errorf("%w: transaction predates activation", ErrInvalidAmount)
	}
	if withdrawal && a.LockedInUntil != nil && BeforeDay(date, *a.LockedInUntil) {
		return ErrTransactionBeforeLockIn
	}
	return nil
}

// appendNew validates, inserts and revalidates in one step: the ledger is
// never left holding a transaction that breaks the floor.
func (a *Account) appendNew(id string, txType TransactionType, date time.Time, amount decimal.Decimal, createdAt time.Time, transferID, chargeID string) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	tx := &Transaction{
		ID:              id,
		Type:            txType,
		Amount:          NewMoney(a.Currency, amount),
		TransactionDate: ToDate(date),
		CreatedAt:       createdAt.UTC(),
		Seq:             a.NextSeq,
		TransferID:      transferID,
		ChargeID:        chargeID,
	}

	if txType.IsDebit() {
		if err := a.simulateAppend(tx); err != nil {
			return nil, err
		}
	}

	a.NextSeq++
	a.Transactions = append(a.Transactions, tx)
	if err := a.RecalculateRunningBalances(); err != nil {
		// a credit can still sink an intermediate balance when back-dated
		// movements follow it; roll the append back
		a.Transactions = a.Transactions[:len(a.Transactions)-1]
		a.NextSeq--
		if recalcErr := a.RecalculateRunningBalances(); recalcErr != nil {
			return nil, recalcErr
		}
		return nil, err
	}
	return tx, nil
}

// simulateAppend dry-runs the floor check without mutating the ledger.
func (a *Account) simulateAppend(candidate *Transaction) error {
	txs := append(append([]*Transaction(nil), a.Transactions...), candidate)
	sortLedger(txs)
	running := decimal.Zero
	floor := a.balanceFloor()
	for _, tx := range txs {
		if tx.Reversed {
			continue
		}
		running = running.Add(tx.SignedAmount())
		if running.LessThan(floor) {
			return fmt.Errorf("%w: balance %s on %s, floor %s",
				ErrInsufficientBalance, running, tx.TransactionDate.Format("2006-01-02"), floor)
		}
	}
	return nil
}

// Reverse marks a transaction reversed. It deliberately does not
// recompute derived state; the replay engine owns that.
func (a *Account) Reverse(txID string) (*Transaction, error) {
	tx, err := a.FindTransaction(txID)
	if err != nil {
		return nil, err
	}
	if tx.Reversed {
		return nil, ErrTransactionReversed
	}
	if tx.TransferID != "" {
		return nil, ErrTransactionInTransfer
	}
	tx.Reversed = true
	return tx, nil
}

// RecalculateRunningBalances re-derives every running balance in ledger
// order and validates the floor across the whole history, not just the
// tail: a back-dated change can sink an intermediate balance even when
// the final balance survives.
func (a *Account) RecalculateRunningBalances() error {
	sortLedger(a.Transactions)
	running := decimal.Zero
	floor := a.balanceFloor()
	for _, tx := range a.Transactions {
		if tx.Reversed {
			tx.RunningBalance = NewMoney(a.Currency, running)
			continue
		}
		running = running.Add(tx.SignedAmount())
		if running.LessThan(floor) {
			return fmt.Errorf("%w: balance %s on %s, floor %s",
				ErrInsufficientBalance, running, tx.TransactionDate.Format("2006-01-02"), floor)
		}
		tx.RunningBalance = NewMoney(a.Currency, running)
	}
	a.refreshSummary()
	return nil
}

func sortLedger(txs []*Transaction) {
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Before(txs[j]) })
}

// RunningBalanceAsOf returns the balance at end of day on date.
func (a *Account) RunningBalanceAsOf(date time.Time) decimal.Decimal {
	balance := decimal.Zero
	for _, tx := range a.Transactions {
		if tx.Reversed || AfterDay(tx.TransactionDate, date) {
			continue
		}
		balance = balance.Add(tx.SignedAmount())
	}
	return balance
}

// ExistingTransactionIDs snapshots the set of live transaction ids,
// taken before a command so the accounting bridge can diff afterwards.
func (a *Account) ExistingTransactionIDs() map[string]bool {
	ids := make(map[string]bool, len(a.Transactions))
	for _, tx := range a.Transactions {
		ids[tx.ID] = true
	}
	return ids
}

// ExistingReversedTransactionIDs snapshots the reversed subset.
func (a *Account) ExistingReversedTransactionIDs() map[string]bool {
	ids := make(map[string]bool)
	for _, tx := range a.Transactions {
		if tx.Reversed {
			ids[tx.ID] = true
		}
	}
	return ids
}

func (a *Account) refreshSummary() {
	s := Summary{
		TotalDeposits:       decimal.Zero,
		TotalWithdrawals:    decimal.Zero,
		TotalInterestPosted: decimal.Zero,
		TotalChargesPaid:    decimal.Zero,
		AccountBalance:      decimal.Zero,
	}
	for _, tx := range a.Transactions {
		if tx.Reversed {
			continue
		}
		switch tx.Type {
		case TypeDeposit, TypeTransferIn:
			s.TotalDeposits = s.TotalDeposits.Add(tx.Amount.Amount())
		case TypeWithdrawal, TypeTransferOut:
			s.TotalWithdrawals = s.TotalWithdrawals.Add(tx.Amount.Amount())
		case TypeInterestPosting:
			s.TotalInterestPosted = s.TotalInterestPosted.Add(tx.Amount.Amount())
		case TypeOverdraftInterest:
			s.TotalInterestPosted = s.TotalInterestPosted.Sub(tx.Amount.Amount())
		case TypeChargePayment:
			s.TotalChargesPaid = s.TotalChargesPaid.Add(tx.Amount.Amount())
		}
		s.AccountBalance = s.AccountBalance.Add(tx.SignedAmount())
	}
	a.Summary = s
}
