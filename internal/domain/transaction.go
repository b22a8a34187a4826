package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger movement.
type TransactionType string

const (
	TypeDeposit           TransactionType = "deposit"
	TypeWithdrawal        TransactionType = "withdrawal"
	TypeInterestPosting   TransactionType = "interest_posting"
	TypeOverdraftInterest TransactionType = "overdraft_interest"
	TypeChargePayment     TransactionType = "charge_payment"
	TypeTransferIn        TransactionType = "transfer_in"
	TypeTransferOut       TransactionType = "transfer_out"
	TypeWriteOff          TransactionType = "write_off"
)

// IsCredit reports whether the type increases the account balance.
func (t TransactionType) IsCredit() bool {
	switch t {
	case TypeDeposit, TypeInterestPosting, TypeTransferIn:
		return true
	}
	return false
}

// IsDebit reports whether the type decreases the account balance.
func (t TransactionType) IsDebit() bool {
	switch t {
	case TypeWithdrawal, TypeOverdraftInterest, TypeChargePayment, TypeTransferOut, TypeWriteOff:
		return true
	}
	return false
}

// Transaction is one movement in an account's ledger. The fact itself is
// immutable; only the Reversed flag (and the replacement link) may change
// after creation, so audit history and journal reversal both keep the
// original row.
type Transaction struct {
	ID              string
	Type            TransactionType
	Amount          Money
	TransactionDate time.Time
	CreatedAt       time.Time
	// Seq totally orders transactions created at the same instant, which
	// keeps replay deterministic.
	Seq            int64
	RunningBalance Money
	Reversed       bool
	// ReplacedByID links a reversed transaction to its adjustment.
	ReplacedByID string
	// TransferID links the transaction to an inter-office account transfer.
	TransferID string
	ChargeID   string
}

// SignedAmount returns the amount with the sign of its balance effect.
func (tx *Transaction) SignedAmount() decimal.Decimal {
	if tx.Type.IsDebit() {
		return tx.Amount.Amount().Neg()
	}
	return tx.Amount.Amount()
}

// OccursOn reports whether the transaction is dated the given day.
func (tx *Transaction) OccursOn(date time.Time) bool {
	return SameDay(tx.TransactionDate, date)
}

// IsInterestPostingAndNotReversed identifies live interest postings.
func (tx *Transaction) IsInterestPostingAndNotReversed() bool {
	return tx.Type == TypeInterestPosting && !tx.Reversed
}

// Before orders transactions by (date, createdAt, seq).
func (tx *Transaction) Before(other *Transaction) bool {
	if !SameDay(tx.TransactionDate, other.TransactionDate) {
		return BeforeDay(tx.TransactionDate, other.TransactionDate)
	}
	if !tx.CreatedAt.Equal(other.CreatedAt) {
		return tx.CreatedAt.Before(other.CreatedAt)
	}
	return tx.Seq < other.Seq
}

// Clone returns a deep copy.
func (tx *Transaction) Clone() *Transaction {
	c := *tx
	return &c
}
