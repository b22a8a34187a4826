package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus tracks the 4-state inter-office transfer protocol.
type TransferStatus string

const (
	TransferInitiated TransferStatus = "initiated"
	TransferAccepted  TransferStatus = "accepted"
	TransferRejected  TransferStatus = "rejected"
	TransferWithdrawn TransferStatus = "withdrawn"
)

// AccountTransfer is an in-flight movement of funds between accounts in
// different offices, layered on both ledgers.
type AccountTransfer struct {
	ID               string
	FromAccountID    string
	ToAccountID      string
	FromOfficeID     string
	ToOfficeID       string
	Amount           decimal.Decimal
	TransferDate     time.Time
	Status           TransferStatus
	OutTransactionID string
	InTransactionID  string
	CreatedAt        time.Time
}

// Validate checks the transfer request.
func (t *AccountTransfer) Validate() error {
	if t.FromAccountID == t.ToAccountID {
		return ErrSameAccount
	}
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	return nil
}

// InitiateTransfer posts the outgoing leg and parks the account in
// TransferInProgress. Interest is settled up to the transfer date first,
// exactly as an ordinary transaction would trigger.
func (a *Account) InitiateTransfer(idGen func() string, transfer *AccountTransfer, now time.Time) error {
	if !a.Status.IsActive() {
		return ErrAccountNotActive
	}
	if err := transfer.Validate(); err != nil {
		return err
	}
	date := ToDate(transfer.TransferDate)

	if err := a.PostInterest(idGen, date, true, now); err != nil && !errors.Is(err, ErrNoInterestRate) {
		return err
	}
	if a.WithdrawalFeeForTransfer {
		if err := a.applyWithdrawalFeeCharges(idGen, transfer.Amount, date, now); err != nil {
			return err
		}
	}

	tx, err := a.appendNew(idGen(), TypeTransferOut, date, transfer.Amount, now, transfer.ID, "")
	if err != nil {
		return err
	}
	transfer.OutTransactionID = tx.ID
	transfer.Status = TransferInitiated

	a.StatusBeforeTransfer = a.Status
	a.Status = StatusTransferInProgress
	return nil
}

// AcceptTransfer posts the incoming leg at the destination account.
func (a *Account) AcceptTransfer(idGen func() string, transfer *AccountTransfer, now time.Time) error {
	if !a.Status.IsActive() {
		return ErrAccountNotActive
	}
	if transfer.Status != TransferInitiated {
		return ErrTransferNotInProgress
	}
	date := ToDate(transfer.TransferDate)

	tx, err := a.appendNew(idGen(), TypeTransferIn, date, transfer.Amount, now, transfer.ID, "")
	if err != nil {
		return err
	}
	transfer.InTransactionID = tx.ID
	transfer.Status = TransferAccepted
	return a.RecomputeFrom(date, idGen, now)
}

// CompleteTransferOut restores the source account once the destination
// accepted.
func (a *Account) CompleteTransferOut(transfer *AccountTransfer) error {
	if a.Status != StatusTransferInProgress {
		return ErrTransferNotInProgress
	}
	if transfer.Status != TransferAccepted {
		return ErrTransferNotInProgress
	}
	a.Status = StatusActive
	return nil
}

// RevertTransfer undoes the in-flight outgoing leg after a reject or
// withdraw and restores the pre-transfer status.
func (a *Account) RevertTransfer(transfer *AccountTransfer, rejected bool, idGen func() string, now time.Time) error {
	if a.Status != StatusTransferInProgress {
		return ErrTransferNotInProgress
	}
	if transfer.Status != TransferInitiated {
		return ErrTransferNotInProgress
	}

	tx, err := a.FindTransaction(transfer.OutTransactionID)
	if err != nil {
		return err
	}
	tx.Reversed = true
	if err := a.RecomputeFrom(tx.TransactionDate, idGen, now); err != nil {
		return err
	}

	if rejected {
		transfer.Status = TransferRejected
	} else {
		transfer.Status = TransferWithdrawn
	}
	if a.StatusBeforeTransfer != "" {
		a.Status = a.StatusBeforeTransfer
	} else {
		a.Status = StatusActive
	}
	return nil
}

// applyWithdrawalFeeCharges prices and collects withdrawal-fee charges
// for a transfer-out when the account is configured to levy them.
func (a *Account) applyWithdrawalFeeCharges(idGen func() string, base decimal.Decimal, date, now time.Time) error {
	for _, c := range a.Charges {
		if c.Time != ChargeWithdrawalFee || !c.Active {
			continue
		}
		// every withdrawal is a fresh fee cycle
		c.AmountPaid = decimal.Zero
		c.AmountWaived = decimal.Zero
		c.AmountWrittenOff = decimal.Zero
		c.RecalculateExpected(a.Currency, base)
		if !c.Outstanding().IsPositive() {
			continue
		}
		if _, err := a.PayCharge(idGen(), c.ID, c.Outstanding(), date, now); err != nil {
			return err
		}
	}
	return nil
}
