package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/godeposit/internal/domain/interest"
)

// AccountKind distinguishes the deposit account variants. Kind-specific
// behavior hangs off the Term and Recurrence fields instead of a type
// hierarchy; the ledger and interest logic is shared.
type AccountKind string

const (
	KindSavings          AccountKind = "savings"
	KindFixedDeposit     AccountKind = "fixed_deposit"
	KindRecurringDeposit AccountKind = "recurring_deposit"
)

// IsTermDeposit reports whether the account carries a maturity schedule.
func (k AccountKind) IsTermDeposit() bool {
	return k == KindFixedDeposit || k == KindRecurringDeposit
}

// TermDetails holds the fixed/recurring deposit term and pre-closure
// configuration.
type TermDetails struct {
	DepositAmount           decimal.Decimal
	DepositPeriodMonths     int
	MaturityDate            *time.Time
	MaturityAmount          decimal.Decimal
	PrematureClosureAllowed bool
	// PrematurePenaltyRate is deducted from the nominal annual rate
	// (percentage points) when closing before maturity.
	PrematurePenaltyRate decimal.Decimal
}

// Summary carries derived lifetime totals, refreshed after every ledger
// mutation.
type Summary struct {
	TotalDeposits       decimal.Decimal
	TotalWithdrawals    decimal.Decimal
	TotalInterestPosted decimal.Decimal
	TotalChargesPaid    decimal.Decimal
	AccountBalance      decimal.Decimal
}

// Account is the aggregate root: one deposit account with its full
// transaction and charge history loaded in memory. The engine assumes it
// is the sole mutator for the duration of a command; the caller holds the
// per-aggregate lock.
type Account struct {
	ID       string
	OfficeID string
	ClientID string
	Kind     AccountKind
	Status   AccountStatus
	Currency Currency

	OpeningBalance decimal.Decimal

	// interest configuration
	NominalAnnualRate     decimal.Decimal // percent
	OverdraftRate         decimal.Decimal // percent
	CompoundingPeriod     interest.CompoundingType
	PostingPeriod         interest.PostingType
	CalculationMethod     interest.CalculationMethod
	DaysInYear            int
	MinBalanceForInterest decimal.Decimal
	FinancialYearStart    time.Month

	AllowOverdraft bool
	OverdraftLimit decimal.Decimal

	LockInMonths  int
	LockedInUntil *time.Time

	AllowTransactionsOnHolidays       bool
	AllowTransactionsOnNonWorkingDays bool
	WithdrawalFeeForTransfer          bool

	SubmittedOn          time.Time
	ApprovedOn           *time.Time
	ActivatedOn          *time.Time
	ClosedOn             *time.Time
	LastInterestPostedOn *time.Time
	ManualPostingDates   []time.Time

	Transactions []*Transaction
	Charges      []*Charge

	Term       *TermDetails
	Recurrence *Recurrence

	Summary Summary

	// StatusBeforeTransfer remembers where to return after a rejected or
	// withdrawn account transfer.
	StatusBeforeTransfer AccountStatus

	NextSeq int64
	Version int64
}

// Approve moves a submitted application to approved.
func (a *Account) Approve(date time.Time) error {
	next, err := Transition(a.Status, StatusApproved)
	if err != nil {
		return err
	}
	a.Status = next
	d := ToDate(date)
	a.ApprovedOn = &d
	return nil
}

// UndoApproval returns an approved application to the submitted state.
func (a *Account) UndoApproval() error {
	next, err := Transition(a.Status, StatusSubmittedPendingApproval)
	if err != nil {
		return err
	}
	a.Status = next
	a.ApprovedOn = nil
	return nil
}

// Reject declines a submitted application.
func (a *Account) Reject(date time.Time) error {
	if a.Status != StatusSubmittedPendingApproval {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, a.Status, StatusRejected)
	}
	a.Status = StatusRejected
	d := ToDate(date)
	a.ClosedOn = &d
	return nil
}

// WithdrawApplication lets the applicant pull a pending or approved
// application.
func (a *Account) WithdrawApplication(date time.Time) error {
	if a.Status != StatusSubmittedPendingApproval && a.Status != StatusApproved {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, a.Status, StatusApplicantWithdrawn)
	}
	a.Status = StatusApplicantWithdrawn
	d := ToDate(date)
	a.ClosedOn = &d
	return nil
}

// Activate opens the account for transactions. The opening balance, if
// configured, is posted as the first deposit, activation-time charges
// fall due, and term deposits get their maturity projected.
func (a *Account) Activate(idGen func() string, date, now time.Time) error {
	next, err := Transition(a.Status, StatusActive)
	if err != nil {
		return err
	}
	a.Status = next
	d := ToDate(date)
	a.ActivatedOn = &d

	if a.LockInMonths > 0 {
		until := d.AddDate(0, a.LockInMonths, 0)
		a.LockedInUntil = &until
	}

	if a.OpeningBalance.IsPositive() {
		if _, err := a.Deposit(idGen(), d, a.OpeningBalance, now); err != nil {
			return err
		}
	}

	for _, c := range a.Charges {
		if c.Time == ChargeOnActivation && c.Active && c.DueDate == nil {
			due := d
			c.DueDate = &due
		}
	}

	if a.Kind.IsTermDeposit() {
		if err := a.UpdateMaturityDateAndAmount(false, d); err != nil {
			return err
		}
	}
	if a.Kind == KindRecurringDeposit && a.Recurrence != nil {
		a.Recurrence.GenerateSchedule(a.Currency, d, a.termMonths())
	}
	return nil
}

// UndoActivation reverts activation: every transaction posted since is
// reversed and derived state is re-zeroed. Callers replay through
// RecomputeFrom afterwards.
func (a *Account) UndoActivation() error {
	next, err := Transition(a.Status, StatusApproved)
	if err != nil {
		return err
	}
	a.Status = next
	for _, tx := range a.Transactions {
		tx.Reversed = true
	}
	a.ActivatedOn = nil
	a.LockedInUntil = nil
	a.LastInterestPostedOn = nil
	a.refreshSummary()
	return nil
}

// Close settles and closes an active account on date. Term deposits must
// have reached maturity; use ClosePrematurely otherwise.
func (a *Account) Close(idGen func() string, date, now time.Time) error {
	if !a.Status.IsActive() {
		return ErrAccountNotActive
	}
	d := ToDate(date)
	if a.Kind.IsTermDeposit() {
		if a.Term == nil || a.Term.MaturityDate == nil || BeforeDay(d, *a.Term.MaturityDate) {
			return fmt.Errorf("%w: not yet matured, use premature closure", ErrPrematureClosureNotAllowed)
		}
	}

	if err := a.PostInterest(idGen, d, true, now); err != nil && !errors.Is(err, ErrNoInterestRate) {
		return err
	}
	if err := a.applyClosureCharges(idGen, d, now); err != nil {
		return err
	}

	balance := a.RunningBalanceAsOf(d)
	if balance.IsPositive() {
		if _, err := a.appendNew(idGen(), TypeWithdrawal, d, balance, now, "", ""); err != nil {
			return err
		}
	}

	a.Status = StatusClosed
	a.ClosedOn = &d
	return nil
}

// ClosePrematurely closes a term deposit before maturity: already-posted
// interest is corrected down to the penalty rate over the elapsed term,
// then the balance is withdrawn. The amount withdrawn always equals what
// PrematureClosureAmount quoted for the same date.
func (a *Account) ClosePrematurely(idGen func() string, date, now time.Time) error {
	if !a.Kind.IsTermDeposit() {
		return ErrNotTermDeposit
	}
	if !a.Status.IsActive() {
		return ErrAccountNotActive
	}
	if a.Term == nil || !a.Term.PrematureClosureAllowed {
		return ErrPrematureClosureNotAllowed
	}
	d := ToDate(date)
	if a.Term.MaturityDate != nil && !BeforeDay(d, *a.Term.MaturityDate) {
		return ErrAlreadyMatured
	}

	if err := a.postInterestWithParams(idGen, d, now, a.prematureInterestParams()); err != nil && !errors.Is(err, ErrNoInterestRate) {
		return err
	}
	if err := a.applyClosureCharges(idGen, d, now); err != nil {
		return err
	}

	balance := a.RunningBalanceAsOf(d)
	if balance.IsPositive() {
		if _, err := a.appendNew(idGen(), TypeWithdrawal, d, balance, now, "", ""); err != nil {
			return err
		}
	}

	if err := a.UpdateMaturityDateAndAmount(true, d); err != nil {
		return err
	}

	a.Status = StatusPrematurelyClosed
	a.ClosedOn = &d
	return nil
}

func (a *Account) applyClosureCharges(idGen func() string, date, now time.Time) error {
	for _, c := range a.Charges {
		if c.Time != ChargeOnClosure || !c.Active || c.IsFullySettled() {
			continue
		}
		if _, err := a.PayCharge(idGen(), c.ID, c.Outstanding(), date, now); err != nil {
			return err
		}
	}
	return nil
}

func (a *Account) termMonths() int {
	if a.Term == nil {
		return 0
	}
	return a.Term.DepositPeriodMonths
}

// FindCharge locates an account charge by id.
func (a *Account) FindCharge(chargeID string) (*Charge, error) {
	for _, c := range a.Charges {
		if c.ID == chargeID {
			return c, nil
		}
	}
	return nil, ErrChargeNotFound
}

// FindTransaction locates a transaction by id.
func (a *Account) FindTransaction(txID string) (*Transaction, error) {
	for _, tx := range a.Transactions {
		if tx.ID == txID {
			return tx, nil
		}
	}
	return nil, ErrTransactionNotFound
}

// Clone deep-copies the aggregate. Commands mutate a clone and the
// caller persists it only on success, so a failed replay never leaves a
// half-rewritten aggregate behind.
func (a *Account) Clone() *Account {
	c := *a
	c.Transactions = make([]*Transaction, len(a.Transactions))
	for i, tx := range a.Transactions {
		c.Transactions[i] = tx.Clone()
	}
	c.Charges = make([]*Charge, len(a.Charges))
	for i, ch := range a.Charges {
		c.Charges[i] = ch.Clone()
	}
	c.ManualPostingDates = append([]time.Time(nil), a.ManualPostingDates...)
	if a.ApprovedOn != nil {
		d := *a.ApprovedOn
		c.ApprovedOn = &d
	}
	if a.ActivatedOn != nil {
		d := *a.ActivatedOn
		c.ActivatedOn = &d
	}
	if a.ClosedOn != nil {
		d := *a.ClosedOn
		c.ClosedOn = &d
	}
	if a.LastInterestPostedOn != nil {
		d := *a.LastInterestPostedOn
		c.LastInterestPostedOn = &d
	}
	if a.LockedInUntil != nil {
		d := *a.LockedInUntil
		c.LockedInUntil = &d
	}
	if a.Term != nil {
		t := *a.Term
		if a.Term.MaturityDate != nil {
			d := *a.Term.MaturityDate
			t.MaturityDate = &d
		}
		c.Term = &t
	}
	if a.Recurrence != nil {
		c.Recurrence = a.Recurrence.Clone()
	}
	return &c
}
