package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound  = errors.New("account not found")
	ErrAccountNotActive = errors.New("account is not active")
	ErrAccountClosed    = errors.New("account is closed")

	// Ledger errors
	ErrInsufficientBalance     = errors.New("balance would fall below the account floor")
	ErrInvalidAmount           = errors.New("amount must be positive")
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrTransactionReversed     = errors.New("transaction is already reversed")
	ErrTransactionInTransfer   = errors.New("transaction belongs to an account transfer and cannot be undone directly")
	ErrTransactionBeforeLockIn = errors.New("transaction date falls inside the lock-in period")

	// Interest errors
	ErrInterestNotStarted  = errors.New("interest cannot be computed before activation")
	ErrInterestPostedAfter = errors.New("interest already posted after the requested date")
	ErrNoInterestRate      = errors.New("account has no interest rate configured")

	// Charge errors
	ErrChargeNotFound       = errors.New("charge not found")
	ErrChargeInactive       = errors.New("charge is not active")
	ErrChargeAlreadyPaid    = errors.New("charge is already fully paid")
	ErrChargeOverpaid       = errors.New("payment exceeds the charge outstanding amount")
	ErrDueDateNotWorkingDay = errors.New("due date falls on a non-working day")
	ErrDueDateOnHoliday     = errors.New("due date falls on a holiday")

	// Term deposit errors
	ErrNotTermDeposit             = errors.New("account is not a term deposit")
	ErrPrematureClosureNotAllowed = errors.New("premature closure is not permitted for this account")
	ErrAlreadyMatured             = errors.New("account has already reached maturity")

	// Transfer errors
	ErrTransferNotFound      = errors.New("transfer not found")
	ErrTransferNotInProgress = errors.New("transfer is not in progress")
	ErrSameAccount           = errors.New("cannot transfer to same account")
	ErrCurrencyMismatch      = errors.New("cannot transfer between different currencies")

	// State machine errors
	ErrInvalidStateTransition = errors.New("invalid account status transition")

	// Reference data errors
	ErrCurrencyUnknown = errors.New("currency is not configured")
)
