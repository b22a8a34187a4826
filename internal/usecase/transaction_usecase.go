package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/godeposit/internal/domain"
)

// TransactionUseCase handles deposits, withdrawals and historical
// corrections on one account's ledger.
type TransactionUseCase struct {
	deps     commandDeps
	calendar CalendarService
	idGen    IDGenerator
	clock    Clock
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	txManager TransactionManager,
	accounts AccountRepository,
	journal JournalPoster,
	calendar CalendarService,
	idGen IDGenerator,
	clock Clock,
	retrier Retrier,
) *TransactionUseCase {
	return &TransactionUseCase{
		deps: commandDeps{
			txManager: txManager,
			accounts:  accounts,
			journal:   journal,
			retrier:   retrier,
		},
		calendar: calendar,
		idGen:    idGen,
		clock:    clock,
	}
}

// TransactionInput represents a deposit or withdrawal request.
type TransactionInput struct {
	AccountID string
	Amount    decimal.Decimal
	// Date is the business date; zero means today. Back-dating is legal
	// and triggers a replay of everything downstream.
	Date time.Time
}

func (input TransactionInput) validate() error {
	var val domain.Validator
	val.RequireNotBlank("accountId", input.AccountID)
	val.RequirePositive("amount", input.Amount)
	return val.Result()
}

// checkTransactionDate enforces the account's working-day and holiday
// policy before any money moves.
func (uc *TransactionUseCase) checkTransactionDate(ctx context.Context, account *domain.Account, date time.Time) error {
	if !account.AllowTransactionsOnNonWorkingDays {
		working, err := uc.calendar.IsWorkingDay(ctx, date)
		if err != nil {
			return err
		}
		if !working {
			return domain.ErrDueDateNotWorkingDay
		}
	}
	if !account.AllowTransactionsOnHolidays {
		holiday, err := uc.calendar.IsHoliday(ctx, account.OfficeID, date)
		if err != nil {
			return err
		}
		if holiday {
			return domain.ErrDueDateOnHoliday
		}
	}
	return nil
}

func (uc *TransactionUseCase) transactionDate(input TransactionInput) time.Time {
	if input.Date.IsZero() {
		return uc.clock.Today()
	}
	return domain.ToDate(input.Date)
}

// Deposit credits the account.
func (uc *TransactionUseCase) Deposit(ctx context.Context, input TransactionInput) (CommandResult, error) {
	if err := input.validate(); err != nil {
		return CommandResult{}, err
	}
	date := uc.transactionDate(input)
	now := uc.clock.Now()

	var txID string
	account, err := uc.deps.run(ctx, input.AccountID, func(a *domain.Account) error {
		if err := uc.checkTransactionDate(ctx, a, date); err != nil {
			return err
		}
		tx, err := a.Deposit(uc.idGen.Generate(), date, input.Amount, now)
		if err != nil {
			return err
		}
		txID = tx.ID
		return a.RecomputeFrom(date, uc.idGen.Generate, now)
	})
	if err != nil {
		return CommandResult{}, err
	}
	return resultFor(txID, account, map[string]any{"balance": account.Summary.AccountBalance}), nil
}

// Withdraw debits the account, rejecting the request when any running
// balance downstream would fall through the floor.
func (uc *TransactionUseCase) Withdraw(ctx context.Context, input TransactionInput) (CommandResult, error) {
	if err := input.validate(); err != nil {
		return CommandResult{}, err
	}
	date := uc.transactionDate(input)
	now := uc.clock.Now()

	var txID string
	account, err := uc.deps.run(ctx, input.AccountID, func(a *domain.Account) error {
		if err := uc.checkTransactionDate(ctx, a, date); err != nil {
			return err
		}
		tx, err := a.Withdraw(uc.idGen.Generate(), date, input.Amount, now)
		if err != nil {
			return err
		}
		txID = tx.ID
		return a.RecomputeFrom(date, uc.idGen.Generate, now)
	})
	if err != nil {
		return CommandResult{}, err
	}
	return resultFor(txID, account, map[string]any{"balance": account.Summary.AccountBalance}), nil
}

// UndoTransactionInput identifies the transaction to reverse.
type UndoTransactionInput struct {
	AccountID     string
	TransactionID string
}

// UndoTransaction reverses a historical transaction and replays every
// downstream balance, interest posting and maturity projection.
func (uc *TransactionUseCase) UndoTransaction(ctx context.Context, input UndoTransactionInput) (CommandResult, error) {
	now := uc.clock.Now()
	account, err := uc.deps.run(ctx, input.AccountID, func(a *domain.Account) error {
		_, err := a.UndoTransaction(input.TransactionID, uc.idGen.Generate, now)
		return err
	})
	if err != nil {
		return CommandResult{}, err
	}
	return resultFor(input.TransactionID, account, map[string]any{"balance": account.Summary.AccountBalance}), nil
}

// AdjustTransactionInput carries the corrected amount and date for a
// historical transaction.
type AdjustTransactionInput struct {
	AccountID     string
	TransactionID string
	NewAmount     decimal.Decimal
	NewDate       time.Time
}

// AdjustTransaction reverses a historical transaction and posts a
// corrected replacement, replaying from the earlier of the two dates.
func (uc *TransactionUseCase) AdjustTransaction(ctx context.Context, input AdjustTransactionInput) (CommandResult, error) {
	var val domain.Validator
	val.RequireNotBlank("accountId", input.AccountID)
	val.RequireNotBlank("transactionId", input.TransactionID)
	val.RequirePositive("amount", input.NewAmount)
	if err := val.Result(); err != nil {
		return CommandResult{}, err
	}

	now := uc.clock.Now()
	var replacementID string
	account, err := uc.deps.run(ctx, input.AccountID, func(a *domain.Account) error {
		date := input.NewDate
		if date.IsZero() {
			original, err := a.FindTransaction(input.TransactionID)
			if err != nil {
				return err
			}
			date = original.TransactionDate
		}
		if err := uc.checkTransactionDate(ctx, a, date); err != nil {
			return err
		}
		replacement, err := a.AdjustTransaction(
			input.TransactionID,
			uc.idGen.Generate(),
			date,
			domain.NewMoney(a.Currency, input.NewAmount),
			uc.idGen.Generate,
			now,
		)
		if err != nil {
			return err
		}
		replacementID = replacement.ID
		return nil
	})
	if err != nil {
		return CommandResult{}, err
	}
	return resultFor(replacementID, account, map[string]any{"balance": account.Summary.AccountBalance}), nil
}

// GetTransaction reads one transaction from an account's ledger.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, accountID, transactionID string) (*domain.Transaction, error) {
	account, err := uc.deps.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return account.FindTransaction(transactionID)
}
