package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/godeposit/internal/domain"
)

// ChargeUseCase manages fees and penalties on deposit accounts.
type ChargeUseCase struct {
	deps     commandDeps
	accounts AccountRepository
	calendar CalendarService
	idGen    IDGenerator
	clock    Clock
}

// NewChargeUseCase creates a new ChargeUseCase.
func NewChargeUseCase(
	txManager TransactionManager,
	accounts AccountRepository,
	journal JournalPoster,
	calendar CalendarService,
	idGen IDGenerator,
	clock Clock,
	retrier Retrier,
) *ChargeUseCase {
	return &ChargeUseCase{
		deps: commandDeps{
			txManager: txManager,
			accounts:  accounts,
			journal:   journal,
			retrier:   retrier,
		},
		accounts: accounts,
		calendar: calendar,
		idGen:    idGen,
		clock:    clock,
	}
}

// AddChargeInput represents input for attaching a charge to an account.
type AddChargeInput struct {
	AccountID          string
	ChargeDefinitionID string
	Name               string
	Calculation        domain.ChargeCalculation
	Time               domain.ChargeTime
	Penalty            bool
	DueDate            *time.Time
	Percentage         decimal.Decimal
	Amount             decimal.Decimal
}

// checkDueDate enforces the account's working-day and holiday policy on
// a charge due date, mirroring the ledger's transaction-date policy.
func (uc *ChargeUseCase) checkDueDate(ctx context.Context, account *domain.Account, date time.Time) error {
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

// AddCharge attaches a charge to the account. A specified due date must
// land on a working day unless the account's policy allows otherwise.
func (uc *ChargeUseCase) AddCharge(ctx context.Context, input AddChargeInput) (CommandResult, error) {
	chargeID := uc.idGen.Generate()
	account, err := uc.deps.run(ctx, input.AccountID, func(a *domain.Account) error {
		if input.DueDate != nil {
			if err := uc.checkDueDate(ctx, a, *input.DueDate); err != nil {
				return err
			}
		}
		return a.AddCharge(&domain.Charge{
			ID:                 chargeID,
			ChargeDefinitionID: input.ChargeDefinitionID,
			Name:               input.Name,
			Calculation:        input.Calculation,
			Time:               input.Time,
			Penalty:            input.Penalty,
			DueDate:            input.DueDate,
			Percentage:         input.Percentage,
			AmountExpected:     input.Amount,
		})
	})
	if err != nil {
		return CommandResult{}, err
	}
	return resultFor(chargeID, account, nil), nil
}

// PayChargeInput represents input for settling a charge.
type PayChargeInput struct {
	AccountID string
	ChargeID  string
	Amount    decimal.Decimal
	// Date is the business date of the payment; zero means today.
	Date time.Time
}

// PayCharge settles (part of) a charge, posting the payment as a ledger
// debit.
func (uc *ChargeUseCase) PayCharge(ctx context.Context, input PayChargeInput) (CommandResult, error) {
	var val domain.Validator
	val.RequireNotBlank("accountId", input.AccountID)
	val.RequireNotBlank("chargeId", input.ChargeID)
	val.RequirePositive("amount", input.Amount)
	if err := val.Result(); err != nil {
		return CommandResult{}, err
	}

	date := input.Date
	if date.IsZero() {
		date = uc.clock.Today()
	}
	now := uc.clock.Now()

	var txID string
	account, err := uc.deps.run(ctx, input.AccountID, func(a *domain.Account) error {
		tx, err := a.PayCharge(uc.idGen.Generate(), input.ChargeID, input.Amount, date, now)
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

// WaiveCharge forgives a charge's outstanding amount.
func (uc *ChargeUseCase) WaiveCharge(ctx context.Context, accountID, chargeID string) (CommandResult, error) {
	var waived decimal.Decimal
	account, err := uc.deps.run(ctx, accountID, func(a *domain.Account) error {
		amount, err := a.WaiveCharge(chargeID)
		if err != nil {
			return err
		}
		waived = amount
		return nil
	})
	if err != nil {
		return CommandResult{}, err
	}
	return resultFor(chargeID, account, map[string]any{"waived": waived}), nil
}

// ApplyChargesDueForAccounts is the scheduled job collecting every due
// periodic and specified-due-date charge across active accounts.
func (uc *ChargeUseCase) ApplyChargesDueForAccounts(ctx context.Context, asOf time.Time) (BatchResult, error) {
	ids, err := uc.accounts.ListActiveIDs(ctx)
	if err != nil {
		return BatchResult{}, err
	}
	if asOf.IsZero() {
		asOf = uc.clock.Today()
	}
	now := uc.clock.Now()

	result := BatchResult{}
	for _, id := range ids {
		result.Processed++
		_, err := uc.deps.run(ctx, id, func(a *domain.Account) error {
			applied, err := a.ApplyChargesDue(uc.idGen.Generate, asOf, now)
			if err != nil || len(applied) == 0 {
				return err
			}
			// Charges pay out on their due dates, which may sit behind
			// the last interest posting.
			earliest := applied[0].TransactionDate
			for _, tx := range applied[1:] {
				if domain.BeforeDay(tx.TransactionDate, earliest) {
					earliest = tx.TransactionDate
				}
			}
			return a.RecomputeFrom(earliest, uc.idGen.Generate, now)
		})
		if err != nil {
			result.Failures = append(result.Failures, BatchFailure{AccountID: id, Err: err})
			continue
		}
		result.Succeeded++
	}
	return result, nil
}
