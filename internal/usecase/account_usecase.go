package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/godeposit/internal/domain"
	"github.com/iho/godeposit/internal/domain/interest"
)

// AccountUseCase handles the deposit account lifecycle.
type AccountUseCase struct {
	deps       commandDeps
	accounts   AccountRepository
	currencies CurrencyService
	idGen      IDGenerator
	clock      Clock
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accounts AccountRepository,
	journal JournalPoster,
	currencies CurrencyService,
	idGen IDGenerator,
	clock Clock,
	retrier Retrier,
) *AccountUseCase {
	return &AccountUseCase{
		deps: commandDeps{
			txManager: txManager,
			accounts:  accounts,
			journal:   journal,
			retrier:   retrier,
		},
		accounts:   accounts,
		currencies: currencies,
		idGen:      idGen,
		clock:      clock,
	}
}

// TermInput configures a fixed or recurring deposit term.
type TermInput struct {
	DepositAmount           decimal.Decimal
	DepositPeriodMonths     int
	PrematureClosureAllowed bool
	PrematurePenaltyRate    decimal.Decimal
}

// RecurrenceInput configures the mandatory installments of a recurring
// deposit.
type RecurrenceInput struct {
	Frequency         domain.RecurrenceFrequency
	Every             int
	InstallmentAmount decimal.Decimal
}

// OpenAccountInput represents input for submitting a new account
// application.
type OpenAccountInput struct {
	ClientID     string
	OfficeID     string
	Kind         domain.AccountKind
	CurrencyCode string

	NominalAnnualRate     decimal.Decimal
	OverdraftRate         decimal.Decimal
	CompoundingPeriod     interest.CompoundingType
	PostingPeriod         interest.PostingType
	CalculationMethod     interest.CalculationMethod
	DaysInYear            int
	MinBalanceForInterest decimal.Decimal
	FinancialYearStart    time.Month

	OpeningBalance decimal.Decimal
	AllowOverdraft bool
	OverdraftLimit decimal.Decimal
	LockInMonths   int

	AllowTransactionsOnHolidays       bool
	AllowTransactionsOnNonWorkingDays bool
	WithdrawalFeeForTransfer          bool

	Term       *TermInput
	Recurrence *RecurrenceInput
}

func (input OpenAccountInput) validate() error {
	var val domain.Validator
	val.RequireNotBlank("clientId", input.ClientID)
	val.RequireNotBlank("officeId", input.OfficeID)
	val.RequireNotBlank("currencyCode", input.CurrencyCode)
	val.RequireNonNegative("nominalAnnualRate", input.NominalAnnualRate)
	val.RequireNonNegative("overdraftRate", input.OverdraftRate)
	val.RequireNonNegative("openingBalance", input.OpeningBalance)
	val.RequireNonNegative("minBalanceForInterest", input.MinBalanceForInterest)

	switch input.Kind {
	case domain.KindSavings, domain.KindFixedDeposit, domain.KindRecurringDeposit:
	default:
		val.Add("kind", "kind.unknown", "must be savings, fixed_deposit or recurring_deposit")
	}
	if input.DaysInYear != 360 && input.DaysInYear != 365 {
		val.Add("daysInYear", "days.in.year.unsupported", "must be 360 or 365")
	}
	if input.Kind.IsTermDeposit() {
		if input.Term == nil {
			val.Add("term", "term.required", "term deposits need a deposit term")
		} else {
			if input.Term.DepositPeriodMonths <= 0 {
				val.Add("term.depositPeriodMonths", "amount.not.positive", "must be greater than zero")
			}
			val.RequireNonNegative("term.prematurePenaltyRate", input.Term.PrematurePenaltyRate)
		}
	}
	if input.Kind == domain.KindRecurringDeposit {
		if input.Recurrence == nil {
			val.Add("recurrence", "recurrence.required", "recurring deposits need an installment schedule")
		} else {
			val.RequirePositive("recurrence.installmentAmount", input.Recurrence.InstallmentAmount)
			if input.Recurrence.Every <= 0 {
				val.Add("recurrence.every", "amount.not.positive", "must be greater than zero")
			}
		}
	}
	if input.AllowOverdraft {
		val.RequirePositive("overdraftLimit", input.OverdraftLimit)
	}
	return val.Result()
}

// OpenAccount submits a new account application.
func (uc *AccountUseCase) OpenAccount(ctx context.Context, input OpenAccountInput) (*domain.Account, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	currency, err := uc.currencies.Lookup(ctx, input.CurrencyCode)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		ID:       uc.idGen.Generate(),
		OfficeID: input.OfficeID,
		ClientID: input.ClientID,
		Kind:     input.Kind,
		Status:   domain.StatusSubmittedPendingApproval,
		Currency: currency,

		OpeningBalance: input.OpeningBalance,

		NominalAnnualRate:     input.NominalAnnualRate,
		OverdraftRate:         input.OverdraftRate,
		CompoundingPeriod:     input.CompoundingPeriod,
		PostingPeriod:         input.PostingPeriod,
		CalculationMethod:     input.CalculationMethod,
		DaysInYear:            input.DaysInYear,
		MinBalanceForInterest: input.MinBalanceForInterest,
		FinancialYearStart:    input.FinancialYearStart,

		AllowOverdraft: input.AllowOverdraft,
		OverdraftLimit: input.OverdraftLimit,
		LockInMonths:   input.LockInMonths,

		AllowTransactionsOnHolidays:       input.AllowTransactionsOnHolidays,
		AllowTransactionsOnNonWorkingDays: input.AllowTransactionsOnNonWorkingDays,
		WithdrawalFeeForTransfer:          input.WithdrawalFeeForTransfer,

		SubmittedOn: uc.clock.Today(),
	}
	if input.Term != nil {
		account.Term = &domain.TermDetails{
			DepositAmount:           input.Term.DepositAmount,
			DepositPeriodMonths:     input.Term.DepositPeriodMonths,
			PrematureClosureAllowed: input.Term.PrematureClosureAllowed,
			PrematurePenaltyRate:    input.Term.PrematurePenaltyRate,
		}
	}
	if input.Recurrence != nil {
		account.Recurrence = &domain.Recurrence{
			Frequency:         input.Recurrence.Frequency,
			Every:             input.Recurrence.Every,
			InstallmentAmount: input.Recurrence.InstallmentAmount,
		}
	}

	if err := uc.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// LifecycleInput addresses a lifecycle command at one account.
type LifecycleInput struct {
	AccountID string
	// Date is the business date of the action; zero means today.
	Date time.Time
}

func (uc *AccountUseCase) lifecycleDate(input LifecycleInput) time.Time {
	if input.Date.IsZero() {
		return uc.clock.Today()
	}
	return domain.ToDate(input.Date)
}

// ApproveAccount approves a submitted application.
func (uc *AccountUseCase) ApproveAccount(ctx context.Context, input LifecycleInput) (CommandResult, error) {
	date := uc.lifecycleDate(input)
	account, err := uc.deps.run(ctx, input.AccountID, func(a *domain.Account) error {
		return a.Approve(date)
	})
	if err != nil {
		return CommandResult{}, err
	}
	return resultFor(account.ID, account, map[string]any{"status": account.Status}), nil
}

// UndoApproval returns an approved application to pending.
func (uc *AccountUseCase) UndoApproval(ctx context.Context, accountID string) (CommandResult, error) {
	account, err := uc.deps.run(ctx, accountID, func(a *domain.Account) error {
		return a.UndoApproval()
	})
	if err != nil {
		return CommandResult{}, err
	}
	return resultFor(account.ID, account, map[string]any{"status": account.Status}), nil
}

// RejectAccount declines a submitted application.
func (uc *AccountUseCase) RejectAccount(ctx context.Context, input LifecycleInput) (CommandResult, error) {
	date := uc.lifecycleDate(input)
	account, err := uc.deps.run(ctx, input.AccountID, func(a *domain.Account) error {
		return a.Reject(date)
	})
	if err != nil {
		return CommandResult{}, err
	}
	return resultFor(account.ID, account, map[string]any{"status": account.Status}), nil
}

// WithdrawApplication lets the applicant pull the application.
func (uc *AccountUseCase) WithdrawApplication(ctx context.Context, input LifecycleInput) (CommandResult, error) {
	date := uc.lifecycleDate(input)
	account, err := uc.deps.run(ctx, input.AccountID, func(a *domain.Account) error {
		return a.WithdrawApplication(date)
	})
	if err != nil {
		return CommandResult{}, err
	}
	return resultFor(account.ID, account, map[string]any{"status": account.Status}), nil
}

// ActivateAccount opens an approved account for transactions.
func (uc *AccountUseCase) ActivateAccount(ctx context.Context, input LifecycleInput) (CommandResult, error) {
	date := uc.lifecycleDate(input)
	now := uc.clock.Now()
	account, err := uc.deps.run(ctx, input.AccountID, func(a *domain.Account) error {
		return a.Activate(uc.idGen.Generate, date, now)
	})
	if err != nil {
		return CommandResult{}, err
	}
	return resultFor(account.ID, account, map[string]any{
		"status":  account.Status,
		"balance": account.Summary.AccountBalance,
	}), nil
}

// UndoActivation reverts an activation, reversing everything posted
// since.
func (uc *AccountUseCase) UndoActivation(ctx context.Context, accountID string) (CommandResult, error) {
	account, err := uc.deps.run(ctx, accountID, func(a *domain.Account) error {
		return a.UndoActivation()
	})
	if err != nil {
		return CommandResult{}, err
	}
	return resultFor(account.ID, account, map[string]any{"status": account.Status}), nil
}

// CloseAccount settles and closes an active account.
func (uc *AccountUseCase) CloseAccount(ctx context.Context, input LifecycleInput) (CommandResult, error) {
	date := uc.lifecycleDate(input)
	now := uc.clock.Now()
	account, err := uc.deps.run(ctx, input.AccountID, func(a *domain.Account) error {
		return a.Close(uc.idGen.Generate, date, now)
	})
	if err != nil {
		return CommandResult{}, err
	}
	return resultFor(account.ID, account, map[string]any{"status": account.Status}), nil
}

// CloseAccountPrematurely closes a term deposit before maturity at the
// penal rate.
func (uc *AccountUseCase) CloseAccountPrematurely(ctx context.Context, input LifecycleInput) (CommandResult, error) {
	date := uc.lifecycleDate(input)
	now := uc.clock.Now()
	account, err := uc.deps.run(ctx, input.AccountID, func(a *domain.Account) error {
		return a.ClosePrematurely(uc.idGen.Generate, date, now)
	})
	if err != nil {
		return CommandResult{}, err
	}
	return resultFor(account.ID, account, map[string]any{
		"status":         account.Status,
		"maturityAmount": account.Term.MaturityAmount,
	}), nil
}

// PreviewPrematureClosure quotes the payout for closing a term deposit
// on the given date without committing anything.
func (uc *AccountUseCase) PreviewPrematureClosure(ctx context.Context, accountID string, asOf time.Time) (domain.Money, error) {
	account, err := uc.accounts.GetByID(ctx, accountID)
	if err != nil {
		return domain.Money{}, err
	}
	if asOf.IsZero() {
		asOf = uc.clock.Today()
	}
	return account.PrematureClosureAmount(asOf)
}

// GetAccount retrieves an account aggregate by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accounts.GetByID(ctx, id)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	if input.Limit <= 0 {
		input.Limit = defaultListLimit
	}
	if input.Limit > maxListLimit {
		input.Limit = maxListLimit
	}
	return uc.accounts.List(ctx, input.Limit, input.Offset)
}
