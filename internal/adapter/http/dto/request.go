package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/godeposit/internal/domain"
	"github.com/iho/godeposit/internal/domain/interest"
	"github.com/iho/godeposit/internal/usecase"
)

// TermRequest configures a fixed or recurring deposit term.
type TermRequest struct {
	DepositAmount           decimal.Decimal `json:"deposit_amount"`
	DepositPeriodMonths     int             `json:"deposit_period_months"`
	PrematureClosureAllowed bool            `json:"premature_closure_allowed"`
	PrematurePenaltyRate    decimal.Decimal `json:"premature_penalty_rate"`
}

// RecurrenceRequest configures recurring deposit installments.
type RecurrenceRequest struct {
	Frequency         string          `json:"frequency"`
	Every             int             `json:"every"`
	InstallmentAmount decimal.Decimal `json:"installment_amount"`
}

// OpenAccountRequest represents a request to submit an account
// application.
type OpenAccountRequest struct {
	ClientID     string `json:"client_id"`
	OfficeID     string `json:"office_id"`
	Kind         string `json:"kind"`
	CurrencyCode string `json:"currency_code"`

	NominalAnnualRate     decimal.Decimal `json:"nominal_annual_rate"`
	OverdraftRate         decimal.Decimal `json:"overdraft_rate"`
	CompoundingPeriod     string          `json:"compounding_period"`
	PostingPeriod         string          `json:"posting_period"`
	CalculationMethod     string          `json:"calculation_method"`
	DaysInYear            int             `json:"days_in_year"`
	MinBalanceForInterest decimal.Decimal `json:"min_balance_for_interest"`
	FinancialYearStart    int             `json:"financial_year_start,omitempty"`

	OpeningBalance decimal.Decimal `json:"opening_balance"`
	AllowOverdraft bool            `json:"allow_overdraft"`
	OverdraftLimit decimal.Decimal `json:"overdraft_limit"`
	LockInMonths   int             `json:"lock_in_months"`

	AllowTransactionsOnHolidays       bool `json:"allow_transactions_on_holidays"`
	AllowTransactionsOnNonWorkingDays bool `json:"allow_transactions_on_non_working_days"`
	WithdrawalFeeForTransfer          bool `json:"withdrawal_fee_for_transfer"`

	Term       *TermRequest       `json:"term,omitempty"`
	Recurrence *RecurrenceRequest `json:"recurrence,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *OpenAccountRequest) ToUseCaseInput() usecase.OpenAccountInput {
	input := usecase.OpenAccountInput{
		ClientID:     r.ClientID,
		OfficeID:     r.OfficeID,
		Kind:         domain.AccountKind(r.Kind),
		CurrencyCode: r.CurrencyCode,

		NominalAnnualRate:     r.NominalAnnualRate,
		OverdraftRate:         r.OverdraftRate,
		CompoundingPeriod:     interest.CompoundingType(r.CompoundingPeriod),
		PostingPeriod:         interest.PostingType(r.PostingPeriod),
		CalculationMethod:     interest.CalculationMethod(r.CalculationMethod),
		DaysInYear:            r.DaysInYear,
		MinBalanceForInterest: r.MinBalanceForInterest,
		FinancialYearStart:    time.Month(r.FinancialYearStart),

		OpeningBalance: r.OpeningBalance,
		AllowOverdraft: r.AllowOverdraft,
		OverdraftLimit: r.OverdraftLimit,
		LockInMonths:   r.LockInMonths,

		AllowTransactionsOnHolidays:       r.AllowTransactionsOnHolidays,
		AllowTransactionsOnNonWorkingDays: r.AllowTransactionsOnNonWorkingDays,
		WithdrawalFeeForTransfer:          r.WithdrawalFeeForTransfer,
	}

	if r.Term != nil {
		input.Term = &usecase.TermInput{
			DepositAmount:           r.Term.DepositAmount,
			DepositPeriodMonths:     r.Term.DepositPeriodMonths,
			PrematureClosureAllowed: r.Term.PrematureClosureAllowed,
			PrematurePenaltyRate:    r.Term.PrematurePenaltyRate,
		}
	}
	if r.Recurrence != nil {
		input.Recurrence = &usecase.RecurrenceInput{
			Frequency:         domain.RecurrenceFrequency(r.Recurrence.Frequency),
			Every:             r.Recurrence.Every,
			InstallmentAmount: r.Recurrence.InstallmentAmount,
		}
	}

	return input
}

// LifecycleRequest carries the business date of a lifecycle action.
type LifecycleRequest struct {
	Date *time.Time `json:"date,omitempty"`
}

// ToUseCaseInput converts to use case input for the given account.
func (r *LifecycleRequest) ToUseCaseInput(accountID string) usecase.LifecycleInput {
	input := usecase.LifecycleInput{AccountID: accountID}
	if r.Date != nil {
		input.Date = *r.Date
	}
	return input
}

// TransactionRequest represents a deposit or withdrawal.
type TransactionRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Date   *time.Time      `json:"date,omitempty"`
}

// ToUseCaseInput converts to use case input for the given account.
func (r *TransactionRequest) ToUseCaseInput(accountID string) usecase.TransactionInput {
	input := usecase.TransactionInput{
		AccountID: accountID,
		Amount:    r.Amount,
	}
	if r.Date != nil {
		input.Date = *r.Date
	}
	return input
}

// AdjustTransactionRequest carries the corrected amount and date.
type AdjustTransactionRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Date   *time.Time      `json:"date,omitempty"`
}

// ToUseCaseInput converts to use case input for the given transaction.
func (r *AdjustTransactionRequest) ToUseCaseInput(accountID, transactionID string) usecase.AdjustTransactionInput {
	input := usecase.AdjustTransactionInput{
		AccountID:     accountID,
		TransactionID: transactionID,
		NewAmount:     r.Amount,
	}
	if r.Date != nil {
		input.NewDate = *r.Date
	}
	return input
}

// PostInterestRequest carries the posting cut-off date.
type PostInterestRequest struct {
	UpTo *time.Time `json:"up_to,omitempty"`
}

// ToUseCaseInput converts to use case input for the given account.
func (r *PostInterestRequest) ToUseCaseInput(accountID string) usecase.PostInterestInput {
	input := usecase.PostInterestInput{AccountID: accountID}
	if r.UpTo != nil {
		input.UpTo = *r.UpTo
	}
	return input
}

// AddChargeRequest represents a request to attach a charge.
type AddChargeRequest struct {
	ChargeDefinitionID string          `json:"charge_definition_id"`
	Name               string          `json:"name"`
	Calculation        string          `json:"calculation"`
	Time               string          `json:"time"`
	Penalty            bool            `json:"penalty"`
	DueDate            *time.Time      `json:"due_date,omitempty"`
	Percentage         decimal.Decimal `json:"percentage"`
	Amount             decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input for the given account.
func (r *AddChargeRequest) ToUseCaseInput(accountID string) usecase.AddChargeInput {
	return usecase.AddChargeInput{
		AccountID:          accountID,
		ChargeDefinitionID: r.ChargeDefinitionID,
		Name:               r.Name,
		Calculation:        domain.ChargeCalculation(r.Calculation),
		Time:               domain.ChargeTime(r.Time),
		Penalty:            r.Penalty,
		DueDate:            r.DueDate,
		Percentage:         r.Percentage,
		Amount:             r.Amount,
	}
}

// PayChargeRequest represents a request to settle a charge.
type PayChargeRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Date   *time.Time      `json:"date,omitempty"`
}

// ToUseCaseInput converts to use case input for the given charge.
func (r *PayChargeRequest) ToUseCaseInput(accountID, chargeID string) usecase.PayChargeInput {
	input := usecase.PayChargeInput{
		AccountID: accountID,
		ChargeID:  chargeID,
		Amount:    r.Amount,
	}
	if r.Date != nil {
		input.Date = *r.Date
	}
	return input
}

// InitiateTransferRequest represents a request to start a transfer.
type InitiateTransferRequest struct {
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	TransferDate  *time.Time      `json:"transfer_date,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *InitiateTransferRequest) ToUseCaseInput() usecase.InitiateTransferInput {
	input := usecase.InitiateTransferInput{
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		Amount:        r.Amount,
	}
	if r.TransferDate != nil {
		input.TransferDate = *r.TransferDate
	}
	return input
}
