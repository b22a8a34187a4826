package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/godeposit/internal/domain"
	"github.com/iho/godeposit/internal/domain/interest"
	"github.com/iho/godeposit/internal/usecase"
)

// SummaryResponse carries the derived lifetime totals of an account.
type SummaryResponse struct {
	TotalDeposits       decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals    decimal.Decimal `json:"total_withdrawals"`
	TotalInterestPosted decimal.Decimal `json:"total_interest_posted"`
	TotalChargesPaid    decimal.Decimal `json:"total_charges_paid"`
	AccountBalance      decimal.Decimal `json:"account_balance"`
}

// TermResponse represents a fixed/recurring deposit term.
type TermResponse struct {
	DepositAmount           decimal.Decimal `json:"deposit_amount"`
	DepositPeriodMonths     int             `json:"deposit_period_months"`
	MaturityDate            *time.Time      `json:"maturity_date,omitempty"`
	MaturityAmount          decimal.Decimal `json:"maturity_amount"`
	PrematureClosureAllowed bool            `json:"premature_closure_allowed"`
	PrematurePenaltyRate    decimal.Decimal `json:"premature_penalty_rate"`
}

// InstallmentResponse represents one recurring deposit installment.
type InstallmentResponse struct {
	Seq       int             `json:"seq"`
	DueDate   time.Time       `json:"due_date"`
	Amount    decimal.Decimal `json:"amount"`
	Deposited decimal.Decimal `json:"deposited"`
	Overdue   bool            `json:"overdue"`
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID       string `json:"id"`
	OfficeID string `json:"office_id"`
	ClientID string `json:"client_id"`
	Kind     string `json:"kind"`
	Status   string `json:"status"`
	Currency string `json:"currency"`

	NominalAnnualRate decimal.Decimal `json:"nominal_annual_rate"`
	CompoundingPeriod string          `json:"compounding_period"`
	PostingPeriod     string          `json:"posting_period"`
	CalculationMethod string          `json:"calculation_method"`
	DaysInYear        int             `json:"days_in_year"`

	AllowOverdraft bool            `json:"allow_overdraft"`
	OverdraftLimit decimal.Decimal `json:"overdraft_limit"`

	SubmittedOn          time.Time  `json:"submitted_on"`
	ApprovedOn           *time.Time `json:"approved_on,omitempty"`
	ActivatedOn          *time.Time `json:"activated_on,omitempty"`
	ClosedOn             *time.Time `json:"closed_on,omitempty"`
	LastInterestPostedOn *time.Time `json:"last_interest_posted_on,omitempty"`
	LockedInUntil        *time.Time `json:"locked_in_until,omitempty"`

	Summary      SummaryResponse       `json:"summary"`
	Term         *TermResponse         `json:"term,omitempty"`
	Installments []InstallmentResponse `json:"installments,omitempty"`

	Version int64 `json:"version"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	resp := &AccountResponse{
		ID:       a.ID,
		OfficeID: a.OfficeID,
		ClientID: a.ClientID,
		Kind:     string(a.Kind),
		Status:   string(a.Status),
		Currency: a.Currency.Code,

		NominalAnnualRate: a.NominalAnnualRate,
		CompoundingPeriod: string(a.CompoundingPeriod),
		PostingPeriod:     string(a.PostingPeriod),
		CalculationMethod: string(a.CalculationMethod),
		DaysInYear:        a.DaysInYear,

		AllowOverdraft: a.AllowOverdraft,
		OverdraftLimit: a.OverdraftLimit,

		SubmittedOn:          a.SubmittedOn,
		ApprovedOn:           a.ApprovedOn,
		ActivatedOn:          a.ActivatedOn,
		ClosedOn:             a.ClosedOn,
		LastInterestPostedOn: a.LastInterestPostedOn,
		LockedInUntil:        a.LockedInUntil,

		Summary: SummaryResponse{
			TotalDeposits:       a.Summary.TotalDeposits,
			TotalWithdrawals:    a.Summary.TotalWithdrawals,
			TotalInterestPosted: a.Summary.TotalInterestPosted,
			TotalChargesPaid:    a.Summary.TotalChargesPaid,
			AccountBalance:      a.Summary.AccountBalance,
		},

		Version: a.Version,
	}

	if a.Term != nil {
		resp.Term = &TermResponse{
			DepositAmount:           a.Term.DepositAmount,
			DepositPeriodMonths:     a.Term.DepositPeriodMonths,
			MaturityDate:            a.Term.MaturityDate,
			MaturityAmount:          a.Term.MaturityAmount,
			PrematureClosureAllowed: a.Term.PrematureClosureAllowed,
			PrematurePenaltyRate:    a.Term.PrematurePenaltyRate,
		}
	}
	if a.Recurrence != nil {
		for _, inst := range a.Recurrence.Installments {
			resp.Installments = append(resp.Installments, InstallmentResponse{
				Seq:       inst.Seq,
				DueDate:   inst.DueDate,
				Amount:    inst.Amount,
				Deposited: inst.Deposited,
				Overdue:   inst.Overdue,
			})
		}
	}

	return resp
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps an account listing.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// TransactionResponse represents a ledger transaction.
type TransactionResponse struct {
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate time.Time       `json:"transaction_date"`
	RunningBalance  decimal.Decimal `json:"running_balance"`
	Reversed        bool            `json:"reversed"`
	ReplacedByID    string          `json:"replaced_by_id,omitempty"`
	TransferID      string          `json:"transfer_id,omitempty"`
	ChargeID        string          `json:"charge_id,omitempty"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(tx *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:              tx.ID,
		Type:            string(tx.Type),
		Amount:          tx.Amount.Amount(),
		TransactionDate: tx.TransactionDate,
		RunningBalance:  tx.RunningBalance.Amount(),
		Reversed:        tx.Reversed,
		ReplacedByID:    tx.ReplacedByID,
		TransferID:      tx.TransferID,
		ChargeID:        tx.ChargeID,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txs []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txs))
	for i, tx := range txs {
		result[i] = TransactionFromDomain(tx)
	}
	return result
}

// ChargeResponse represents an account charge.
type ChargeResponse struct {
	ID                 string          `json:"id"`
	ChargeDefinitionID string          `json:"charge_definition_id"`
	Name               string          `json:"name"`
	Calculation        string          `json:"calculation"`
	Time               string          `json:"time"`
	Penalty            bool            `json:"penalty"`
	DueDate            *time.Time      `json:"due_date,omitempty"`
	Percentage         decimal.Decimal `json:"percentage"`
	AmountExpected     decimal.Decimal `json:"amount_expected"`
	AmountPaid         decimal.Decimal `json:"amount_paid"`
	AmountWaived       decimal.Decimal `json:"amount_waived"`
	AmountWrittenOff   decimal.Decimal `json:"amount_written_off"`
	Outstanding        decimal.Decimal `json:"outstanding"`
	Active             bool            `json:"active"`
}

// ChargeFromDomain converts domain charge to response.
func ChargeFromDomain(c *domain.Charge) *ChargeResponse {
	return &ChargeResponse{
		ID:                 c.ID,
		ChargeDefinitionID: c.ChargeDefinitionID,
		Name:               c.Name,
		Calculation:        string(c.Calculation),
		Time:               string(c.Time),
		Penalty:            c.Penalty,
		DueDate:            c.DueDate,
		Percentage:         c.Percentage,
		AmountExpected:     c.AmountExpected,
		AmountPaid:         c.AmountPaid,
		AmountWaived:       c.AmountWaived,
		AmountWrittenOff:   c.AmountWrittenOff,
		Outstanding:        c.Outstanding(),
		Active:             c.Active,
	}
}

// ChargesFromDomain converts domain charges to responses.
func ChargesFromDomain(charges []*domain.Charge) []*ChargeResponse {
	result := make([]*ChargeResponse, len(charges))
	for i, c := range charges {
		result[i] = ChargeFromDomain(c)
	}
	return result
}

// TransferResponse represents a transfer in API responses.
type TransferResponse struct {
	ID               string          `json:"id"`
	FromAccountID    string          `json:"from_account_id"`
	ToAccountID      string          `json:"to_account_id"`
	FromOfficeID     string          `json:"from_office_id"`
	ToOfficeID       string          `json:"to_office_id"`
	Amount           decimal.Decimal `json:"amount"`
	TransferDate     time.Time       `json:"transfer_date"`
	Status           string          `json:"status"`
	OutTransactionID string          `json:"out_transaction_id,omitempty"`
	InTransactionID  string          `json:"in_transaction_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// TransferFromDomain converts domain transfer to response.
func TransferFromDomain(t *domain.AccountTransfer) *TransferResponse {
	return &TransferResponse{
		ID:               t.ID,
		FromAccountID:    t.FromAccountID,
		ToAccountID:      t.ToAccountID,
		FromOfficeID:     t.FromOfficeID,
		ToOfficeID:       t.ToOfficeID,
		Amount:           t.Amount,
		TransferDate:     t.TransferDate,
		Status:           string(t.Status),
		OutTransactionID: t.OutTransactionID,
		InTransactionID:  t.InTransactionID,
		CreatedAt:        t.CreatedAt,
	}
}

// TransfersFromDomain converts domain transfers to responses.
func TransfersFromDomain(transfers []*domain.AccountTransfer) []*TransferResponse {
	result := make([]*TransferResponse, len(transfers))
	for i, t := range transfers {
		result[i] = TransferFromDomain(t)
	}
	return result
}

// CommandResponse represents the outcome of a mutating command.
type CommandResponse struct {
	EntityID  string         `json:"entity_id"`
	AccountID string         `json:"account_id"`
	OfficeID  string         `json:"office_id"`
	ClientID  string         `json:"client_id"`
	Changes   map[string]any `json:"changes,omitempty"`
}

// CommandFromResult converts a usecase command result to response.
func CommandFromResult(res usecase.CommandResult) CommandResponse {
	return CommandResponse{
		EntityID:  res.EntityID,
		AccountID: res.AccountID,
		OfficeID:  res.OfficeID,
		ClientID:  res.ClientID,
		Changes:   res.Changes,
	}
}

// InterestPeriodResponse represents one computed posting period.
type InterestPeriodResponse struct {
	Start          time.Time       `json:"start"`
	End            time.Time       `json:"end"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Interest       decimal.Decimal `json:"interest"`
	PostingDate    time.Time       `json:"posting_date"`
	Complete       bool            `json:"complete"`
}

// InterestPeriodsFromDomain converts computed periods, rounding each
// period's interest at the currency precision.
func InterestPeriodsFromDomain(periods []interest.PostingPeriod, currency domain.Currency) []InterestPeriodResponse {
	result := make([]InterestPeriodResponse, len(periods))
	for i, p := range periods {
		result[i] = InterestPeriodResponse{
			Start:          p.Interval.Start,
			End:            p.Interval.End,
			OpeningBalance: p.OpeningBalance,
			ClosingBalance: p.ClosingBalance,
			Interest:       p.Interest.RoundBank(currency.DecimalPlaces),
			PostingDate:    p.PostingDate,
			Complete:       p.Complete,
		}
	}
	return result
}

// BatchResultResponse reports a batch job run.
type BatchResultResponse struct {
	Processed int                    `json:"processed"`
	Succeeded int                    `json:"succeeded"`
	Failed    int                    `json:"failed"`
	Failures  []BatchFailureResponse `json:"failures,omitempty"`
}

// BatchFailureResponse records one account a batch job could not
// process.
type BatchFailureResponse struct {
	AccountID string `json:"account_id"`
	Error     string `json:"error"`
}

// BatchFromResult converts a usecase batch result to response.
func BatchFromResult(res usecase.BatchResult) BatchResultResponse {
	out := BatchResultResponse{
		Processed: res.Processed,
		Succeeded: res.Succeeded,
		Failed:    res.Failed(),
	}
	for _, f := range res.Failures {
		out.Failures = append(out.Failures, BatchFailureResponse{
			AccountID: f.AccountID,
			Error:     f.Err.Error(),
		})
	}
	return out
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string                    `json:"error"`
	Message string                    `json:"message,omitempty"`
	Fields  []ValidationErrorResponse `json:"fields,omitempty"`
}

// ValidationErrorResponse represents one invalid field.
type ValidationErrorResponse struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
