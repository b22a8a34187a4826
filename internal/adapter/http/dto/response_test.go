package dto

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/godeposit/internal/domain"
	"github.com/iho/godeposit/internal/domain/interest"
	"github.com/iho/godeposit/internal/usecase"
)

func TestAccountFromDomain(t *testing.T) {
	activated := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	maturity := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	account := &domain.Account{
		ID:                "acc-1",
		OfficeID:          "office-1",
		ClientID:          "client-1",
		Kind:              domain.KindFixedDeposit,
		Status:            domain.StatusActive,
		Currency:          domain.Currency{Code: "USD", DecimalPlaces: 2},
		NominalAnnualRate: decimal.RequireFromString("5"),
		CompoundingPeriod: interest.CompoundDaily,
		PostingPeriod:     interest.PostMonthly,
		CalculationMethod: interest.DailyBalance,
		DaysInYear:        365,
		SubmittedOn:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ActivatedOn:       &activated,
		Term: &domain.TermDetails{
			DepositAmount:       decimal.RequireFromString("1000"),
			DepositPeriodMonths: 12,
			MaturityDate:        &maturity,
			MaturityAmount:      decimal.RequireFromString("1051.16"),
		},
		Summary: domain.Summary{
			TotalDeposits:  decimal.RequireFromString("1000"),
			AccountBalance: decimal.RequireFromString("1000"),
		},
		Version: 3,
	}

	got := AccountFromDomain(account)

	if got.ID != "acc-1" || got.Kind != "fixed_deposit" || got.Status != "active" {
		t.Fatalf("identity fields not mapped: %+v", got)
	}
	if got.Currency != "USD" {
		t.Fatalf("Currency = %q, want USD", got.Currency)
	}
	if got.ActivatedOn == nil || !got.ActivatedOn.Equal(activated) {
		t.Fatalf("ActivatedOn = %v, want %v", got.ActivatedOn, activated)
	}
	if got.Term == nil || !got.Term.MaturityAmount.Equal(decimal.RequireFromString("1051.16")) {
		t.Fatalf("Term not mapped: %+v", got.Term)
	}
	if !got.Summary.AccountBalance.Equal(decimal.RequireFromString("1000")) {
		t.Fatalf("Summary.AccountBalance = %s, want 1000", got.Summary.AccountBalance)
	}
	if got.Version != 3 {
		t.Fatalf("Version = %d, want 3", got.Version)
	}
}

func TestTransactionFromDomain(t *testing.T) {
	usd := domain.Currency{Code: "USD", DecimalPlaces: 2}
	tx := &domain.Transaction{
		ID:              "tx-1",
		Type:            domain.TypeDeposit,
		Amount:          domain.NewMoney(usd, decimal.RequireFromString("250.75")),
		TransactionDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		RunningBalance:  domain.NewMoney(usd, decimal.RequireFromString("1250.75")),
	}

	got := TransactionFromDomain(tx)

	if got.Type != "deposit" {
		t.Fatalf("Type = %q, want deposit", got.Type)
	}
	if !got.Amount.Equal(decimal.RequireFromString("250.75")) {
		t.Fatalf("Amount = %s, want 250.75", got.Amount)
	}
	if !got.RunningBalance.Equal(decimal.RequireFromString("1250.75")) {
		t.Fatalf("RunningBalance = %s, want 1250.75", got.RunningBalance)
	}
}

func TestInterestPeriodsFromDomain_RoundsAtCurrencyPrecision(t *testing.T) {
	periods := []interest.PostingPeriod{
		{
			Interval: interest.Interval{
				Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			},
			Interest:    decimal.RequireFromString("4.267123"),
			PostingDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			Complete:    true,
		},
	}

	got := InterestPeriodsFromDomain(periods, domain.Currency{Code: "USD", DecimalPlaces: 2})

	if len(got) != 1 {
		t.Fatalf("expected 1 period, got %d", len(got))
	}
	if !got[0].Interest.Equal(decimal.RequireFromString("4.27")) {
		t.Fatalf("Interest = %s, want 4.27", got[0].Interest)
	}
	if !got[0].Complete {
		t.Fatal("expected complete period")
	}
}

func TestBatchFromResult(t *testing.T) {
	res := usecase.BatchResult{
		Processed: 3,
		Succeeded: 2,
		Failures: []usecase.BatchFailure{
			{AccountID: "acc-9", Err: errors.New("account is not active")},
		},
	}

	got := BatchFromResult(res)

	if got.Processed != 3 || got.Succeeded != 2 || got.Failed != 1 {
		t.Fatalf("counts not mapped: %+v", got)
	}
	if len(got.Failures) != 1 || got.Failures[0].AccountID != "acc-9" {
		t.Fatalf("failures not mapped: %+v", got.Failures)
	}
	if got.Failures[0].Error != "account is not active" {
		t.Fatalf("failure message = %q", got.Failures[0].Error)
	}
}

func TestCommandFromResult(t *testing.T) {
	res := usecase.CommandResult{
		EntityID:  "tx-1",
		AccountID: "acc-1",
		OfficeID:  "office-1",
		ClientID:  "client-1",
		Changes:   map[string]any{"status": "active"},
	}

	got := CommandFromResult(res)

	if got.EntityID != "tx-1" || got.AccountID != "acc-1" {
		t.Fatalf("IDs not mapped: %+v", got)
	}
	if got.Changes["status"] != "active" {
		t.Fatalf("Changes not mapped: %+v", got.Changes)
	}
}
