package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/godeposit/internal/domain"
	"github.com/iho/godeposit/internal/usecase"
)

func newTransferUseCase(env *testEnv) *usecase.TransferUseCase {
	return usecase.NewTransferUseCase(env.txm, env.accounts, env.transfers, env.journal, env.idGen, env.clock, env.retrier)
}

// seedTransferPair funds acc-a with 1000 on Jan 1 and registers an empty
// acc-b in another office.
func seedTransferPair(t *testing.T, env *testEnv) {
	t.Helper()
	source := activeSavings("acc-a")
	if _, err := source.Deposit("seed-1", day(2024, time.January, 1), decimal.NewFromInt(1000), env.clock.Now()); err != nil {
		t.Fatalf("seed deposit: %v", err)
	}
	env.accounts.Put(source)

	dest := activeSavings("acc-b")
	dest.OfficeID = "office-2"
	env.accounts.Put(dest)
}

func initiate(t *testing.T, env *testEnv, uc *usecase.TransferUseCase) usecase.CommandResult {
	t.Helper()
	result, err := uc.InitiateTransfer(context.Background(), usecase.InitiateTransferInput{
		FromAccountID: "acc-a",
		ToAccountID:   "acc-b",
		Amount:        decimal.NewFromInt(400),
		TransferDate:  day(2024, time.January, 15),
	})
	if err != nil {
		t.Fatalf("InitiateTransfer: %v", err)
	}
	return result
}

func TestTransferUseCase_InitiateTransfer(t *testing.T) {
	env := newTestEnv("tr")
	uc := newTransferUseCase(env)
	seedTransferPair(t, env)

	result := initiate(t, env, uc)

	transfer, err := uc.GetTransfer(context.Background(), result.EntityID)
	if err != nil {
		t.Fatalf("GetTransfer: %v", err)
	}
	if transfer.Status != domain.TransferInitiated {
		t.Errorf("status = %s, want %s", transfer.Status, domain.TransferInitiated)
	}
	if transfer.FromOfficeID != "office-1" || transfer.ToOfficeID != "office-2" {
		t.Errorf("offices = %s/%s, want office-1/office-2", transfer.FromOfficeID, transfer.ToOfficeID)
	}
	if transfer.OutTransactionID == "" {
		t.Error("outgoing leg not recorded")
	}

	source, _ := env.accounts.GetByID(context.Background(), "acc-a")
	if source.Status != domain.StatusTransferInProgress {
		t.Errorf("source status = %s, want %s", source.Status, domain.StatusTransferInProgress)
	}
	// interest up to the transfer date settles before the out leg:
	// 1000 + 4.93 - 400
	if !source.Summary.AccountBalance.Equal(dec("604.93")) {
		t.Errorf("source balance = %s, want 604.93", source.Summary.AccountBalance)
	}
	if len(env.journal.Bridges) != 1 {
		t.Errorf("got %d bridges, want 1", len(env.journal.Bridges))
	}
}

func TestTransferUseCase_InitiateTransferGuards(t *testing.T) {
	tests := []struct {
		name    string
		input   usecase.InitiateTransferInput
		setup   func(*testEnv)
		wantErr error
	}{
		{
			name: "same account",
			input: usecase.InitiateTransferInput{
				FromAccountID: "acc-a",
				ToAccountID:   "acc-a",
				Amount:        decimal.NewFromInt(10),
			},
			wantErr: domain.ErrSameAccount,
		},
		{
			name: "currency mismatch",
			input: usecase.InitiateTransferInput{
				FromAccountID: "acc-a",
				ToAccountID:   "acc-b",
				Amount:        decimal.NewFromInt(10),
			},
			setup: func(env *testEnv) {
				dest, _ := env.accounts.GetByID(context.Background(), "acc-b")
				dest.Currency = domain.Currency{Code: "eur", DecimalPlaces: 2}
			},
			wantErr: domain.ErrCurrencyMismatch,
		},
		{
			name: "inactive destination",
			input: usecase.InitiateTransferInput{
				FromAccountID: "acc-a",
				ToAccountID:   "acc-b",
				Amount:        decimal.NewFromInt(10),
			},
			setup: func(env *testEnv) {
				dest, _ := env.accounts.GetByID(context.Background(), "acc-b")
				dest.Status = domain.StatusClosed
			},
			wantErr: domain.ErrAccountNotActive,
		},
		{
			name: "insufficient funds",
			input: usecase.InitiateTransferInput{
				FromAccountID: "acc-a",
				ToAccountID:   "acc-b",
				Amount:        decimal.NewFromInt(5000),
				TransferDate:  day(2024, time.January, 15),
			},
			wantErr: domain.ErrInsufficientBalance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv("tr")
			uc := newTransferUseCase(env)
			seedTransferPair(t, env)
			if tt.setup != nil {
				tt.setup(env)
			}

			_, err := uc.InitiateTransfer(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			source, _ := env.accounts.GetByID(context.Background(), "acc-a")
			if source.Status != domain.StatusActive {
				t.Errorf("failed initiate parked source in %s", source.Status)
			}
		})
	}
}

func TestTransferUseCase_AcceptTransfer(t *testing.T) {
	env := newTestEnv("tr")
	uc := newTransferUseCase(env)
	seedTransferPair(t, env)

	initiated := initiate(t, env, uc)

	result, err := uc.AcceptTransfer(context.Background(), initiated.EntityID)
	if err != nil {
		t.Fatalf("AcceptTransfer: %v", err)
	}
	if result.AccountID != "acc-b" {
		t.Errorf("result addressed to %s, want acc-b", result.AccountID)
	}

	transfer, _ := uc.GetTransfer(context.Background(), initiated.EntityID)
	if transfer.Status != domain.TransferAccepted {
		t.Errorf("status = %s, want %s", transfer.Status, domain.TransferAccepted)
	}
	if transfer.InTransactionID == "" {
		t.Error("incoming leg not recorded")
	}

	dest, _ := env.accounts.GetByID(context.Background(), "acc-b")
	if !dest.Summary.AccountBalance.Equal(decimal.NewFromInt(400)) {
		t.Errorf("destination balance = %s, want 400", dest.Summary.AccountBalance)
	}
	source, _ := env.accounts.GetByID(context.Background(), "acc-a")
	if source.Status != domain.StatusActive {
		t.Errorf("source status = %s, want %s", source.Status, domain.StatusActive)
	}
}

func TestTransferUseCase_RejectTransferRestoresSource(t *testing.T) {
	env := newTestEnv("tr")
	uc := newTransferUseCase(env)
	seedTransferPair(t, env)

	initiated := initiate(t, env, uc)

	result, err := uc.RejectTransfer(context.Background(), initiated.EntityID)
	if err != nil {
		t.Fatalf("RejectTransfer: %v", err)
	}
	if result.Changes["status"] != domain.TransferRejected {
		t.Errorf("status change = %v, want %s", result.Changes["status"], domain.TransferRejected)
	}

	source, _ := env.accounts.GetByID(context.Background(), "acc-a")
	if source.Status != domain.StatusActive {
		t.Errorf("source status = %s, want %s", source.Status, domain.StatusActive)
	}
	// both the out leg and the finalized interest posting are rolled back
	if !source.Summary.AccountBalance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("source balance = %s, want 1000", source.Summary.AccountBalance)
	}
}

func TestTransferUseCase_WithdrawTransfer(t *testing.T) {
	env := newTestEnv("tr")
	uc := newTransferUseCase(env)
	seedTransferPair(t, env)

	initiated := initiate(t, env, uc)

	if _, err := uc.WithdrawTransfer(context.Background(), initiated.EntityID); err != nil {
		t.Fatalf("WithdrawTransfer: %v", err)
	}
	transfer, _ := uc.GetTransfer(context.Background(), initiated.EntityID)
	if transfer.Status != domain.TransferWithdrawn {
		t.Errorf("status = %s, want %s", transfer.Status, domain.TransferWithdrawn)
	}

	// a settled transfer cannot be accepted afterwards
	if _, err := uc.AcceptTransfer(context.Background(), initiated.EntityID); !errors.Is(err, domain.ErrTransferNotInProgress) {
		t.Errorf("err = %v, want %v", err, domain.ErrTransferNotInProgress)
	}
}

func TestTransferUseCase_ListTransfersByAccount(t *testing.T) {
	env := newTestEnv("tr")
	uc := newTransferUseCase(env)
	seedTransferPair(t, env)

	initiated := initiate(t, env, uc)

	for _, id := range []string{"acc-a", "acc-b"} {
		transfers, err := uc.ListTransfersByAccount(context.Background(), id, 0, 0)
		if err != nil {
			t.Fatalf("ListTransfersByAccount(%s): %v", id, err)
		}
		if len(transfers) != 1 || transfers[0].ID != initiated.EntityID {
			t.Errorf("transfers for %s = %v, want the initiated one", id, transfers)
		}
	}
}
