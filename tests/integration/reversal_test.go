package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/godeposit/internal/domain"
	"github.com/iho/godeposit/internal/usecase"
	"github.com/iho/godeposit/tests/testutil"
)

func TestTransactionReplay(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	fixture := testutil.NewFixture(testDB.Pool)

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	deposit := func(t *testing.T, accountID string, amount int64, date time.Time) usecase.CommandResult {
		t.Helper()
		res, err := fixture.TransactionUC.Deposit(ctx, usecase.TransactionInput{
			AccountID: accountID,
			Amount:    decimal.NewFromInt(amount),
			Date:      date,
		})
		if err != nil {
			t.Fatalf("deposit failed: %v", err)
		}
		return res
	}

	t.Run("running balances follow business dates", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		account := fixture.OpenActiveSavings(ctx, t, testutil.SavingsParams{ActivatedOn: base})

		deposit(t, account.ID, 100, base)
		deposit(t, account.ID, 50, base.AddDate(0, 0, 2))
		// Back-dated between the two; everything after it is replayed.
		deposit(t, account.ID, 20, base.AddDate(0, 0, 1))

		reloaded, err := fixture.AccountUC.GetAccount(ctx, account.ID)
		if err != nil {
			t.Fatalf("failed to reload account: %v", err)
		}

		want := []int64{100, 120, 170}
		if len(reloaded.Transactions) != len(want) {
			t.Fatalf("expected %d transactions, got %d", len(want), len(reloaded.Transactions))
		}
		for i, tx := range reloaded.Transactions {
			if !tx.RunningBalance.Amount().Equal(decimal.NewFromInt(want[i])) {
				t.Errorf("transaction %d: expected running balance %d, got %s", i, want[i], tx.RunningBalance.Amount())
			}
		}
		if !reloaded.Summary.AccountBalance.Equal(decimal.NewFromInt(170)) {
			t.Errorf("expected balance 170, got %s", reloaded.Summary.AccountBalance)
		}
	})

	t.Run("withdrawal beyond balance is rejected", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		account := fixture.OpenActiveSavings(ctx, t, testutil.SavingsParams{ActivatedOn: base})
		deposit(t, account.ID, 100, base)

		_, err := fixture.TransactionUC.Withdraw(ctx, usecase.TransactionInput{
			AccountID: account.ID,
			Amount:    decimal.NewFromInt(150),
			Date:      base.AddDate(0, 0, 1),
		})
		if !errors.Is(err, domain.ErrInsufficientBalance) {
			t.Errorf("expected ErrInsufficientBalance, got %v", err)
		}

		reloaded, _ := fixture.AccountUC.GetAccount(ctx, account.ID)
		if !reloaded.Summary.AccountBalance.Equal(decimal.NewFromInt(100)) {
			t.Errorf("expected balance unchanged at 100, got %s", reloaded.Summary.AccountBalance)
		}
	})

	t.Run("undo reverses and replays downstream", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		account := fixture.OpenActiveSavings(ctx, t, testutil.SavingsParams{ActivatedOn: base})

		first := deposit(t, account.ID, 100, base)
		deposit(t, account.ID, 50, base.AddDate(0, 0, 1))

		if _, err := fixture.TransactionUC.UndoTransaction(ctx, usecase.UndoTransactionInput{
			AccountID:     account.ID,
			TransactionID: first.EntityID,
		}); err != nil {
			t.Fatalf("undo failed: %v", err)
		}

		reloaded, err := fixture.AccountUC.GetAccount(ctx, account.ID)
		if err != nil {
			t.Fatalf("failed to reload account: %v", err)
		}
		if !reloaded.Summary.AccountBalance.Equal(decimal.NewFromInt(50)) {
			t.Errorf("expected balance 50 after undo, got %s", reloaded.Summary.AccountBalance)
		}

		var undone *domain.Transaction
		for _, tx := range reloaded.Transactions {
			if tx.ID == first.EntityID {
				undone = tx
			}
		}
		if undone == nil {
			t.Fatal("undone transaction missing from history")
		}
		if !undone.Reversed {
			t.Error("expected transaction to be marked reversed")
		}
	})

	t.Run("adjust replaces amount and replays", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		account := fixture.OpenActiveSavings(ctx, t, testutil.SavingsParams{ActivatedOn: base})

		first := deposit(t, account.ID, 100, base)
		deposit(t, account.ID, 50, base.AddDate(0, 0, 1))

		res, err := fixture.TransactionUC.AdjustTransaction(ctx, usecase.AdjustTransactionInput{
			AccountID:     account.ID,
			TransactionID: first.EntityID,
			NewAmount:     decimal.NewFromInt(80),
			NewDate:       base,
		})
		if err != nil {
			t.Fatalf("adjust failed: %v", err)
		}

		reloaded, err := fixture.AccountUC.GetAccount(ctx, account.ID)
		if err != nil {
			t.Fatalf("failed to reload account: %v", err)
		}
		if !reloaded.Summary.AccountBalance.Equal(decimal.NewFromInt(130)) {
			t.Errorf("expected balance 130 after adjustment, got %s", reloaded.Summary.AccountBalance)
		}

		for _, tx := range reloaded.Transactions {
			if tx.ID == first.EntityID {
				if !tx.Reversed {
					t.Error("expected original transaction to be reversed")
				}
				if tx.ReplacedByID != res.EntityID {
					t.Errorf("expected original to link replacement %s, got %s", res.EntityID, tx.ReplacedByID)
				}
			}
		}
	})
}
