package integration

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/godeposit/internal/usecase"
	"github.com/iho/godeposit/tests/testutil"
)

func TestConcurrentCommands(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	fixture := testutil.NewFixture(testDB.Pool)

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("100 concurrent withdrawals drain exactly the balance", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		account := fixture.OpenActiveSavings(ctx, t, testutil.SavingsParams{
			OpeningBalance: decimal.NewFromInt(1000),
			ActivatedOn:    base,
		})

		numWithdrawals := 100
		amount := decimal.NewFromInt(10)

		var (
			wg           sync.WaitGroup
			successCount atomic.Int32
			errorCount   atomic.Int32
		)

		wg.Add(numWithdrawals)

		for range numWithdrawals {
			go func() {
				defer wg.Done()

				_, err := fixture.TransactionUC.Withdraw(ctx, usecase.TransactionInput{
					AccountID: account.ID,
					Amount:    amount,
				})
				if err != nil {
					errorCount.Add(1)
				} else {
					successCount.Add(1)
				}
			}()
		}

		wg.Wait()

		if successCount.Load() != int32(numWithdrawals) {
			t.Errorf("expected %d successful withdrawals, got %d (errors: %d)", numWithdrawals, successCount.Load(), errorCount.Load())
		}

		reloaded, err := fixture.AccountUC.GetAccount(ctx, account.ID)
		if err != nil {
			t.Fatalf("failed to reload account: %v", err)
		}
		if !reloaded.Summary.AccountBalance.Equal(decimal.Zero) {
			t.Errorf("expected balance 0, got %s", reloaded.Summary.AccountBalance)
		}
	})

	t.Run("concurrent withdrawals never overdraw", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		account := fixture.OpenActiveSavings(ctx, t, testutil.SavingsParams{
			OpeningBalance: decimal.NewFromInt(100),
			ActivatedOn:    base,
		})

		numWithdrawals := 20
		amount := decimal.NewFromInt(10)

		var (
			wg           sync.WaitGroup
			successCount atomic.Int32
		)

		wg.Add(numWithdrawals)

		for range numWithdrawals {
			go func() {
				defer wg.Done()

				if _, err := fixture.TransactionUC.Withdraw(ctx, usecase.TransactionInput{
					AccountID: account.ID,
					Amount:    amount,
				}); err == nil {
					successCount.Add(1)
				}
			}()
		}

		wg.Wait()

		if successCount.Load() != 10 {
			t.Errorf("expected exactly 10 successful withdrawals, got %d", successCount.Load())
		}

		reloaded, err := fixture.AccountUC.GetAccount(ctx, account.ID)
		if err != nil {
			t.Fatalf("failed to reload account: %v", err)
		}
		if reloaded.Summary.AccountBalance.IsNegative() {
			t.Errorf("account overdrawn: %s", reloaded.Summary.AccountBalance)
		}
	})

	t.Run("opposing transfer cycles do not deadlock", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		a := fixture.OpenActiveSavings(ctx, t, testutil.SavingsParams{
			OpeningBalance: decimal.NewFromInt(500),
			ActivatedOn:    base,
		})
		b := fixture.OpenActiveSavings(ctx, t, testutil.SavingsParams{
			OpeningBalance: decimal.NewFromInt(500),
			ActivatedOn:    base,
		})

		// An account carries at most one transfer in flight, so each
		// goroutine runs full initiate-accept cycles against its own
		// source while locks interleave with the opposing direction.
		numCycles := 20
		amount := decimal.NewFromInt(10)

		cycle := func(fromID, toID string) error {
			res, err := fixture.TransferUC.InitiateTransfer(ctx, usecase.InitiateTransferInput{
				FromAccountID: fromID,
				ToAccountID:   toID,
				Amount:        amount,
			})
			if err != nil {
				return err
			}
			_, err = fixture.TransferUC.AcceptTransfer(ctx, res.EntityID)
			return err
		}

		var (
			wg     sync.WaitGroup
			failed atomic.Int32
		)

		wg.Add(2)

		go func() {
			defer wg.Done()
			for range numCycles {
				if err := cycle(a.ID, b.ID); err != nil {
					failed.Add(1)
				}
			}
		}()
		go func() {
			defer wg.Done()
			for range numCycles {
				if err := cycle(b.ID, a.ID); err != nil {
					failed.Add(1)
				}
			}
		}()

		wg.Wait()

		if failed.Load() != 0 {
			t.Errorf("expected all opposing transfer cycles to succeed, %d failed", failed.Load())
		}

		aReloaded, _ := fixture.AccountUC.GetAccount(ctx, a.ID)
		bReloaded, _ := fixture.AccountUC.GetAccount(ctx, b.ID)
		if !aReloaded.Summary.AccountBalance.Equal(decimal.NewFromInt(500)) {
			t.Errorf("expected balance 500 on first account, got %s", aReloaded.Summary.AccountBalance)
		}
		if !bReloaded.Summary.AccountBalance.Equal(decimal.NewFromInt(500)) {
			t.Errorf("expected balance 500 on second account, got %s", bReloaded.Summary.AccountBalance)
		}
	})
}
