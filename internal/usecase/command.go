package usecase

import (
	"context"

	"github.com/iho/godeposit/internal/domain"
)

// CommandResult is the uniform response of every mutating command.
type CommandResult struct {
	EntityID  string
	AccountID string
	OfficeID  string
	ClientID  string
	Changes   map[string]any
}

func resultFor(entityID string, account *domain.Account, changes map[string]any) CommandResult {
	return CommandResult{
		EntityID:  entityID,
		AccountID: account.ID,
		OfficeID:  account.OfficeID,
		ClientID:  account.ClientID,
		Changes:   changes,
	}
}

// commandDeps bundles the collaborators every account command needs.
type commandDeps struct {
	txManager TransactionManager
	accounts  AccountRepository
	journal   JournalPoster
	retrier   Retrier
}

// run executes one command against a single account aggregate:
// load under lock, mutate a clone, save the clone together with its
// accounting delta, commit. A failure at any step discards the clone and
// leaves the stored aggregate untouched.
func (d commandDeps) run(ctx context.Context, accountID string, mutate func(*domain.Account) error) (*domain.Account, error) {
	var saved *domain.Account
	op := func() error {
		tx, err := d.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx) //nolint:errcheck

		account, err := d.accounts.GetByIDForUpdate(ctx, tx, accountID)
		if err != nil {
			return err
		}

		existing := account.ExistingTransactionIDs()
		existingReversed := account.ExistingReversedTransactionIDs()

		work := account.Clone()
		if err := mutate(work); err != nil {
			return err
		}
		work.Version++

		if err := d.accounts.Save(ctx, tx, work); err != nil {
			return err
		}
		if bridge := work.DeriveBridgeData(existing, existingReversed); !bridge.IsEmpty() {
			if err := d.journal.PostBridge(ctx, tx, bridge); err != nil {
				return err
			}
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		saved = work
		return nil
	}

	var err error
	if d.retrier != nil {
		err = d.retrier.Do(ctx, op)
	} else {
		err = op()
	}
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// BatchFailure records one account that a batch job could not process.
type BatchFailure struct {
	AccountID string
	Err       error
}

// BatchResult reports a batch job run. Jobs process every account and
// collect failures instead of stopping at the first one.
type BatchResult struct {
	Processed int
	Succeeded int
	Failures  []BatchFailure
}

// Failed returns the number of accounts that errored.
func (r BatchResult) Failed() int {
	return len(r.Failures)
}
