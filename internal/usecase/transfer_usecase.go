package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/godeposit/internal/domain"
)

// TransferUseCase drives the inter-office transfer protocol: initiate at
// the source, accept at the destination, or reject/withdraw while still
// in flight.
type TransferUseCase struct {
	deps      commandDeps
	accounts  AccountRepository
	transfers TransferRepository
	idGen     IDGenerator
	clock     Clock
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	txManager TransactionManager,
	accounts AccountRepository,
	transfers TransferRepository,
	journal JournalPoster,
	idGen IDGenerator,
	clock Clock,
	retrier Retrier,
) *TransferUseCase {
	return &TransferUseCase{
		deps: commandDeps{
			txManager: txManager,
			accounts:  accounts,
			journal:   journal,
			retrier:   retrier,
		},
		accounts:  accounts,
		transfers: transfers,
		idGen:     idGen,
		clock:     clock,
	}
}

// InitiateTransferInput represents input for starting a transfer.
type InitiateTransferInput struct {
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	// TransferDate is the business date; zero means today.
	TransferDate time.Time
}

func (i InitiateTransferInput) validate() error {
	var val domain.Validator
	val.RequireNotBlank("fromAccountId", i.FromAccountID)
	val.RequireNotBlank("toAccountId", i.ToAccountID)
	val.RequirePositive("amount", i.Amount)
	return val.Result()
}

// InitiateTransfer posts the outgoing leg at the source account and
// records the transfer as initiated. Both accounts are locked in sorted
// order so two opposing transfers cannot deadlock.
func (uc *TransferUseCase) InitiateTransfer(ctx context.Context, input InitiateTransferInput) (CommandResult, error) {
	if err := input.validate(); err != nil {
		return CommandResult{}, err
	}
	if input.FromAccountID == input.ToAccountID {
		return CommandResult{}, domain.ErrSameAccount
	}
	date := input.TransferDate
	if date.IsZero() {
		date = uc.clock.Today()
	}
	now := uc.clock.Now()

	transfer := &domain.AccountTransfer{
		ID:            uc.idGen.Generate(),
		FromAccountID: input.FromAccountID,
		ToAccountID:   input.ToAccountID,
		Amount:        input.Amount,
		TransferDate:  domain.ToDate(date),
		CreatedAt:     now,
	}

	var result CommandResult
	op := func() error {
		tx, err := uc.deps.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx) //nolint:errcheck

		source, dest, err := uc.lockPair(ctx, tx, input.FromAccountID, input.ToAccountID)
		if err != nil {
			return err
		}
		if source.Currency.Code != dest.Currency.Code {
			return fmt.Errorf("%w: %s to %s", domain.ErrCurrencyMismatch, source.Currency.Code, dest.Currency.Code)
		}
		if !dest.Status.IsActive() {
			return domain.ErrAccountNotActive
		}
		transfer.FromOfficeID = source.OfficeID
		transfer.ToOfficeID = dest.OfficeID

		existing := source.ExistingTransactionIDs()
		existingReversed := source.ExistingReversedTransactionIDs()

		work := source.Clone()
		if err := work.InitiateTransfer(uc.idGen.Generate, transfer, now); err != nil {
			return err
		}
		work.Version++

		if err := uc.deps.accounts.Save(ctx, tx, work); err != nil {
			return err
		}
		if err := uc.transfers.Create(ctx, tx, transfer); err != nil {
			return err
		}
		if bridge := work.DeriveBridgeData(existing, existingReversed); !bridge.IsEmpty() {
			if err := uc.deps.journal.PostBridge(ctx, tx, bridge); err != nil {
				return err
			}
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		result = resultFor(transfer.ID, work, map[string]any{
			"toAccountId": input.ToAccountID,
			"amount":      input.Amount,
		})
		return nil
	}
	if err := uc.runOp(ctx, op); err != nil {
		return CommandResult{}, err
	}
	return result, nil
}

// AcceptTransfer posts the incoming leg at the destination and releases
// the source from its transfer-in-progress parking, all in one
// transaction.
func (uc *TransferUseCase) AcceptTransfer(ctx context.Context, transferID string) (CommandResult, error) {
	now := uc.clock.Now()

	var result CommandResult
	op := func() error {
		tx, err := uc.deps.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx) //nolint:errcheck

		transfer, err := uc.transfers.GetByIDForUpdate(ctx, tx, transferID)
		if err != nil {
			return err
		}
		source, dest, err := uc.lockPair(ctx, tx, transfer.FromAccountID, transfer.ToAccountID)
		if err != nil {
			return err
		}

		destExisting := dest.ExistingTransactionIDs()
		destExistingReversed := dest.ExistingReversedTransactionIDs()

		destWork := dest.Clone()
		if err := destWork.AcceptTransfer(uc.idGen.Generate, transfer, now); err != nil {
			return err
		}
		destWork.Version++

		sourceWork := source.Clone()
		if err := sourceWork.CompleteTransferOut(transfer); err != nil {
			return err
		}
		sourceWork.Version++

		if err := uc.deps.accounts.Save(ctx, tx, destWork); err != nil {
			return err
		}
		if err := uc.deps.accounts.Save(ctx, tx, sourceWork); err != nil {
			return err
		}
		if err := uc.transfers.Update(ctx, tx, transfer); err != nil {
			return err
		}
		if bridge := destWork.DeriveBridgeData(destExisting, destExistingReversed); !bridge.IsEmpty() {
			if err := uc.deps.journal.PostBridge(ctx, tx, bridge); err != nil {
				return err
			}
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		result = resultFor(transfer.ID, destWork, map[string]any{
			"fromAccountId": transfer.FromAccountID,
			"amount":        transfer.Amount,
		})
		return nil
	}
	if err := uc.runOp(ctx, op); err != nil {
		return CommandResult{}, err
	}
	return result, nil
}

// RejectTransfer declines an in-flight transfer at the destination side,
// reversing the source's outgoing leg.
func (uc *TransferUseCase) RejectTransfer(ctx context.Context, transferID string) (CommandResult, error) {
	return uc.revert(ctx, transferID, true)
}

// WithdrawTransfer cancels an in-flight transfer from the source side.
func (uc *TransferUseCase) WithdrawTransfer(ctx context.Context, transferID string) (CommandResult, error) {
	return uc.revert(ctx, transferID, false)
}

func (uc *TransferUseCase) revert(ctx context.Context, transferID string, rejected bool) (CommandResult, error) {
	now := uc.clock.Now()

	var result CommandResult
	op := func() error {
		tx, err := uc.deps.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx) //nolint:errcheck

		transfer, err := uc.transfers.GetByIDForUpdate(ctx, tx, transferID)
		if err != nil {
			return err
		}
		source, err := uc.deps.accounts.GetByIDForUpdate(ctx, tx, transfer.FromAccountID)
		if err != nil {
			return err
		}

		existing := source.ExistingTransactionIDs()
		existingReversed := source.ExistingReversedTransactionIDs()

		work := source.Clone()
		if err := work.RevertTransfer(transfer, rejected, uc.idGen.Generate, now); err != nil {
			return err
		}
		work.Version++

		if err := uc.deps.accounts.Save(ctx, tx, work); err != nil {
			return err
		}
		if err := uc.transfers.Update(ctx, tx, transfer); err != nil {
			return err
		}
		if bridge := work.DeriveBridgeData(existing, existingReversed); !bridge.IsEmpty() {
			if err := uc.deps.journal.PostBridge(ctx, tx, bridge); err != nil {
				return err
			}
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		result = resultFor(transfer.ID, work, map[string]any{"status": transfer.Status})
		return nil
	}
	if err := uc.runOp(ctx, op); err != nil {
		return CommandResult{}, err
	}
	return result, nil
}

// GetTransfer retrieves a transfer by ID.
func (uc *TransferUseCase) GetTransfer(ctx context.Context, id string) (*domain.AccountTransfer, error) {
	return uc.transfers.GetByID(ctx, id)
}

// ListTransfersByAccount retrieves transfers touching the account as
// either side.
func (uc *TransferUseCase) ListTransfersByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.AccountTransfer, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return uc.transfers.ListByAccount(ctx, accountID, limit, offset)
}

// lockPair locks both accounts of a transfer in sorted ID order.
// DEADLOCK PREVENTION: every command that touches two accounts acquires
// the row locks in the same global order.
func (uc *TransferUseCase) lockPair(ctx context.Context, tx Transaction, fromID, toID string) (source, dest *domain.Account, err error) {
	ids := []string{fromID, toID}
	sort.Strings(ids)
	accounts, err := uc.deps.accounts.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, nil, err
	}
	for _, a := range accounts {
		switch a.ID {
		case fromID:
			source = a
		case toID:
			dest = a
		}
	}
	if source == nil || dest == nil {
		return nil, nil, domain.ErrAccountNotFound
	}
	return source, dest, nil
}

func (uc *TransferUseCase) runOp(ctx context.Context, op func() error) error {
	if uc.deps.retrier != nil {
		return uc.deps.retrier.Do(ctx, op)
	}
	return op()
}
