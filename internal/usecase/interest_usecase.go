package usecase

import (
	"context"
	"time"

	"github.com/iho/godeposit/internal/domain"
	"github.com/iho/godeposit/internal/domain/interest"
)

// InterestUseCase handles interest projection and posting, including the
// scheduled batch run over all active accounts.
type InterestUseCase struct {
	deps     commandDeps
	accounts AccountRepository
	idGen    IDGenerator
	clock    Clock
}

// NewInterestUseCase creates a new InterestUseCase.
func NewInterestUseCase(
	txManager TransactionManager,
	accounts AccountRepository,
	journal JournalPoster,
	idGen IDGenerator,
	clock Clock,
	retrier Retrier,
) *InterestUseCase {
	return &InterestUseCase{
		deps: commandDeps{
			txManager: txManager,
			accounts:  accounts,
			journal:   journal,
			retrier:   retrier,
		},
		accounts: accounts,
		idGen:    idGen,
		clock:    clock,
	}
}

// CalculateInterest projects accrued interest per posting period up to
// and including upTo, without mutating the account.
func (uc *InterestUseCase) CalculateInterest(ctx context.Context, accountID string, upTo time.Time) ([]interest.PostingPeriod, error) {
	account, err := uc.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if upTo.IsZero() {
		upTo = uc.clock.Today()
	}
	return account.CalculateInterest(upTo)
}

// PostInterestInput addresses one posting run.
type PostInterestInput struct {
	AccountID string
	// UpTo is the posting cut-off; zero means today.
	UpTo time.Time
}

// PostInterest materializes interest postings for every completed period
// up to the cut-off. Re-running is a no-op unless the ledger changed.
func (uc *InterestUseCase) PostInterest(ctx context.Context, input PostInterestInput) (CommandResult, error) {
	upTo := input.UpTo
	if upTo.IsZero() {
		upTo = uc.clock.Today()
	}
	now := uc.clock.Now()

	account, err := uc.deps.run(ctx, input.AccountID, func(a *domain.Account) error {
		return a.PostInterest(uc.idGen.Generate, upTo, false, now)
	})
	if err != nil {
		return CommandResult{}, err
	}
	return resultFor(account.ID, account, map[string]any{
		"balance":        account.Summary.AccountBalance,
		"interestPosted": account.Summary.TotalInterestPosted,
	}), nil
}

// PostInterestForAccounts runs interest posting across every active
// account, collecting per-account failures instead of stopping.
func (uc *InterestUseCase) PostInterestForAccounts(ctx context.Context, upTo time.Time) (BatchResult, error) {
	ids, err := uc.accounts.ListActiveIDs(ctx)
	if err != nil {
		return BatchResult{}, err
	}
	if upTo.IsZero() {
		upTo = uc.clock.Today()
	}

	result := BatchResult{}
	for _, id := range ids {
		result.Processed++
		if _, err := uc.PostInterest(ctx, PostInterestInput{AccountID: id, UpTo: upTo}); err != nil {
			result.Failures = append(result.Failures, BatchFailure{AccountID: id, Err: err})
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

// UpdateMaturedAccounts is the nightly job for recurring deposit
// schedules: overdue flags are refreshed as of the run date.
func (uc *InterestUseCase) UpdateMaturedAccounts(ctx context.Context, asOf time.Time) (BatchResult, error) {
	ids, err := uc.accounts.ListActiveIDs(ctx)
	if err != nil {
		return BatchResult{}, err
	}
	if asOf.IsZero() {
		asOf = uc.clock.Today()
	}

	result := BatchResult{}
	for _, id := range ids {
		result.Processed++
		_, err := uc.deps.run(ctx, id, func(a *domain.Account) error {
			if a.Recurrence != nil {
				a.Recurrence.UpdateOverdue(asOf)
			}
			if a.Kind.IsTermDeposit() && a.ActivatedOn != nil {
				return a.UpdateMaturityDateAndAmount(false, asOf)
			}
			return nil
		})
		if err != nil {
			result.Failures = append(result.Failures, BatchFailure{AccountID: id, Err: err})
			continue
		}
		result.Succeeded++
	}
	return result, nil
}
