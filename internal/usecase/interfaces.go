package usecase

import (
	"context"
	"time"

	"github.com/iho/godeposit/internal/domain"
)

// AccountRepository defines data access for deposit account aggregates.
// Load/save always moves the whole aggregate: the account row plus its
// transactions, charges and installments.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	Save(ctx context.Context, tx Transaction, account *domain.Account) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	// ListActiveIDs feeds the batch jobs: every account eligible for
	// interest posting or charge application.
	ListActiveIDs(ctx context.Context) ([]string, error)
}

// TransferRepository defines data access for account transfers.
type TransferRepository interface {
	Create(ctx context.Context, tx Transaction, transfer *domain.AccountTransfer) error
	GetByID(ctx context.Context, id string) (*domain.AccountTransfer, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.AccountTransfer, error)
	Update(ctx context.Context, tx Transaction, transfer *domain.AccountTransfer) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.AccountTransfer, error)
}

// JournalPoster hands a command's ledger delta to the external
// double-entry accounting service, inside the same database transaction
// as the aggregate save.
type JournalPoster interface {
	PostBridge(ctx context.Context, tx Transaction, data domain.AccountingBridgeData) error
}

// JournalOutboxRepository drains the bridge deltas queued by the
// transactional poster.
type JournalOutboxRepository interface {
	GetUnposted(ctx context.Context, limit int) ([]*domain.JournalOutboxEntry, error)
	MarkPosted(ctx context.Context, id int64, postedAt time.Time) error
}

// CalendarService answers working-day and holiday questions for
// transaction-date validation. Holidays are scoped to the account's
// office.
type CalendarService interface {
	IsWorkingDay(ctx context.Context, date time.Time) (bool, error)
	IsHoliday(ctx context.Context, officeID string, date time.Time) (bool, error)
}

// CurrencyService resolves a currency code to its configuration.
type CurrencyService interface {
	Lookup(ctx context.Context, code string) (domain.Currency, error)
}

// Clock supplies time so commands and tests agree on "today".
type Clock interface {
	Now() time.Time
	Today() time.Time
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs a command when the storage layer reports a transient
// failure such as a serialization conflict.
type Retrier interface {
	Do(ctx context.Context, op func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
