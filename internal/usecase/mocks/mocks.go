package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iho/godeposit/internal/domain"
	"github.com/iho/godeposit/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc            func(ctx context.Context, account *domain.Account) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error)
	SaveFunc              func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	ListFunc              func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	ListActiveIDsFunc     func(ctx context.Context) ([]string, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

// Put seeds the repository with an account.
func (m *MockAccountRepository) Put(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ids {
		if acc, ok := m.accounts[id]; ok {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) Save(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

func (m *MockAccountRepository) ListActiveIDs(ctx context.Context) ([]string, error) {
	if m.ListActiveIDsFunc != nil {
		return m.ListActiveIDsFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for id, acc := range m.accounts {
		if acc.Status.IsActive() {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// MockTransferRepository is a mock implementation of TransferRepository.
type MockTransferRepository struct {
	mu        sync.RWMutex
	transfers map[string]*domain.AccountTransfer

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, transfer *domain.AccountTransfer) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.AccountTransfer, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.AccountTransfer, error)
	UpdateFunc           func(ctx context.Context, tx usecase.Transaction, transfer *domain.AccountTransfer) error
	ListByAccountFunc    func(ctx context.Context, accountID string, limit, offset int) ([]*domain.AccountTransfer, error)
}

func NewMockTransferRepository() *MockTransferRepository {
	return &MockTransferRepository{
		transfers: make(map[string]*domain.AccountTransfer),
	}
}

func (m *MockTransferRepository) Create(ctx context.Context, tx usecase.Transaction, transfer *domain.AccountTransfer) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, transfer)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers[transfer.ID] = transfer
	return nil
}

func (m *MockTransferRepository) GetByID(ctx context.Context, id string) (*domain.AccountTransfer, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if tr, ok := m.transfers[id]; ok {
		return tr, nil
	}
	return nil, domain.ErrTransferNotFound
}

func (m *MockTransferRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.AccountTransfer, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockTransferRepository) Update(ctx context.Context, tx usecase.Transaction, transfer *domain.AccountTransfer) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, transfer)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers[transfer.ID] = transfer
	return nil
}

func (m *MockTransferRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.AccountTransfer, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var transfers []*domain.AccountTransfer
	for _, tr := range m.transfers {
		if tr.FromAccountID == accountID || tr.ToAccountID == accountID {
			transfers = append(transfers, tr)
		}
	}
	return transfers, nil
}

// MockJournalPoster records every accounting bridge handed to it.
type MockJournalPoster struct {
	mu      sync.Mutex
	Bridges []domain.AccountingBridgeData

	PostBridgeFunc func(ctx context.Context, tx usecase.Transaction, data domain.AccountingBridgeData) error
}

func NewMockJournalPoster() *MockJournalPoster {
	return &MockJournalPoster{}
}

func (m *MockJournalPoster) PostBridge(ctx context.Context, tx usecase.Transaction, data domain.AccountingBridgeData) error {
	if m.PostBridgeFunc != nil {
		return m.PostBridgeFunc(ctx, tx, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Bridges = append(m.Bridges, data)
	return nil
}

// MockCalendarService treats every day as a working non-holiday by
// default.
type MockCalendarService struct {
	IsWorkingDayFunc func(ctx context.Context, date time.Time) (bool, error)
	IsHolidayFunc    func(ctx context.Context, officeID string, date time.Time) (bool, error)
}

func NewMockCalendarService() *MockCalendarService {
	return &MockCalendarService{}
}

func (m *MockCalendarService) IsWorkingDay(ctx context.Context, date time.Time) (bool, error) {
	if m.IsWorkingDayFunc != nil {
		return m.IsWorkingDayFunc(ctx, date)
	}
	return true, nil
}

func (m *MockCalendarService) IsHoliday(ctx context.Context, officeID string, date time.Time) (bool, error) {
	if m.IsHolidayFunc != nil {
		return m.IsHolidayFunc(ctx, officeID, date)
	}
	return false, nil
}

// MockCurrencyService resolves a small fixed currency table.
type MockCurrencyService struct {
	LookupFunc func(ctx context.Context, code string) (domain.Currency, error)
}

func NewMockCurrencyService() *MockCurrencyService {
	return &MockCurrencyService{}
}

func (m *MockCurrencyService) Lookup(ctx context.Context, code string) (domain.Currency, error) {
	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, code)
	}
	return domain.Currency{Code: code, DecimalPlaces: 2}, nil
}

// MockClock returns a fixed instant.
type MockClock struct {
	Time time.Time
}

func NewMockClock(t time.Time) *MockClock {
	return &MockClock{Time: t}
}

func (m *MockClock) Now() time.Time {
	return m.Time
}

func (m *MockClock) Today() time.Time {
	return domain.ToDate(m.Time)
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
	Committed    bool
	RolledBack   bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	m.RolledBack = true
	return nil
}

// MockIDGenerator hands out "prefix-1", "prefix-2", ... so tests can
// assert on deterministic IDs.
type MockIDGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int

	GenerateFunc func() string
}

func NewMockIDGenerator(prefix string) *MockIDGenerator {
	return &MockIDGenerator{prefix: prefix}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return fmt.Sprintf("%s-%d", m.prefix, m.next)
}

// MockRetrier runs the operation once without retrying.
type MockRetrier struct {
	DoFunc func(ctx context.Context, op func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Do(ctx context.Context, op func() error) error {
	if m.DoFunc != nil {
		return m.DoFunc(ctx, op)
	}
	return op()
}
