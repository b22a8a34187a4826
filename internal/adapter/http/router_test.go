package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/godeposit/internal/adapter/http/handler"
	apimiddleware "github.com/iho/godeposit/internal/adapter/http/middleware"
	"github.com/iho/godeposit/internal/domain"
	"github.com/iho/godeposit/internal/domain/interest"
	"github.com/iho/godeposit/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"account_id":"dep-1","amount":"25.00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/dep-1/deposits", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/accounts/",
		"GET /api/v1/accounts/",
		"GET /api/v1/accounts/{id}",
		"POST /api/v1/accounts/{id}/approve",
		"POST /api/v1/accounts/{id}/activate",
		"POST /api/v1/accounts/{id}/deposits",
		"POST /api/v1/accounts/{id}/withdrawals",
		"POST /api/v1/accounts/{id}/transactions/{txId}/undo",
		"GET /api/v1/accounts/{id}/interest",
		"POST /api/v1/accounts/{id}/interest/post",
		"POST /api/v1/accounts/{id}/charges",
		"POST /api/v1/transfers/",
		"POST /api/v1/transfers/{id}/accept",
		"POST /api/v1/batch/post-interest",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	accounts := &stubAccountService{}

	cfg := RouterConfig{
		HealthHandler:      &handler.HealthHandler{},
		AccountHandler:     handler.NewAccountHandler(accounts),
		TransactionHandler: handler.NewTransactionHandler(&stubTransactionService{}, accounts),
		InterestHandler:    handler.NewInterestHandler(&stubInterestService{}, accounts),
		ChargeHandler:      handler.NewChargeHandler(&stubChargeService{}, accounts),
		TransferHandler:    handler.NewTransferHandler(&stubTransferService{}),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubAccountService struct{}

func (stubAccountService) OpenAccount(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
	return &domain.Account{ID: "dep"}, nil
}

func (stubAccountService) ApproveAccount(ctx context.Context, input usecase.LifecycleInput) (usecase.CommandResult, error) {
	return usecase.CommandResult{AccountID: input.AccountID}, nil
}

func (stubAccountService) UndoApproval(ctx context.Context, accountID string) (usecase.CommandResult, error) {
	return usecase.CommandResult{AccountID: accountID}, nil
}

func (stubAccountService) RejectAccount(ctx context.Context, input usecase.LifecycleInput) (usecase.CommandResult, error) {
	return usecase.CommandResult{AccountID: input.AccountID}, nil
}

func (stubAccountService) WithdrawApplication(ctx context.Context, input usecase.LifecycleInput) (usecase.CommandResult, error) {
	return usecase.CommandResult{AccountID: input.AccountID}, nil
}

func (stubAccountService) ActivateAccount(ctx context.Context, input usecase.LifecycleInput) (usecase.CommandResult, error) {
	return usecase.CommandResult{AccountID: input.AccountID}, nil
}

func (stubAccountService) UndoActivation(ctx context.Context, accountID string) (usecase.CommandResult, error) {
	return usecase.CommandResult{AccountID: accountID}, nil
}

func (stubAccountService) CloseAccount(ctx context.Context, input usecase.LifecycleInput) (usecase.CommandResult, error) {
	return usecase.CommandResult{AccountID: input.AccountID}, nil
}

func (stubAccountService) CloseAccountPrematurely(ctx context.Context, input usecase.LifecycleInput) (usecase.CommandResult, error) {
	return usecase.CommandResult{AccountID: input.AccountID}, nil
}

func (stubAccountService) PreviewPrematureClosure(ctx context.Context, accountID string, asOf time.Time) (domain.Money, error) {
	return domain.Money{}, nil
}

func (stubAccountService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return &domain.Account{ID: id}, nil
}

func (stubAccountService) ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
	return []*domain.Account{}, nil
}

type stubTransactionService struct{}

func (stubTransactionService) Deposit(ctx context.Context, input usecase.TransactionInput) (usecase.CommandResult, error) {
	return usecase.CommandResult{AccountID: input.AccountID}, nil
}

func (stubTransactionService) Withdraw(ctx context.Context, input usecase.TransactionInput) (usecase.CommandResult, error) {
	return usecase.CommandResult{AccountID: input.AccountID}, nil
}

func (stubTransactionService) UndoTransaction(ctx context.Context, input usecase.UndoTransactionInput) (usecase.CommandResult, error) {
	return usecase.CommandResult{AccountID: input.AccountID}, nil
}

func (stubTransactionService) AdjustTransaction(ctx context.Context, input usecase.AdjustTransactionInput) (usecase.CommandResult, error) {
	return usecase.CommandResult{AccountID: input.AccountID}, nil
}

func (stubTransactionService) GetTransaction(ctx context.Context, accountID, transactionID string) (*domain.Transaction, error) {
	return &domain.Transaction{ID: transactionID}, nil
}

type stubInterestService struct{}

func (stubInterestService) CalculateInterest(ctx context.Context, accountID string, upTo time.Time) ([]interest.PostingPeriod, error) {
	return []interest.PostingPeriod{}, nil
}

func (stubInterestService) PostInterest(ctx context.Context, input usecase.PostInterestInput) (usecase.CommandResult, error) {
	return usecase.CommandResult{AccountID: input.AccountID}, nil
}

func (stubInterestService) PostInterestForAccounts(ctx context.Context, upTo time.Time) (usecase.BatchResult, error) {
	return usecase.BatchResult{}, nil
}

func (stubInterestService) UpdateMaturedAccounts(ctx context.Context, asOf time.Time) (usecase.BatchResult, error) {
	return usecase.BatchResult{}, nil
}

type stubChargeService struct{}

func (stubChargeService) AddCharge(ctx context.Context, input usecase.AddChargeInput) (usecase.CommandResult, error) {
	return usecase.CommandResult{AccountID: input.AccountID}, nil
}

func (stubChargeService) PayCharge(ctx context.Context, input usecase.PayChargeInput) (usecase.CommandResult, error) {
	return usecase.CommandResult{AccountID: input.AccountID}, nil
}

func (stubChargeService) WaiveCharge(ctx context.Context, accountID, chargeID string) (usecase.CommandResult, error) {
	return usecase.CommandResult{AccountID: accountID}, nil
}

func (stubChargeService) ApplyChargesDueForAccounts(ctx context.Context, asOf time.Time) (usecase.BatchResult, error) {
	return usecase.BatchResult{}, nil
}

type stubTransferService struct{}

func (stubTransferService) InitiateTransfer(ctx context.Context, input usecase.InitiateTransferInput) (usecase.CommandResult, error) {
	return usecase.CommandResult{AccountID: input.FromAccountID}, nil
}

func (stubTransferService) AcceptTransfer(ctx context.Context, transferID string) (usecase.CommandResult, error) {
	return usecase.CommandResult{}, nil
}

func (stubTransferService) RejectTransfer(ctx context.Context, transferID string) (usecase.CommandResult, error) {
	return usecase.CommandResult{}, nil
}

func (stubTransferService) WithdrawTransfer(ctx context.Context, transferID string) (usecase.CommandResult, error) {
	return usecase.CommandResult{}, nil
}

func (stubTransferService) GetTransfer(ctx context.Context, id string) (*domain.AccountTransfer, error) {
	return &domain.AccountTransfer{ID: id}, nil
}

func (stubTransferService) ListTransfersByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.AccountTransfer, error) {
	return []*domain.AccountTransfer{}, nil
}

type stubIdempotencyStore struct {
	checkCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return nil
}
