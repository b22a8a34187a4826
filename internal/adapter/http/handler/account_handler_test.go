package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/godeposit/internal/domain"
	"github.com/iho/godeposit/internal/usecase"
)

type fakeAccountService struct {
	openFn         func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error)
	approveFn      func(ctx context.Context, input usecase.LifecycleInput) (usecase.CommandResult, error)
	activateFn     func(ctx context.Context, input usecase.LifecycleInput) (usecase.CommandResult, error)
	getFn          func(ctx context.Context, id string) (*domain.Account, error)
	previewFn      func(ctx context.Context, accountID string, asOf time.Time) (domain.Money, error)
	undoApprovalFn func(ctx context.Context, accountID string) (usecase.CommandResult, error)
}

func (f *fakeAccountService) OpenAccount(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
	if f.openFn != nil {
		return f.openFn(ctx, input)
	}
	return &domain.Account{ID: "acc-1"}, nil
}

func (f *fakeAccountService) ApproveAccount(ctx context.Context, input usecase.LifecycleInput) (usecase.CommandResult, error) {
	if f.approveFn != nil {
		return f.approveFn(ctx, input)
	}
	return usecase.CommandResult{AccountID: input.AccountID}, nil
}

func (f *fakeAccountService) UndoApproval(ctx context.Context, accountID string) (usecase.CommandResult, error) {
	if f.undoApprovalFn != nil {
		return f.undoApprovalFn(ctx, accountID)
	}
	return usecase.CommandResult{AccountID: accountID}, nil
}

func (f *fakeAccountService) RejectAccount(ctx context.Context, input usecase.LifecycleInput) (usecase.CommandResult, error) {
	return usecase.CommandResult{AccountID: input.AccountID}, nil
}

func (f *fakeAccountService) WithdrawApplication(ctx context.Context, input usecase.LifecycleInput) (usecase.CommandResult, error) {
	return usecase.CommandResult{AccountID: input.AccountID}, nil
}

func (f *fakeAccountService) ActivateAccount(ctx context.Context, input usecase.LifecycleInput) (usecase.CommandResult, error) {
	if f.activateFn != nil {
		return f.activateFn(ctx, input)
	}
	return usecase.CommandResult{AccountID: input.AccountID}, nil
}

func (f *fakeAccountService) UndoActivation(ctx context.Context, accountID string) (usecase.CommandResult, error) {
	return usecase.CommandResult{AccountID: accountID}, nil
}

func (f *fakeAccountService) CloseAccount(ctx context.Context, input usecase.LifecycleInput) (usecase.CommandResult, error) {
	return usecase.CommandResult{AccountID: input.AccountID}, nil
}

func (f *fakeAccountService) CloseAccountPrematurely(ctx context.Context, input usecase.LifecycleInput) (usecase.CommandResult, error) {
	return usecase.CommandResult{AccountID: input.AccountID}, nil
}

func (f *fakeAccountService) PreviewPrematureClosure(ctx context.Context, accountID string, asOf time.Time) (domain.Money, error) {
	if f.previewFn != nil {
		return f.previewFn(ctx, accountID, asOf)
	}
	return domain.Money{}, nil
}

func (f *fakeAccountService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return &domain.Account{ID: id}, nil
}

func (f *fakeAccountService) ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
	return []*domain.Account{}, nil
}

func newAccountRouter(svc AccountService) http.Handler {
	h := NewAccountHandler(svc)
	r := chi.NewRouter()
	r.Post("/accounts", h.Open)
	r.Get("/accounts/{id}", h.Get)
	r.Post("/accounts/{id}/approve", h.Approve)
	r.Post("/accounts/{id}/activate", h.Activate)
	r.Post("/accounts/{id}/undo-approval", h.UndoApproval)
	r.Get("/accounts/{id}/closure-preview", h.PreviewClosure)
	return r
}

func TestAccountHandler_Open(t *testing.T) {
	var captured usecase.OpenAccountInput
	svc := &fakeAccountService{
		openFn: func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
			captured = input
			return &domain.Account{ID: "acc-1", Kind: input.Kind}, nil
		},
	}
	router := newAccountRouter(svc)

	body := `{
		"client_id": "client-1",
		"office_id": "office-1",
		"kind": "savings",
		"currency_code": "USD",
		"nominal_annual_rate": "4.0",
		"compounding_period": "daily",
		"posting_period": "monthly",
		"calculation_method": "daily_balance",
		"days_in_year": 365
	}`
	req := httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Kind != domain.KindSavings {
		t.Fatalf("Kind = %q, want savings", captured.Kind)
	}
	if !captured.NominalAnnualRate.Equal(decimal.RequireFromString("4.0")) {
		t.Fatalf("NominalAnnualRate = %s, want 4.0", captured.NominalAnnualRate)
	}
}

func TestAccountHandler_OpenInvalidBody(t *testing.T) {
	router := newAccountRouter(&fakeAccountService{})

	req := httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_GetNotFound(t *testing.T) {
	svc := &fakeAccountService{
		getFn: func(ctx context.Context, id string) (*domain.Account, error) {
			return nil, domain.ErrAccountNotFound
		},
	}
	router := newAccountRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/accounts/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAccountHandler_ApprovePassesDate(t *testing.T) {
	var captured usecase.LifecycleInput
	svc := &fakeAccountService{
		approveFn: func(ctx context.Context, input usecase.LifecycleInput) (usecase.CommandResult, error) {
			captured = input
			return usecase.CommandResult{AccountID: input.AccountID}, nil
		},
	}
	router := newAccountRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/accounts/acc-7/approve", strings.NewReader(`{"date":"2024-02-01T00:00:00Z"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.AccountID != "acc-7" {
		t.Fatalf("AccountID = %q, want acc-7", captured.AccountID)
	}
	want := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	if !captured.Date.Equal(want) {
		t.Fatalf("Date = %v, want %v", captured.Date, want)
	}
}

func TestAccountHandler_ActivateWithoutBody(t *testing.T) {
	svc := &fakeAccountService{
		activateFn: func(ctx context.Context, input usecase.LifecycleInput) (usecase.CommandResult, error) {
			if !input.Date.IsZero() {
				t.Fatalf("expected zero date, got %v", input.Date)
			}
			return usecase.CommandResult{AccountID: input.AccountID}, nil
		},
	}
	router := newAccountRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/activate", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAccountHandler_ActivateConflict(t *testing.T) {
	svc := &fakeAccountService{
		activateFn: func(ctx context.Context, input usecase.LifecycleInput) (usecase.CommandResult, error) {
			return usecase.CommandResult{}, domain.ErrInvalidStateTransition
		},
	}
	router := newAccountRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/activate", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAccountHandler_PreviewClosure(t *testing.T) {
	usd := domain.Currency{Code: "USD", DecimalPlaces: 2}
	svc := &fakeAccountService{
		previewFn: func(ctx context.Context, accountID string, asOf time.Time) (domain.Money, error) {
			want := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
			if !asOf.Equal(want) {
				t.Fatalf("asOf = %v, want %v", asOf, want)
			}
			return domain.NewMoney(usd, decimal.RequireFromString("1023.50")), nil
		},
	}
	router := newAccountRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1/closure-preview?as_of=2024-06-15", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp["currency"] != "USD" {
		t.Fatalf("currency = %v, want USD", resp["currency"])
	}
}

func TestAccountHandler_PreviewClosureBadDate(t *testing.T) {
	router := newAccountRouter(&fakeAccountService{})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1/closure-preview?as_of=june", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
