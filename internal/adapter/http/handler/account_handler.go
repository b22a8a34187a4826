package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/godeposit/internal/adapter/http/dto"
	"github.com/iho/godeposit/internal/domain"
	"github.com/iho/godeposit/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	OpenAccount(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error)
	ApproveAccount(ctx context.Context, input usecase.LifecycleInput) (usecase.CommandResult, error)
	UndoApproval(ctx context.Context, accountID string) (usecase.CommandResult, error)
	RejectAccount(ctx context.Context, input usecase.LifecycleInput) (usecase.CommandResult, error)
	WithdrawApplication(ctx context.Context, input usecase.LifecycleInput) (usecase.CommandResult, error)
	ActivateAccount(ctx context.Context, input usecase.LifecycleInput) (usecase.CommandResult, error)
	UndoActivation(ctx context.Context, accountID string) (usecase.CommandResult, error)
	CloseAccount(ctx context.Context, input usecase.LifecycleInput) (usecase.CommandResult, error)
	CloseAccountPrematurely(ctx context.Context, input usecase.LifecycleInput) (usecase.CommandResult, error)
	PreviewPrematureClosure(ctx context.Context, accountID string, asOf time.Time) (domain.Money, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
}

// AccountHandler handles account lifecycle HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Open submits a new account application.
func (h *AccountHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountUC.OpenAccount(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to open account", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	accounts, err := h.accountUC.ListAccounts(r.Context(), usecase.ListAccountsInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}

// Approve approves a submitted application.
func (h *AccountHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "failed to approve account", h.accountUC.ApproveAccount)
}

// Reject declines a submitted application.
func (h *AccountHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "failed to reject account", h.accountUC.RejectAccount)
}

// WithdrawApplication withdraws a pending application.
func (h *AccountHandler) WithdrawApplication(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "failed to withdraw application", h.accountUC.WithdrawApplication)
}

// Activate opens the account for transactions.
func (h *AccountHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "failed to activate account", h.accountUC.ActivateAccount)
}

// Close closes an active account.
func (h *AccountHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "failed to close account", h.accountUC.CloseAccount)
}

// ClosePrematurely closes a term deposit before maturity.
func (h *AccountHandler) ClosePrematurely(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "failed to close account prematurely", h.accountUC.CloseAccountPrematurely)
}

// UndoApproval returns an approved application to pending.
func (h *AccountHandler) UndoApproval(w http.ResponseWriter, r *http.Request) {
	result, err := h.accountUC.UndoApproval(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to undo approval", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CommandFromResult(result))
}

// UndoActivation rolls an activated account back to approved.
func (h *AccountHandler) UndoActivation(w http.ResponseWriter, r *http.Request) {
	result, err := h.accountUC.UndoActivation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to undo activation", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CommandFromResult(result))
}

// PreviewClosure computes the premature closure payout without closing.
func (h *AccountHandler) PreviewClosure(w http.ResponseWriter, r *http.Request) {
	asOf := time.Time{}
	if val := r.URL.Query().Get("as_of"); val != "" {
		parsed, err := time.Parse("2006-01-02", val)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid as_of date", err.Error())
			return
		}
		asOf = parsed
	}

	amount, err := h.accountUC.PreviewPrematureClosure(r.Context(), chi.URLParam(r, "id"), asOf)
	if err != nil {
		writeDomainError(w, "failed to preview closure", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"amount":   amount.Amount(),
		"currency": amount.Currency().Code,
	})
}

func (h *AccountHandler) lifecycle(
	w http.ResponseWriter,
	r *http.Request,
	message string,
	action func(ctx context.Context, input usecase.LifecycleInput) (usecase.CommandResult, error),
) {
	var req dto.LifecycleRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
	}

	result, err := action(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, message, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CommandFromResult(result))
}
