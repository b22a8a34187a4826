package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/godeposit/internal/adapter/http/dto"
	"github.com/iho/godeposit/internal/domain"
	"github.com/iho/godeposit/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	Deposit(ctx context.Context, input usecase.TransactionInput) (usecase.CommandResult, error)
	Withdraw(ctx context.Context, input usecase.TransactionInput) (usecase.CommandResult, error)
	UndoTransaction(ctx context.Context, input usecase.UndoTransactionInput) (usecase.CommandResult, error)
	AdjustTransaction(ctx context.Context, input usecase.AdjustTransactionInput) (usecase.CommandResult, error)
	GetTransaction(ctx context.Context, accountID, transactionID string) (*domain.Transaction, error)
}

// LedgerReader loads an account so its ledger can be listed.
type LedgerReader interface {
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
}

// TransactionHandler handles ledger transaction HTTP requests.
type TransactionHandler struct {
	txUC   TransactionService
	ledger LedgerReader
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txUC TransactionService, ledger LedgerReader) *TransactionHandler {
	return &TransactionHandler{txUC: txUC, ledger: ledger}
}

// Deposit posts a deposit to the account.
func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.post(w, r, "failed to deposit", h.txUC.Deposit)
}

// Withdraw posts a withdrawal to the account.
func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.post(w, r, "failed to withdraw", h.txUC.Withdraw)
}

// Undo reverses a transaction and replays downstream state.
func (h *TransactionHandler) Undo(w http.ResponseWriter, r *http.Request) {
	result, err := h.txUC.UndoTransaction(r.Context(), usecase.UndoTransactionInput{
		AccountID:     chi.URLParam(r, "id"),
		TransactionID: chi.URLParam(r, "txId"),
	})
	if err != nil {
		writeDomainError(w, "failed to undo transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CommandFromResult(result))
}

// Adjust reverses a transaction and posts a corrected replacement.
func (h *TransactionHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req dto.AdjustTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.txUC.AdjustTransaction(r.Context(),
		req.ToUseCaseInput(chi.URLParam(r, "id"), chi.URLParam(r, "txId")))
	if err != nil {
		writeDomainError(w, "failed to adjust transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CommandFromResult(result))
}

// Get retrieves one transaction.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	tx, err := h.txUC.GetTransaction(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "txId"))
	if err != nil {
		writeDomainError(w, "failed to get transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(tx))
}

// ListByAccount lists the account's ledger in replay order.
func (h *TransactionHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.ledger.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to list transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(account.Transactions))
}

func (h *TransactionHandler) post(
	w http.ResponseWriter,
	r *http.Request,
	message string,
	action func(ctx context.Context, input usecase.TransactionInput) (usecase.CommandResult, error),
) {
	var req dto.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := action(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, message, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CommandFromResult(result))
}
