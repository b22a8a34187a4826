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

// TransferService defines the behavior needed by TransferHandler.
type TransferService interface {
	InitiateTransfer(ctx context.Context, input usecase.InitiateTransferInput) (usecase.CommandResult, error)
	AcceptTransfer(ctx context.Context, transferID string) (usecase.CommandResult, error)
	RejectTransfer(ctx context.Context, transferID string) (usecase.CommandResult, error)
	WithdrawTransfer(ctx context.Context, transferID string) (usecase.CommandResult, error)
	GetTransfer(ctx context.Context, id string) (*domain.AccountTransfer, error)
	ListTransfersByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.AccountTransfer, error)
}

// TransferHandler handles account transfer HTTP requests.
type TransferHandler struct {
	transferUC TransferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferUC TransferService) *TransferHandler {
	return &TransferHandler{transferUC: transferUC}
}

// Initiate starts a transfer: the outgoing leg posts at the source.
func (h *TransferHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	var req dto.InitiateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.transferUC.InitiateTransfer(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to initiate transfer", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CommandFromResult(result))
}

// Accept settles the transfer at the destination.
func (h *TransferHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, "failed to accept transfer", h.transferUC.AcceptTransfer)
}

// Reject declines an in-flight transfer and restores the source.
func (h *TransferHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, "failed to reject transfer", h.transferUC.RejectTransfer)
}

// Withdraw cancels an in-flight transfer from the initiating side.
func (h *TransferHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, "failed to withdraw transfer", h.transferUC.WithdrawTransfer)
}

// Get retrieves a transfer by ID.
func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	transfer, err := h.transferUC.GetTransfer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get transfer", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransferFromDomain(transfer))
}

// ListByAccount lists transfers touching the account.
func (h *TransferHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	transfers, err := h.transferUC.ListTransfersByAccount(r.Context(), chi.URLParam(r, "id"), limit, offset)
	if err != nil {
		writeDomainError(w, "failed to list transfers", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransfersFromDomain(transfers))
}

func (h *TransferHandler) settle(
	w http.ResponseWriter,
	r *http.Request,
	message string,
	action func(ctx context.Context, transferID string) (usecase.CommandResult, error),
) {
	result, err := action(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, message, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CommandFromResult(result))
}
