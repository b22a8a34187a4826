package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/godeposit/internal/adapter/http/dto"
	"github.com/iho/godeposit/internal/usecase"
)

// ChargeService defines the behavior needed by ChargeHandler.
type ChargeService interface {
	AddCharge(ctx context.Context, input usecase.AddChargeInput) (usecase.CommandResult, error)
	PayCharge(ctx context.Context, input usecase.PayChargeInput) (usecase.CommandResult, error)
	WaiveCharge(ctx context.Context, accountID, chargeID string) (usecase.CommandResult, error)
	ApplyChargesDueForAccounts(ctx context.Context, asOf time.Time) (usecase.BatchResult, error)
}

// ChargeHandler handles account charge HTTP requests.
type ChargeHandler struct {
	chargeUC ChargeService
	accounts LedgerReader
}

// NewChargeHandler creates a new ChargeHandler.
func NewChargeHandler(chargeUC ChargeService, accounts LedgerReader) *ChargeHandler {
	return &ChargeHandler{chargeUC: chargeUC, accounts: accounts}
}

// Add attaches a charge to the account.
func (h *ChargeHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req dto.AddChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.chargeUC.AddCharge(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, "failed to add charge", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CommandFromResult(result))
}

// Pay settles (part of) a charge.
func (h *ChargeHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var req dto.PayChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.chargeUC.PayCharge(r.Context(),
		req.ToUseCaseInput(chi.URLParam(r, "id"), chi.URLParam(r, "chargeId")))
	if err != nil {
		writeDomainError(w, "failed to pay charge", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CommandFromResult(result))
}

// Waive forgives the outstanding remainder of a charge.
func (h *ChargeHandler) Waive(w http.ResponseWriter, r *http.Request) {
	result, err := h.chargeUC.WaiveCharge(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "chargeId"))
	if err != nil {
		writeDomainError(w, "failed to waive charge", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CommandFromResult(result))
}

// ListByAccount lists the account's charges.
func (h *ChargeHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to list charges", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ChargesFromDomain(account.Charges))
}

// ApplyDue runs the due-charge batch across active accounts.
func (h *ChargeHandler) ApplyDue(w http.ResponseWriter, r *http.Request) {
	asOf, ok := parseDateQuery(w, r, "as_of")
	if !ok {
		return
	}

	result, err := h.chargeUC.ApplyChargesDueForAccounts(r.Context(), asOf)
	if err != nil {
		writeDomainError(w, "failed to apply due charges", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BatchFromResult(result))
}
