package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/godeposit/internal/adapter/http/dto"
	"github.com/iho/godeposit/internal/domain"
	"github.com/iho/godeposit/internal/domain/interest"
	"github.com/iho/godeposit/internal/usecase"
)

// InterestService defines the behavior needed by InterestHandler.
type InterestService interface {
	CalculateInterest(ctx context.Context, accountID string, upTo time.Time) ([]interest.PostingPeriod, error)
	PostInterest(ctx context.Context, input usecase.PostInterestInput) (usecase.CommandResult, error)
	PostInterestForAccounts(ctx context.Context, upTo time.Time) (usecase.BatchResult, error)
	UpdateMaturedAccounts(ctx context.Context, asOf time.Time) (usecase.BatchResult, error)
}

// InterestHandler handles interest calculation and posting requests.
type InterestHandler struct {
	interestUC InterestService
	accounts   LedgerReader
}

// NewInterestHandler creates a new InterestHandler.
func NewInterestHandler(interestUC InterestService, accounts LedgerReader) *InterestHandler {
	return &InterestHandler{interestUC: interestUC, accounts: accounts}
}

// Calculate computes posting periods without touching the ledger.
func (h *InterestHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	upTo, ok := parseDateQuery(w, r, "up_to")
	if !ok {
		return
	}

	periods, err := h.interestUC.CalculateInterest(r.Context(), accountID, upTo)
	if err != nil {
		writeDomainError(w, "failed to calculate interest", err)
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), accountID)
	if err != nil {
		writeDomainError(w, "failed to calculate interest", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.InterestPeriodsFromDomain(periods, account.Currency))
}

// Post materializes interest postings up to the cut-off.
func (h *InterestHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req dto.PostInterestRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
	}

	result, err := h.interestUC.PostInterest(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, "failed to post interest", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CommandFromResult(result))
}

// PostBatch posts interest for every active account.
func (h *InterestHandler) PostBatch(w http.ResponseWriter, r *http.Request) {
	upTo, ok := parseDateQuery(w, r, "up_to")
	if !ok {
		return
	}

	result, err := h.interestUC.PostInterestForAccounts(r.Context(), upTo)
	if err != nil {
		writeDomainError(w, "failed to post interest batch", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BatchFromResult(result))
}

// UpdateMatured refreshes maturity and overdue state for term deposits.
func (h *InterestHandler) UpdateMatured(w http.ResponseWriter, r *http.Request) {
	asOf, ok := parseDateQuery(w, r, "as_of")
	if !ok {
		return
	}

	result, err := h.interestUC.UpdateMaturedAccounts(r.Context(), asOf)
	if err != nil {
		writeDomainError(w, "failed to update matured accounts", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BatchFromResult(result))
}

// parseDateQuery reads an optional YYYY-MM-DD query parameter. A second
// false return means the response is already written.
func parseDateQuery(w http.ResponseWriter, r *http.Request, key string) (time.Time, bool) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return time.Time{}, true
	}

	parsed, err := time.Parse("2006-01-02", val)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+key+" date", err.Error())
		return time.Time{}, false
	}

	return domain.ToDate(parsed), true
}
