package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/iho/godeposit/internal/adapter/http/dto"
	"github.com/iho/godeposit/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError translates a use case failure into an HTTP response.
// Validation failures carry the full per-field problem list.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]dto.ValidationErrorResponse, 0, len(verrs))
		for _, ve := range verrs {
			fields = append(fields, dto.ValidationErrorResponse{
				Field:   ve.Field,
				Code:    ve.Code,
				Message: ve.Message,
			})
		}
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:  message,
			Fields: fields,
		})
		return
	}

	writeError(w, mapDomainError(err), message, err.Error())
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrChargeNotFound),
		errors.Is(err, domain.ErrTransferNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidStateTransition),
		errors.Is(err, domain.ErrAccountNotActive),
		errors.Is(err, domain.ErrAccountClosed),
		errors.Is(err, domain.ErrTransactionReversed),
		errors.Is(err, domain.ErrTransactionInTransfer),
		errors.Is(err, domain.ErrChargeAlreadyPaid),
		errors.Is(err, domain.ErrChargeInactive),
		errors.Is(err, domain.ErrAlreadyMatured),
		errors.Is(err, domain.ErrTransferNotInProgress),
		errors.Is(err, domain.ErrPrematureClosureNotAllowed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrChargeOverpaid),
		errors.Is(err, domain.ErrTransactionBeforeLockIn):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSameAccount),
		errors.Is(err, domain.ErrCurrencyMismatch),
		errors.Is(err, domain.ErrCurrencyUnknown),
		errors.Is(err, domain.ErrDueDateNotWorkingDay),
		errors.Is(err, domain.ErrDueDateOnHoliday),
		errors.Is(err, domain.ErrNotTermDeposit),
		errors.Is(err, domain.ErrInterestNotStarted),
		errors.Is(err, domain.ErrInterestPostedAfter),
		errors.Is(err, domain.ErrNoInterestRate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
