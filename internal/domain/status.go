package domain

import "fmt"

// AccountStatus is the lifecycle state of a deposit account.
type AccountStatus string

const (
	StatusSubmittedPendingApproval AccountStatus = "submitted_pending_approval"
	StatusApproved                 AccountStatus = "approved"
	StatusActive                   AccountStatus = "active"
	StatusClosed                   AccountStatus = "closed"
	StatusPrematurelyClosed        AccountStatus = "prematurely_closed"
	StatusRejected                 AccountStatus = "rejected"
	StatusApplicantWithdrawn       AccountStatus = "applicant_withdrawn"
	StatusTransferInProgress       AccountStatus = "transfer_in_progress"
	StatusTransferOnHold           AccountStatus = "transfer_on_hold"
)

// allowedTransitions drives the whole lifecycle. Anything not listed is
// rejected with ErrInvalidStateTransition.
var allowedTransitions = map[AccountStatus][]AccountStatus{
	StatusSubmittedPendingApproval: {StatusApproved, StatusRejected, StatusApplicantWithdrawn},
	StatusApproved:                 {StatusActive, StatusSubmittedPendingApproval, StatusApplicantWithdrawn},
	StatusActive:                   {StatusClosed, StatusPrematurelyClosed, StatusApproved, StatusTransferInProgress, StatusTransferOnHold},
	StatusTransferInProgress:       {StatusActive, StatusTransferOnHold},
	StatusTransferOnHold:           {StatusActive, StatusTransferInProgress},
}

// CanTransition reports whether from -> to is a legal lifecycle move.
func CanTransition(from, to AccountStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates and returns the new status.
func Transition(from, to AccountStatus) (AccountStatus, error) {
	if !CanTransition(from, to) {
		return from, fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, from, to)
	}
	return to, nil
}

// IsActive reports whether the status permits deposits, withdrawals,
// charge application and interest posting.
func (s AccountStatus) IsActive() bool {
	return s == StatusActive
}

// IsClosed reports whether the account reached a terminal closed state.
func (s AccountStatus) IsClosed() bool {
	return s == StatusClosed || s == StatusPrematurelyClosed
}

// IsTerminal reports whether no further transitions are possible.
func (s AccountStatus) IsTerminal() bool {
	return s.IsClosed() || s == StatusRejected || s == StatusApplicantWithdrawn
}
