package orders

import (
	"errors"
	"fmt"

	pkgerrors "github.com/paintqueue/paintqueue-backend/pkg/errors"
)

// Sentinels identify each business rule violation. They are returned wrapped
// in a typed *pkgerrors.Error so callers can match with errors.Is and the HTTP
// layer can map the code.
var (
	ErrInvalidStatus           = errors.New("invalid status")
	ErrMissingColourCode       = errors.New("missing colour code")
	ErrMissingAssignee         = errors.New("missing assignee")
	ErrOrderNotFound           = errors.New("order not found")
	ErrForbidden               = errors.New("forbidden")
	ErrMissingReason           = errors.New("missing reason")
	ErrInvalidStateForDeletion = errors.New("invalid state for deletion")
	ErrInvalidTransition       = errors.New("invalid transition")
	ErrDuplicateTransactionID  = errors.New("duplicate transaction id")
)

func invalidStatus(status string) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrInvalidStatus, fmt.Sprintf("invalid status %q", status)).
		WithDetails(map[string]any{"field": "current_status"})
}

func missingColourCode() error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrMissingColourCode, "colour code is required when marking an order Ready").
		WithDetails(map[string]any{"field": "colour_code"})
}

func missingAssignee() error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrMissingAssignee, "an assigned employee is required once an order leaves Waiting").
		WithDetails(map[string]any{"field": "assigned_employee"})
}

func orderNotFound(transactionID string) error {
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrOrderNotFound, fmt.Sprintf("order %s not found", transactionID))
}

func forbidden(action string) error {
	return pkgerrors.Wrap(pkgerrors.CodeForbidden, ErrForbidden, fmt.Sprintf("only Admin users can %s", action))
}

func missingReason() error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrMissingReason, "a cancellation reason is required").
		WithDetails(map[string]any{"field": "reason"})
}

func invalidStateForDeletion(status string) error {
	return pkgerrors.Wrap(pkgerrors.CodeStateConflict, ErrInvalidStateForDeletion, fmt.Sprintf("orders in %s cannot be cancelled", status)).
		WithDetails(map[string]any{"current_status": status})
}

func invalidTransition(from, to string) error {
	return pkgerrors.Wrap(pkgerrors.CodeStateConflict, ErrInvalidTransition, fmt.Sprintf("cannot move order from %s to %s", from, to)).
		WithDetails(map[string]any{"from_status": from, "to_status": to})
}

func duplicateTransactionID(transactionID string, cause error) error {
	return pkgerrors.Wrap(pkgerrors.CodeConflict, errors.Join(ErrDuplicateTransactionID, cause), fmt.Sprintf("transaction id %s already exists", transactionID))
}
