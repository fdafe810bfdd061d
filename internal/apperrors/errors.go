package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates the resource is in a state that does not allow the operation.
var ErrConflict = errors.New("resource state conflict")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// ErrStorageUnavailable indicates a transient storage-layer fault. Callers may
// retry the same request; the idempotency key guarantees no duplicate posting.
var ErrStorageUnavailable = errors.New("storage unavailable")

// AppError wraps a lower-level error with an HTTP-ish status code and message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches ErrNotFound via errors.Is.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// MissingAccountError is returned when a posting rule references an account
// code that does not exist in the scope's chart of accounts. It is a
// configuration defect: the chart must be fixed before the stage can be
// reposted. No partial entry is ever written.
type MissingAccountError struct {
	ScopeID string
	Code    string
}

func (e *MissingAccountError) Error() string {
	return fmt.Sprintf("account code %q not found in scope %s", e.Code, e.ScopeID)
}

// UnbalancedEntryError is returned when the evaluated lines of a candidate
// entry do not balance. It carries both totals so operators can see the gap.
// The engine never coerces the difference into a suspense account.
type UnbalancedEntryError struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("journal entry does not balance: debit total %s, credit total %s",
		e.TotalDebit.String(), e.TotalCredit.String())
}

// IsFatalPostingError reports whether the error is a data/configuration defect
// that must not be retried automatically (as opposed to a transient storage
// fault, which is safe to retry with the same idempotency key).
func IsFatalPostingError(err error) bool {
	var missing *MissingAccountError
	var unbalanced *UnbalancedEntryError
	if errors.As(err, &missing) || errors.As(err, &unbalanced) {
		return true
	}
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict)
}
