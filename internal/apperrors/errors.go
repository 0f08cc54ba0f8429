package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the caller lacks the role required for the operation.
var ErrForbidden = errors.New("forbidden")

// Ledger and commission errors.
var (
	// ErrUnknownAccount is returned when the referenced account does not exist.
	ErrUnknownAccount = errors.New("unknown account")

	// ErrInvalidAmount is returned for non-positive amounts or amounts finer than the ledger unit.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientBalance is returned when a debit would drive a balance below zero.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrChainCorrupted is returned when the referral chain loops back on itself.
	ErrChainCorrupted = errors.New("referral chain corrupted")

	// ErrScheduleEntryInvalid marks a commission schedule row that cannot be applied.
	ErrScheduleEntryInvalid = errors.New("commission schedule entry invalid")

	// ErrDuplicateReference marks work that was already recorded under the same reference.
	// Callers treat it as a successful no-op.
	ErrDuplicateReference = errors.New("duplicate reference")
)

// AppError carries an HTTP-ish status code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError builds an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}
