package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Error types for consistent error handling across the ledger.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrOutOfRange indicates a numeric field outside its permitted interval.
type ErrOutOfRange struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *ErrOutOfRange) Error() string {
	return fmt.Sprintf("%s is out of valid range (%d-%d): %d", e.Field, e.Min, e.Max, e.Value)
}

// ErrInsufficientFunds indicates not enough balance for the operation.
type ErrInsufficientFunds struct {
	Available decimal.Decimal
	Required  decimal.Decimal
}

func (e *ErrInsufficientFunds) Error() string {
	return fmt.Sprintf("insufficient funds: available=%s required=%s",
		e.Available.StringFixed(2), e.Required.StringFixed(2))
}

// ErrUnauthorized indicates a fingerprint, token or bank secret did not match.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrPrecondition indicates the ledger state forbids the operation
// (unpaid loan on delete, loan above eligibility, repayment above debt).
type ErrPrecondition struct {
	Message string
}

func (e *ErrPrecondition) Error() string {
	return fmt.Sprintf("precondition failed: %s", e.Message)
}

// ErrTransferRejected is returned for any failed transfer guard. Reason names
// the failing factor for logs only; it is not part of the message.
type ErrTransferRejected struct {
	Reason string
}

func (e *ErrTransferRejected) Error() string {
	return "transfer rejected"
}

// ErrForbidden indicates the caller lacks permission for the operation.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}

// ErrDuplicate indicates a duplicate operation (idempotency check).
type ErrDuplicate struct {
	Key string
}

func (e *ErrDuplicate) Error() string {
	return fmt.Sprintf("duplicate operation: %s", e.Key)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// IsSoftFailure reports whether err, returned by op, is a refusal the caller
// can act on rather than a hard failure. Metrics and log levels split on it.
func IsSoftFailure(op Operation, err error) bool {
	if err == nil {
		return false
	}

	var (
		unauthorized *ErrUnauthorized
		validation   *ErrValidation
		notFound     *ErrNotFound
		precondition *ErrPrecondition
		insufficient *ErrInsufficientFunds
		rejected     *ErrTransferRejected
	)

	switch op {
	case OpCreateAccount, OpDeleteCustomer, OpChangePassword:
		return errors.As(err, &unauthorized)
	case OpDeposit:
		return errors.As(err, &unauthorized) || errors.As(err, &validation)
	case OpTakeLoan:
		return errors.As(err, &unauthorized) || errors.As(err, &validation)
	case OpTransfer:
		return errors.As(err, &rejected) || errors.As(err, &validation)
	case OpPayLoan:
		return errors.As(err, &unauthorized) || errors.As(err, &validation) ||
			errors.As(err, &precondition) || errors.As(err, &insufficient)
	case OpDeleteAccount:
		return errors.As(err, &notFound)
	default:
		return false
	}
}
