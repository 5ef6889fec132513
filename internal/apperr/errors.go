// Package apperr defines the error taxonomy shared by the storefront services.
package apperr

import (
	"errors"
	"fmt"
)

// ErrAlreadyPaid is returned when a payment is verified for an order that already recorded one.
var ErrAlreadyPaid = errors.New("order payment already recorded")

// ValidationError is returned for malformed filter, cart or admin input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is allows errors.Is(err, &ValidationError{}) to match any validation error.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// OutOfStockError is returned when a requested quantity can not be served from stock.
type OutOfStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("product %s is out of stock (requested: %d, available: %d)", e.ProductID, e.Requested, e.Available)
}

func (e *OutOfStockError) Is(target error) bool {
	_, ok := target.(*OutOfStockError)
	return ok
}

// NotFoundError is returned when an order, product or cart line does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// AmountMismatchError is returned when a paid amount differs from the amount the order expects.
// Amounts are minor currency units.
type AmountMismatchError struct {
	Expected int64
	Got      int64
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("amount mismatch: expected %d, got %d", e.Expected, e.Got)
}

func (e *AmountMismatchError) Is(target error) bool {
	_, ok := target.(*AmountMismatchError)
	return ok
}

// ExternalServiceError wraps a failure of the database, cache, broker or network.
type ExternalServiceError struct {
	Op  string
	Err error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

func (e *ExternalServiceError) Is(target error) bool {
	_, ok := target.(*ExternalServiceError)
	return ok
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NewOutOfStockError creates a new OutOfStockError.
func NewOutOfStockError(productID string, requested, available int) error {
	return &OutOfStockError{ProductID: productID, Requested: requested, Available: available}
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// NewAmountMismatchError creates a new AmountMismatchError.
func NewAmountMismatchError(expected, got int64) error {
	return &AmountMismatchError{Expected: expected, Got: got}
}

// External wraps err as an ExternalServiceError unless it already is a domain error.
func External(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomain(err) || errors.Is(err, &ExternalServiceError{}) {
		return err
	}
	return &ExternalServiceError{Op: op, Err: err}
}

// IsDomain reports whether err belongs to the taxonomy above rather than infrastructure.
func IsDomain(err error) bool {
	return IsValidation(err) || IsOutOfStock(err) || IsNotFound(err) || IsAmountMismatch(err) || errors.Is(err, ErrAlreadyPaid)
}

// IsValidation checks if an error is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsOutOfStock checks if an error is an OutOfStockError.
func IsOutOfStock(err error) bool {
	var oe *OutOfStockError
	return errors.As(err, &oe)
}

// IsNotFound checks if an error is a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

// IsAmountMismatch checks if an error is an AmountMismatchError.
func IsAmountMismatch(err error) bool {
	var ae *AmountMismatchError
	return errors.As(err, &ae)
}

// IsExternal checks if an error is an ExternalServiceError.
func IsExternal(err error) bool {
	var ee *ExternalServiceError
	return errors.As(err, &ee)
}
