package errors

import (
	"fmt"
)

// ErrNotFound is returned when a resource does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when credentials are missing or invalid
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	return fmt.Sprintf("unauthorized: %s", e.Message)
}

// ErrInvalidStateTransition is returned when the checkout flow is asked to move
// between two stages that are not connected
type ErrInvalidStateTransition struct {
	From fmt.Stringer
	To   fmt.Stringer
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// ErrNotPurchasable is returned when a product without a price is put into the basket
type ErrNotPurchasable struct {
	ID string
}

func (e *ErrNotPurchasable) Error() string {
	return fmt.Sprintf("product %s is not for sale", e.ID)
}

// ErrInvalidField is returned when a form is asked to store a field it does not own
type ErrInvalidField struct {
	Form  string
	Field string
}

func (e *ErrInvalidField) Error() string {
	return fmt.Sprintf("field %q does not belong to the %s form", e.Field, e.Form)
}

// NetworkError reports a transport failure or a non-2xx answer from the remote API
type NetworkError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": network error"
	}
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DecodeError reports a response body that does not have the expected shape
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// InvariantViolation marks a programming error, e.g. a basket entry without a catalog match
type InvariantViolation struct {
	Message string
}

func (e *InvariantViolation) Error() string {
	return "invariant violation: " + e.Message
}
