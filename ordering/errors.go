package ordering

import (
	"errors"
	"fmt"
)

// Code classifies a rejected order request.
type Code string

const (
	CodeInvalidRequest   Code = "INVALID_REQUEST"
	CodeInvalidSession   Code = "INVALID_SESSION"
	CodeInvalidProduct   Code = "INVALID_PRODUCT"
	CodeInvalidTopping   Code = "INVALID_TOPPING"
	CodeInvalidComponent Code = "INVALID_COMPONENT"
	// CodeIdempotentOrder is not a failure: the key was already used and
	// OrderID names the order to return.
	CodeIdempotentOrder Code = "IDEMPOTENT_ORDER"
)

// Error message constants for the ordering domain.
const (
	ErrMsgSessionInvalid      = "session is invalid"
	ErrMsgItemsRequired       = "order must have at least one item"
	ErrMsgKeyRequired         = "idempotency key is required"
	ErrMsgKeyTooLong          = "idempotency key must be at most 128 characters"
	ErrMsgQuantityPositive    = "quantity must be at least 1"
	ErrMsgProductUnavailable  = "product is not available"
	ErrMsgToppingNotAllowed   = "topping cannot be selected for this product"
	ErrMsgSetNotConfigured    = "set product has no components configured"
	ErrMsgComponentNotInSet   = "selected component is not part of the set"
	ErrMsgComponentDuplicated = "component selected more than once"
	ErrMsgComponentQuantity   = "component quantity is out of range"
	ErrMsgComponentInactive   = "component product is not available"
	ErrMsgOrderExists         = "order already exists for idempotency key"
)

type Error struct {
	Code    Code
	Message string
	OrderID string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

func newError(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func newErrorf(code Code, msg, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: msg + " (" + fmt.Sprintf(format, args...) + ")"}
}

// CodeOf returns the code carried by err, or "" for errors outside the taxonomy.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
