package services

import "errors"

// Validation errors never mutate an order; they are surfaced directly to the
// caller before anything is persisted. ErrOrderNotFound and
// ErrInvalidTransition come from the verification / confirmation side.
var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrMethodNotFound    = errors.New("payment method not found")
	ErrAmountOutOfRange  = errors.New("order amount outside payment method bounds")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("order is not awaiting payment")
)
