package payment

import "errors"

var (
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrInvalidAmount    = errors.New("invalid payment amount")
	ErrAmountMismatch   = errors.New("callback amount does not match invoice")
	ErrInvalidSignature = errors.New("invalid callback signature")
	ErrInternal         = errors.New("internal payment error")
)
