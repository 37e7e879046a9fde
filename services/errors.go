package services

import "errors"

var (
	ErrNotFound             = errors.New("record not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrInsufficientBalance  = errors.New("amount exceeds available referral balance")
	ErrBelowMinimum         = errors.New("amount is below the minimum withdrawal")
	ErrPaymentBlocked       = errors.New("payment submission is temporarily blocked")
	ErrDuplicateTransaction = errors.New("transaction id was already submitted")
	ErrConflict             = errors.New("conflicts with an existing record")
)
