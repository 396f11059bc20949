package service

import "errors"

var (
	ErrInvalidTarget  = errors.New("invalid payment target")
	ErrTargetNotFound = errors.New("payment target not found")
	ErrGatewayInit    = errors.New("payment gateway did not return a redirect url")

	// callback outcomes; none of these mutate the ledger
	ErrVerificationFailed  = errors.New("payment verification failed")
	ErrOrphanedTransaction = errors.New("no pending transaction for this id")
	ErrDuplicateCallback   = errors.New("transaction already confirmed")

	ErrPaymentNotFound      = errors.New("payment record not found")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrDuplicateTransaction = errors.New("transaction id already recorded")
	ErrInvalidAmount        = errors.New("amount must not be negative")
)
