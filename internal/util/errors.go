// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrInvalidInput        = errors.New("invalid input provided")
	ErrInvalidAmount       = errors.New("amount must be greater than zero with at most 4 decimal places")
	ErrInsufficientFunds   = errors.New("insufficient balance")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrClientNotFound      = errors.New("client not found")
	ErrWalletAlreadyExists = errors.New("wallet already exists for this client")
	ErrClientAlreadyExists = errors.New("phone number is already in use")
	ErrClientIDTaken       = errors.New("client id is already registered")
	ErrVersionConflict     = errors.New("wallet was modified concurrently")
	ErrConcurrentUpdate    = errors.New("wallet is busy, try again")
	ErrLedgerMismatch      = errors.New("wallet balance does not match transaction history")
)

// IsError reports whether err matches target anywhere in its chain.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
