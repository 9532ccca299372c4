// Package apperrors defines the error kinds shared by the storage, exchange and service layers.
//
// Every rejection reason is a sentinel wrapping one kind, so callers can ask either question with
// errors.Is: "was this a not-found error?" or "was the account missing?".
package apperrors

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	// ErrValidation indicates that input data was malformed or out of range.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates that a referenced entity does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict indicates a uniqueness or referential-integrity violation.
	ErrConflict = errors.New("conflict")

	// ErrConversionUnavailable indicates that no exchange rate exists for a currency pair.
	ErrConversionUnavailable = errors.New("conversion unavailable")

	// ErrInsufficientFunds indicates a withdrawal beyond what the account allows.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNotAccountOwner indicates that the requesting customer does not hold the source account.
	ErrNotAccountOwner = errors.New("customer is not the owner of the account")

	// ErrNegativeAmount indicates that a converted transaction amount is below zero.
	ErrNegativeAmount = errors.New("negative amount")
)

// Rejection reasons.
var (
	ErrNoAccountSpecified = fmt.Errorf("%w: no account number provided", ErrValidation)
	ErrMissingAmount      = fmt.Errorf("%w: transaction amount is unknown", ErrValidation)
	ErrMissingCurrency    = fmt.Errorf("%w: no currency provided for the transaction", ErrValidation)

	ErrCustomerNotFound = fmt.Errorf("customer %w", ErrNotFound)
	ErrAccountNotFound  = fmt.Errorf("account %w", ErrNotFound)
	ErrCurrencyNotFound = fmt.Errorf("currency %w", ErrNotFound)

	ErrUnknownCurrency = fmt.Errorf("unknown currency: %w", ErrConversionUnavailable)
)
