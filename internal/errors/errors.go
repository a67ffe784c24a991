// Package errors defines error types used throughout the vaultswap module.
//
// The VaultError type captures the error cases that can occur while creating
// pools and settling swaps, providing stable error codes and support for
// custom error handling.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for the vaultswap module.
const (
	ErrCodeInvalidAmount          = "INVALID_AMOUNT"
	ErrCodeInsufficientLiquidity  = "INSUFFICIENT_LIQUIDITY"
	ErrCodeAuthorityMismatch      = "AUTHORITY_MISMATCH"
	ErrCodeDuplicatePool          = "DUPLICATE_POOL"
	ErrCodeAllocationFailed       = "ALLOCATION_FAILED"
	ErrCodeInsufficientBalance    = "INSUFFICIENT_BALANCE"
	ErrCodeAssetMismatch          = "ASSET_MISMATCH"
	ErrCodeAccountFrozen          = "ACCOUNT_FROZEN"
	ErrCodeAccountNotEmpty        = "ACCOUNT_NOT_EMPTY"
	ErrCodeUnauthorizedSigner     = "UNAUTHORIZED_SIGNER"
	ErrCodeAccountNotFound        = "ACCOUNT_NOT_FOUND"
	ErrCodePoolNotFound           = "POOL_NOT_FOUND"
	ErrCodeInvalidDirection       = "INVALID_DIRECTION"
	ErrCodeDerivationFailed       = "DERIVATION_FAILED"
	ErrCodeCustom                 = "CUSTOM"
)

// VaultError represents an error in the vaultswap module.
type VaultError struct {
	// Code is a unique error code for this error type.
	Code string

	// Message is a human-readable error message.
	Message string

	// Cause is the underlying error, if any.
	Cause error

	// Details contains additional error context.
	Details map[string]any
}

// Error implements the error interface.
func (e *VaultError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *VaultError) Unwrap() error {
	return e.Cause
}

// Is reports whether the error matches the target.
func (e *VaultError) Is(target error) bool {
	t, ok := target.(*VaultError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause adds a cause to the error.
func (e *VaultError) WithCause(cause error) *VaultError {
	return &VaultError{Code: e.Code, Message: e.Message, Cause: cause, Details: e.Details}
}

// WithDetails adds details to the error.
func (e *VaultError) WithDetails(details map[string]any) *VaultError {
	return &VaultError{Code: e.Code, Message: e.Message, Cause: e.Cause, Details: details}
}

// NewError creates a new VaultError.
func NewError(code, message string) *VaultError {
	return &VaultError{
		Code:    code,
		Message: message,
	}
}

// Pre-defined errors for the swap and pool-creation paths.
var (
	// ErrInvalidAmount is returned when a swap requests a zero input amount.
	ErrInvalidAmount = NewError(ErrCodeInvalidAmount, "invalid amount")

	// ErrInsufficientLiquidity is returned when the destination reserve cannot cover the swap.
	ErrInsufficientLiquidity = NewError(ErrCodeInsufficientLiquidity, "insufficient vault liquidity")

	// ErrAuthorityMismatch is returned when the supplied authority does not match re-derivation.
	ErrAuthorityMismatch = NewError(ErrCodeAuthorityMismatch, "pool authority does not match derivation")

	// ErrDuplicatePool is returned when a pool already exists for the asset pair.
	ErrDuplicatePool = NewError(ErrCodeDuplicatePool, "pool already exists for asset pair")

	// ErrAllocationFailed is returned when pool state or reserve accounts cannot be created.
	ErrAllocationFailed = NewError(ErrCodeAllocationFailed, "failed to allocate pool accounts")

	// ErrInsufficientBalance is returned by the ledger when the source account cannot cover a transfer.
	ErrInsufficientBalance = NewError(ErrCodeInsufficientBalance, "insufficient token balance")

	// ErrAssetMismatch is returned by the ledger when an account does not hold the expected mint.
	ErrAssetMismatch = NewError(ErrCodeAssetMismatch, "token account mint mismatch")

	// ErrAccountFrozen is returned by the ledger when a frozen account is used in a transfer.
	ErrAccountFrozen = NewError(ErrCodeAccountFrozen, "token account is frozen")

	// ErrAccountNotEmpty is returned by the ledger when closing an account that still holds a balance.
	ErrAccountNotEmpty = NewError(ErrCodeAccountNotEmpty, "token account still holds a balance")

	// ErrUnauthorizedSigner is returned by the ledger when the authorizer cannot move the source funds.
	ErrUnauthorizedSigner = NewError(ErrCodeUnauthorizedSigner, "authorizer cannot debit source account")

	// ErrAccountNotFound is returned by the ledger when a referenced account does not exist.
	ErrAccountNotFound = NewError(ErrCodeAccountNotFound, "token account not found")

	// ErrPoolNotFound is returned when no pool record exists for the requested pair.
	ErrPoolNotFound = NewError(ErrCodePoolNotFound, "pool not found")

	// ErrInvalidDirection is returned when a swap request carries an undefined direction flag.
	ErrInvalidDirection = NewError(ErrCodeInvalidDirection, "invalid swap direction")

	// ErrDerivationFailed is returned when no valid program address exists in the bump space.
	ErrDerivationFailed = NewError(ErrCodeDerivationFailed, "program address derivation exhausted bump space")
)

// Custom creates a custom error with the given message.
func Custom(message string) *VaultError {
	return NewError(ErrCodeCustom, message)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
