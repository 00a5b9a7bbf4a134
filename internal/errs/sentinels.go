// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Pairing/authentication sentinels.
var (
	// ErrInvalidPin indicates no active pairing session matches the supplied PIN.
	ErrInvalidPin = errors.New("invalid pin")

	// ErrExpiredPin indicates the pairing session's authentication window has passed.
	ErrExpiredPin = errors.New("pin expired")

	// ErrUnauthorized indicates a missing or invalid bearer token.
	ErrUnauthorized = errors.New("unauthorized")
)

// Domain sentinels.
var (
	// ErrAccountNotFound indicates the referenced account does not exist in the wallet.
	ErrAccountNotFound = errors.New("account not found")

	// ErrTransactionNotFound indicates the referenced transaction does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrItemNotFound indicates the referenced catalog item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrInsufficientFunds indicates an expense would drive an account balance negative.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrBatchNotFound indicates the pending sync batch does not exist (or was already resolved).
	ErrBatchNotFound = errors.New("sync batch not found")
)

// Persistence sentinels.
var (
	// ErrReadFailure indicates a document could not be read from disk.
	ErrReadFailure = errors.New("read failure")

	// ErrParseFailure indicates a document could not be decoded.
	ErrParseFailure = errors.New("parse failure")

	// ErrWriteFailure indicates a document could not be written.
	ErrWriteFailure = errors.New("write failure")

	// ErrRollbackFailed indicates the transaction ledger could not be restored
	// after a failed wallet write. The two documents may be inconsistent.
	ErrRollbackFailed = errors.New("ledger rollback failed: stores may be inconsistent")
)

// Server lifecycle sentinels.
var (
	// ErrServerNotRunning indicates a control operation on a stopped sync server.
	ErrServerNotRunning = errors.New("sync server not running")

	// ErrServerRunning indicates a start request while a sync server is already up.
	ErrServerRunning = errors.New("sync server already running")
)
