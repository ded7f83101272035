// Package common defines shared constants and sentinel errors used across
// the sync engine. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Transport-level errors.
	ErrNetwork = errors.New("network unavailable")
	ErrServer  = errors.New("server reported failure")
	ErrAuth    = errors.New("invalid credentials")

	// Envelope codec errors.
	ErrDecode = errors.New("envelope decode failed")
	ErrCrypto = errors.New("envelope decrypt failed")
	ErrParse  = errors.New("envelope payload parse failed")

	// ErrProtocol groups the codec errors at the remote client boundary:
	// any response that cannot be unwrapped is a protocol error.
	ErrProtocol = errors.New("protocol error")

	// Storage errors. ErrStorageUnavailable means the platform denied access
	// while opening or migrating the database; ErrNotInitialized means an
	// operation was attempted on a store that is not (or no longer) open.
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrNotInitialized      = errors.New("store not initialized")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrNotFound            = errors.New("not found")

	// Configuration errors.
	ErrConfig = errors.New("invalid configuration")
)
