// Package common defines shared constants, sentinel errors and the randomness
// source used across zkpauth server and client layers. Callers should use
// errors.Is to match the error values.
package common

import "errors"

var (
	// Lookup errors.
	ErrorNotFound        = errors.New("not found")
	ErrorUnauthenticated = errors.New("unauthenticated")

	// Proof errors. A failed group proof and a failed commitment opening are
	// kept apart so a cryptographic failure is never reported as a lookup one.
	ErrorVerificationFailed = errors.New("verification failed")
	ErrorPermissionDenied   = errors.New("permission denied")

	// Input errors (wrong length, non-canonical encodings).
	ErrorMalformedInput = errors.New("malformed input")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")
)
