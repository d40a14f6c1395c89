// Package common defines shared constants and sentinel errors used across
// ChatVault layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")

	// ErrUnauthorized covers every authentication failure: wrong email or
	// password, bad or expired token, missing claims. The boundary layer
	// must never expose which of those actually happened.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrCredentialMismatch is a failed passphrase check for an already
	// authenticated user. Distinct from ErrUnauthorized so the boundary can
	// answer with a specific message safely.
	ErrCredentialMismatch = errors.New("credential mismatch")

	// Validation / payload errors.
	ErrValidation = errors.New("validation error")

	// Token lifecycle errors. Both map to ErrUnauthorized at the boundary.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
