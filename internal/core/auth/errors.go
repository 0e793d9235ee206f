package auth

import "errors"

// Authentication errors. Missing, malformed and unknown keys all surface as
// UNAUTHENTICATED so a caller cannot probe which keys exist; a revoked key
// is PERMISSION_DENIED.
var (
	ErrMissingKey       = errors.New("API key required in x-api-key metadata")
	ErrInvalidKeyFormat = errors.New("invalid API key format")
	ErrUnknownKey       = errors.New("unknown secret ID")
	ErrInvalidKey       = errors.New("invalid API key")
	ErrKeyRevoked       = errors.New("API key has been revoked")

	// ErrKeyNotFound indicates Revoke found no active key with that id.
	ErrKeyNotFound = errors.New("API key not found")

	// ErrNoSecrets indicates no HMAC secret is configured for issuing keys.
	ErrNoSecrets = errors.New("no HMAC secret configured (set SB_HMAC_SECRET)")

	// ErrDatabase wraps failures of the key store. Mapped to UNAVAILABLE.
	ErrDatabase = errors.New("database error")
)
