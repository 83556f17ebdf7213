package apperrors

import (
	"errors"
)

var (
	ErrSessionExpired     = errors.New("session expired")
	ErrCredentialNotFound = errors.New("credential not found")
	ErrStoreUnavailable   = errors.New("credential store unavailable")
	ErrCredentialSealed   = errors.New("credential could not be unsealed")

	ErrValidation         = errors.New("validation failed")
	ErrRotationIncomplete = errors.New("rotation created partially")

	ErrNotFound = errors.New("resource not found")
)
