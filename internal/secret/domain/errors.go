package domain

import (
	"github.com/CallMeGwei/captive-portal-totp/internal/errors"
)

// Secret error definitions.
var (
	// ErrInvalidSecretSize indicates the raw secret is not exactly SecretSize bytes.
	ErrInvalidSecretSize = errors.Wrap(errors.ErrInvalidInput, "invalid secret size")

	// ErrInvalidSecretEncoding indicates a stored secret is not canonical base32.
	ErrInvalidSecretEncoding = errors.Wrap(errors.ErrInvalidInput, "invalid secret encoding")

	// ErrSecretNotFound indicates the secret file does not exist.
	ErrSecretNotFound = errors.Wrap(errors.ErrNotFound, "secret not found")

	// ErrInsecureSecretStorage indicates ownership or permissions of the secret
	// file could not be applied. Installation must not continue.
	ErrInsecureSecretStorage = errors.New("secret file ownership could not be applied")
)
