// Package service persists the TOTP shared secret for the appliance's auth plugin.
package service

import (
	"context"

	secretDomain "github.com/CallMeGwei/captive-portal-totp/internal/secret/domain"
)

// SecretManager generates and stores the shared secret.
//
// The manager is not responsible for idempotence: Generate always creates a
// fresh secret and overwrites the file. Callers check Exists first when they
// want to keep an existing secret.
type SecretManager interface {
	// Generate creates a new random secret, writes it to the secret file with
	// restricted permissions and group ownership, and returns it.
	Generate(ctx context.Context) (*secretDomain.Secret, error)

	// Exists reports whether the secret file is present.
	Exists() (bool, error)

	// Remove deletes the secret file. Returns false when it was already absent.
	Remove() (bool, error)

	// Path returns the secret file location.
	Path() string
}

// GroupOwner applies group ownership to a file.
type GroupOwner interface {
	SetGroup(path, group string) error
}
