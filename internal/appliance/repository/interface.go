// Package repository reads and writes the appliance configuration document file.
package repository

import (
	"context"

	applianceDomain "github.com/CallMeGwei/captive-portal-totp/internal/appliance/domain"
)

// DocumentRepository loads and persists the configuration document.
type DocumentRepository interface {
	// Load reads and parses the document.
	Load(ctx context.Context) (*applianceDomain.Document, error)

	// Save serializes doc and replaces the document file with it.
	Save(ctx context.Context, doc *applianceDomain.Document) error

	// Path returns the document file location.
	Path() string
}
