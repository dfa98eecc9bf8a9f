// Package service builds the captive portal template archive from source assets.
package service

import (
	"context"

	portalDomain "github.com/CallMeGwei/captive-portal-totp/internal/portal/domain"
)

// Packager bundles the portal assets into a TemplateArchive.
type Packager interface {
	// Pack reads every asset and returns the archive in memory.
	Pack(ctx context.Context) (*portalDomain.TemplateArchive, error)

	// WriteArchive packs the assets and writes the archive to path.
	WriteArchive(ctx context.Context, path string) (*portalDomain.TemplateArchive, error)
}
