// Package usecase implements the installer actions: install, remove,
// regenerate-secret and build-offline-package.
package usecase

import (
	"context"

	applianceDomain "github.com/CallMeGwei/captive-portal-totp/internal/appliance/domain"
	installerDomain "github.com/CallMeGwei/captive-portal-totp/internal/installer/domain"
	portalDomain "github.com/CallMeGwei/captive-portal-totp/internal/portal/domain"
	secretDomain "github.com/CallMeGwei/captive-portal-totp/internal/secret/domain"
)

// DocumentRepository loads and persists the configuration document.
type DocumentRepository interface {
	Load(ctx context.Context) (*applianceDomain.Document, error)
	Save(ctx context.Context, doc *applianceDomain.Document) error
	Path() string
}

// Snapshotter copies the configuration document aside before it is replaced.
type Snapshotter interface {
	Snapshot(ctx context.Context, path string) (string, error)
}

// SecretManager generates and stores the shared secret.
type SecretManager interface {
	Generate(ctx context.Context) (*secretDomain.Secret, error)
	Exists() (bool, error)
	Remove() (bool, error)
	Path() string
}

// Packager builds the portal template archive.
type Packager interface {
	Pack(ctx context.Context) (*portalDomain.TemplateArchive, error)
	WriteArchive(ctx context.Context, path string) (*portalDomain.TemplateArchive, error)
}

// ControlRunner runs the appliance's service control command.
type ControlRunner interface {
	Run(ctx context.Context, args ...string) error
}

// InstallerUseCase defines the four entry actions.
//
// Install and Remove always return a report, also on error, describing the
// steps that completed before the failure. A generated secret is only ever
// visible through that report.
type InstallerUseCase interface {
	// Install copies the auth plugin, ensures a secret exists, registers the
	// sharedtotp authserver, binds every zone to it, embeds a fresh portal
	// template, writes the document after a backup and reloads the portal.
	Install(ctx context.Context) (*installerDomain.InstallReport, error)

	// Remove restores voucher authentication, drops every template and
	// sharedtotp authserver, writes the document after a backup, deletes the
	// plugin and the secret, and reloads the portal.
	Remove(ctx context.Context) (*installerDomain.RemoveReport, error)

	// RegenerateSecret replaces the secret unconditionally.
	RegenerateSecret(ctx context.Context) (*installerDomain.SecretReport, error)

	// BuildOfflinePackage writes the template archive for manual upload.
	BuildOfflinePackage(ctx context.Context) (*installerDomain.PackageReport, error)
}
