// Package domain defines the reports produced by the installer actions.
package domain

import (
	applianceDomain "github.com/CallMeGwei/captive-portal-totp/internal/appliance/domain"
	secretDomain "github.com/CallMeGwei/captive-portal-totp/internal/secret/domain"
)

// SecretReport describes a freshly generated secret. It carries the secret
// itself and must only ever reach the operator's terminal.
type SecretReport struct {
	Secret *secretDomain.Secret
	Path   string
	// Code is the one-time code valid when the secret was generated.
	Code string
}

// ProvisioningURI returns the otpauth URI of the secret.
func (r *SecretReport) ProvisioningURI() string {
	return r.Secret.ProvisioningURI()
}

// PackageReport describes a template archive.
type PackageReport struct {
	// Path is empty when the archive was embedded rather than written to disk.
	Path   string
	Size   int
	Digest string
}

// InstallReport describes the steps an install completed. Fields of steps
// that did not run keep their zero value.
type InstallReport struct {
	ConfigPath string

	PluginPath      string
	PluginInstalled bool

	SecretPath string
	// Secret is nil when an existing secret was kept or no secret step ran.
	Secret     *SecretReport
	SecretKept bool

	Template *PackageReport
	Config   *applianceDomain.InstallResult

	BackupPath      string
	ConfigWritten   bool
	ServiceReloaded bool
}

// RemoveReport describes the steps a remove completed.
type RemoveReport struct {
	ConfigPath string
	Config     *applianceDomain.RemoveResult

	BackupPath    string
	ConfigWritten bool

	PluginPath    string
	PluginRemoved bool
	SecretPath    string
	SecretRemoved bool

	ServiceReloaded bool
}
