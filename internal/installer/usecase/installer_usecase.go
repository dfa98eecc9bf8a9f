package usecase

import (
	"context"
	"log/slog"
	"time"

	applianceDomain "github.com/CallMeGwei/captive-portal-totp/internal/appliance/domain"
	"github.com/CallMeGwei/captive-portal-totp/internal/configctl"
	apperrors "github.com/CallMeGwei/captive-portal-totp/internal/errors"
	"github.com/CallMeGwei/captive-portal-totp/internal/fsutil"
	installerDomain "github.com/CallMeGwei/captive-portal-totp/internal/installer/domain"
)

// Paths holds the file locations the installer works with besides the
// configuration document and the secret.
type Paths struct {
	// PluginSource is the auth plugin shipped next to the installer.
	PluginSource string
	// PluginDest is where the appliance loads auth plugins from.
	PluginDest string
	// ArchivePath is where BuildOfflinePackage writes the template archive.
	ArchivePath string
}

// installerUseCase implements InstallerUseCase.
type installerUseCase struct {
	repo     DocumentRepository
	backup   Snapshotter
	secrets  SecretManager
	packager Packager
	runner   ControlRunner
	paths    Paths
	now      func() time.Time
	logger   *slog.Logger
}

// NewInstallerUseCase creates an InstallerUseCase. A nil clock uses time.Now.
func NewInstallerUseCase(
	repo DocumentRepository,
	backup Snapshotter,
	secrets SecretManager,
	packager Packager,
	runner ControlRunner,
	paths Paths,
	now func() time.Time,
	logger *slog.Logger,
) InstallerUseCase {
	if now == nil {
		now = time.Now
	}
	return &installerUseCase{
		repo:     repo,
		backup:   backup,
		secrets:  secrets,
		packager: packager,
		runner:   runner,
		paths:    paths,
		now:      now,
		logger:   logger,
	}
}

// Install moves the appliance into the TOTP-Auth state.
//
// Everything that can fail without side effects runs first: loading and
// checking the document, packing the template and transforming the document
// in memory. Only then are the plugin and the secret put in place, the
// document backed up and written, and the portal reloaded. A failed reload is
// reported after the document has been written and is not rolled back.
func (i *installerUseCase) Install(ctx context.Context) (*installerDomain.InstallReport, error) {
	report := &installerDomain.InstallReport{
		ConfigPath: i.repo.Path(),
		PluginPath: i.paths.PluginDest,
		SecretPath: i.secrets.Path(),
	}

	doc, err := i.loadDocument(ctx)
	if err != nil {
		return report, err
	}

	archive, err := i.packager.Pack(ctx)
	if err != nil {
		return report, apperrors.Wrap(err, "failed to pack portal template")
	}
	content, err := archive.Encoded()
	if err != nil {
		return report, apperrors.Wrap(err, "failed to encode portal template")
	}
	report.Template = &installerDomain.PackageReport{Size: archive.Size(), Digest: archive.Digest}

	result, err := applianceDomain.Install(doc, content, applianceDomain.NewIdentifiers(i.now()))
	if err != nil {
		return report, apperrors.Wrap(err, "failed to update configuration document")
	}
	report.Config = result

	if err := fsutil.CopyFile(i.paths.PluginSource, i.paths.PluginDest); err != nil {
		return report, apperrors.Wrap(err, "failed to install auth plugin")
	}
	report.PluginInstalled = true
	i.logger.InfoContext(ctx, "auth plugin installed",
		slog.String("source", i.paths.PluginSource),
		slog.String("dest", i.paths.PluginDest),
	)

	exists, err := i.secrets.Exists()
	if err != nil {
		return report, apperrors.Wrap(err, "failed to check TOTP secret")
	}
	if exists {
		report.SecretKept = true
		i.logger.InfoContext(ctx, "TOTP secret already present, keeping it",
			slog.String("path", i.secrets.Path()),
		)
	} else {
		secretReport, err := i.generateSecret(ctx)
		if err != nil {
			return report, err
		}
		report.Secret = secretReport
	}

	if err := i.persist(ctx, doc, &report.BackupPath); err != nil {
		return report, err
	}
	report.ConfigWritten = true

	if err := i.reload(ctx); err != nil {
		return report, err
	}
	report.ServiceReloaded = true

	i.logger.InfoContext(ctx, "install completed",
		slog.String("authserver", result.AuthServerName),
		slog.Bool("authserver_created", result.AuthServerCreated),
		slog.Int("zones", len(result.Zones)),
		slog.String("template_id", result.TemplateID),
	)

	return report, nil
}

// Remove moves the appliance back into the Voucher-Auth state. Files that are
// already gone are not an error, so Remove can be run again after a partial
// failure.
func (i *installerUseCase) Remove(ctx context.Context) (*installerDomain.RemoveReport, error) {
	report := &installerDomain.RemoveReport{
		ConfigPath: i.repo.Path(),
		PluginPath: i.paths.PluginDest,
		SecretPath: i.secrets.Path(),
	}

	doc, err := i.loadDocument(ctx)
	if err != nil {
		return report, err
	}

	result, err := applianceDomain.Remove(doc)
	if err != nil {
		return report, apperrors.Wrap(err, "failed to update configuration document")
	}
	report.Config = result

	if err := i.persist(ctx, doc, &report.BackupPath); err != nil {
		return report, err
	}
	report.ConfigWritten = true

	removed, err := fsutil.RemoveIfExists(i.paths.PluginDest)
	if err != nil {
		return report, apperrors.Wrap(err, "failed to remove auth plugin")
	}
	report.PluginRemoved = removed

	removed, err = i.secrets.Remove()
	if err != nil {
		return report, apperrors.Wrap(err, "failed to remove TOTP secret")
	}
	report.SecretRemoved = removed

	if err := i.reload(ctx); err != nil {
		return report, err
	}
	report.ServiceReloaded = true

	i.logger.InfoContext(ctx, "remove completed",
		slog.Int("zones", result.ZonesReset),
		slog.Int("templates_removed", result.TemplatesRemoved),
		slog.Int("authservers_removed", result.AuthServersRemoved),
		slog.Bool("plugin_removed", report.PluginRemoved),
		slog.Bool("secret_removed", report.SecretRemoved),
	)

	return report, nil
}

// RegenerateSecret replaces the secret file with a new secret. Authenticator
// apps provisioned with the old secret stop working.
func (i *installerUseCase) RegenerateSecret(ctx context.Context) (*installerDomain.SecretReport, error) {
	return i.generateSecret(ctx)
}

// BuildOfflinePackage writes the template archive to the configured path.
func (i *installerUseCase) BuildOfflinePackage(ctx context.Context) (*installerDomain.PackageReport, error) {
	archive, err := i.packager.WriteArchive(ctx, i.paths.ArchivePath)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to build template archive")
	}
	return &installerDomain.PackageReport{
		Path:   i.paths.ArchivePath,
		Size:   archive.Size(),
		Digest: archive.Digest,
	}, nil
}

func (i *installerUseCase) loadDocument(ctx context.Context) (*applianceDomain.Document, error) {
	doc, err := i.repo.Load(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load configuration document")
	}
	if err := doc.CheckPreconditions(); err != nil {
		return nil, apperrors.Wrapf(err, "cannot modify %s", i.repo.Path())
	}
	return doc, nil
}

func (i *installerUseCase) generateSecret(ctx context.Context) (*installerDomain.SecretReport, error) {
	secret, err := i.secrets.Generate(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate TOTP secret")
	}

	report := &installerDomain.SecretReport{
		Secret: secret,
		Path:   i.secrets.Path(),
	}

	// The secret is already on disk, so a missing code must not hide it.
	code, err := secret.CodeAt(i.now())
	if err != nil {
		i.logger.WarnContext(ctx, "failed to derive current TOTP code", slog.Any("error", err))
		return report, nil
	}
	report.Code = code

	return report, nil
}

// persist backs up the current document file and writes doc over it.
func (i *installerUseCase) persist(
	ctx context.Context,
	doc *applianceDomain.Document,
	backupPath *string,
) error {
	path, err := i.backup.Snapshot(ctx, i.repo.Path())
	if err != nil {
		return apperrors.Wrap(err, "failed to back up configuration document")
	}
	*backupPath = path

	if err := i.repo.Save(ctx, doc); err != nil {
		return apperrors.Wrapf(err, "failed to write configuration document (backup at %s)", path)
	}
	return nil
}

// reload regenerates the portal templates and restarts the captive portal.
func (i *installerUseCase) reload(ctx context.Context) error {
	if err := i.runner.Run(ctx, configctl.ReloadTemplatesArgs...); err != nil {
		return apperrors.Wrap(err, "configuration written but template reload failed")
	}
	if err := i.runner.Run(ctx, configctl.RestartPortalArgs...); err != nil {
		return apperrors.Wrap(err, "configuration written but captive portal restart failed")
	}
	return nil
}
