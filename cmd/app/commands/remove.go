package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	installerDomain "github.com/CallMeGwei/captive-portal-totp/internal/installer/domain"
	installerUsecase "github.com/CallMeGwei/captive-portal-totp/internal/installer/usecase"
)

const removeSteps = 4

// RunRemove restores voucher authentication on every zone, removes the
// template, the SharedTOTP authserver, the auth plugin and the secret, and
// reloads the portal. Components that are already gone are skipped.
func RunRemove(
	ctx context.Context,
	installerUseCase installerUsecase.InstallerUseCase,
	logger *slog.Logger,
	writer io.Writer,
) error {
	logger.Info("removing captive portal TOTP authentication")

	writeLines(writer, "=== Captive Portal TOTP Uninstaller ===", "")

	report, err := installerUseCase.Remove(ctx)
	if report != nil {
		writeRemoveReport(writer, report)
	}
	if err != nil {
		return fmt.Errorf("remove failed: %w", err)
	}

	writeLines(writer, "", "=== Uninstall complete. Captive portal restored to voucher auth. ===")
	return nil
}

func writeRemoveReport(w io.Writer, report *installerDomain.RemoveReport) {
	steps := newStepWriter(w, removeSteps)

	if report.Config == nil {
		return
	}
	steps.step("Restoring zone auth to voucher server...")
	steps.detail("%d zone(s) reset, %d template(s) and %d SharedTOTP authserver(s) removed",
		report.Config.ZonesReset,
		report.Config.TemplatesRemoved,
		report.Config.AuthServersRemoved,
	)
	if report.BackupPath != "" {
		steps.detail("Backup written to %s", report.BackupPath)
	}
	if !report.ConfigWritten {
		return
	}
	steps.detail("%s restored", report.ConfigPath)

	steps.step("Removing SharedTOTP auth connector...")
	if report.PluginRemoved {
		steps.detail("Removed %s", report.PluginPath)
	} else {
		steps.detail("Not present: %s", report.PluginPath)
	}

	steps.step("Removing TOTP secret...")
	if report.SecretRemoved {
		steps.detail("Removed %s", report.SecretPath)
	} else {
		steps.detail("Not present: %s", report.SecretPath)
	}

	steps.step("Reloading and restarting captive portal...")
	if !report.ServiceReloaded {
		steps.detail("Reload failed, run the reload manually once the cause is fixed")
	}
}
