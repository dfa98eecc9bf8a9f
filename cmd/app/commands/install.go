package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	installerDomain "github.com/CallMeGwei/captive-portal-totp/internal/installer/domain"
	installerUsecase "github.com/CallMeGwei/captive-portal-totp/internal/installer/usecase"
)

const installSteps = 5

// RunInstall installs the auth plugin, ensures a TOTP secret exists, switches
// every captive portal zone to TOTP authentication with the bundled template
// and reloads the portal.
//
// The steps that completed are printed even when install fails, so a secret
// generated before the failure is never lost.
func RunInstall(
	ctx context.Context,
	installerUseCase installerUsecase.InstallerUseCase,
	logger *slog.Logger,
	writer io.Writer,
) error {
	logger.Info("installing captive portal TOTP authentication")

	writeLines(writer, "=== Captive Portal TOTP Installer ===", "")

	report, err := installerUseCase.Install(ctx)
	if report != nil {
		writeInstallReport(writer, report)
	}
	if err != nil {
		return fmt.Errorf("install failed: %w", err)
	}

	writeLines(writer,
		"",
		"=== Installation complete ===",
		"",
		"Verify the portal page is served:",
		"  "+portalPageHint,
		"",
		"If you need to regenerate the TOTP secret later:",
		fmt.Sprintf("  %s --gen-secret", ProgramName),
	)
	if report != nil && report.Secret != nil {
		writeLines(writer,
			"",
			"The otpauth:// URI printed above (step 2) can be entered manually",
			"into any TOTP authenticator app.",
		)
	}

	return nil
}

// writeInstallReport prints one numbered step per completed install stage.
func writeInstallReport(w io.Writer, report *installerDomain.InstallReport) {
	steps := newStepWriter(w, installSteps)

	if !report.PluginInstalled {
		return
	}
	steps.step("Installing SharedTOTP auth connector...")
	steps.detail("-> %s", report.PluginPath)

	switch {
	case report.SecretKept:
		steps.step("TOTP secret already exists at %s, skipping generation.", report.SecretPath)
		steps.detail("To regenerate: %s --gen-secret", ProgramName)
	case report.Secret != nil:
		steps.step("Generating TOTP secret...")
		writeSecret(w, report.Secret, "      ")
		_, _ = fmt.Fprintln(w)
	default:
		return
	}

	if report.Config == nil {
		return
	}
	steps.step("Updating %s (adding authserver, setting zone)...", report.ConfigPath)
	if report.Config.AuthServerCreated {
		steps.detail("Added SharedTOTP authserver: %s", report.Config.AuthServerName)
	} else {
		steps.detail("SharedTOTP authserver already exists: %s", report.Config.AuthServerName)
	}
	for _, zone := range report.Config.Zones {
		if zone.Previous != zone.Current {
			steps.detail("Updated zone authservers: %s -> %s", zone.Previous, zone.Current)
		}
	}
	if len(report.Config.Zones) == 0 {
		steps.detail("No captive portal zones configured")
	}

	steps.step("Embedding custom portal template in %s...", report.ConfigPath)
	if report.Template != nil {
		steps.detail("Template embedded (UUID: %s, %s)", report.Config.TemplateID, describePackage(report.Template))
	}
	if report.Config.TemplatesReplaced > 0 {
		steps.detail("Replaced %d existing template(s)", report.Config.TemplatesReplaced)
	}
	if report.BackupPath != "" {
		steps.detail("Backup written to %s", report.BackupPath)
	}
	if !report.ConfigWritten {
		return
	}
	steps.detail("%s updated successfully", report.ConfigPath)

	steps.step("Reloading templates and restarting captive portal...")
	if !report.ServiceReloaded {
		steps.detail("Reload failed, run the reload manually once the cause is fixed")
	}
}
