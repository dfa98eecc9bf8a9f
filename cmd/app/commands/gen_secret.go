package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	installerUsecase "github.com/CallMeGwei/captive-portal-totp/internal/installer/usecase"
)

// RunGenerateSecret replaces the TOTP secret and prints the new secret, its
// provisioning URI and the current code. Authenticator apps set up with the
// previous secret must be provisioned again.
func RunGenerateSecret(
	ctx context.Context,
	installerUseCase installerUsecase.InstallerUseCase,
	logger *slog.Logger,
	writer io.Writer,
) error {
	logger.Info("regenerating TOTP secret")

	report, err := installerUseCase.RegenerateSecret(ctx)
	if err != nil {
		return fmt.Errorf("failed to regenerate TOTP secret: %w", err)
	}

	writeSecret(writer, report, "")
	writeLines(writer, "", "Re-provision every authenticator app with the new secret.")

	logger.Info("TOTP secret regenerated", slog.String("path", report.Path))
	return nil
}
