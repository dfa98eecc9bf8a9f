package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	installerUsecase "github.com/CallMeGwei/captive-portal-totp/internal/installer/usecase"
)

// RunBuildPackage writes the portal template archive for manual upload through
// the appliance's web interface.
func RunBuildPackage(
	ctx context.Context,
	installerUseCase installerUsecase.InstallerUseCase,
	logger *slog.Logger,
	writer io.Writer,
) error {
	report, err := installerUseCase.BuildOfflinePackage(ctx)
	if err != nil {
		return fmt.Errorf("failed to build template package: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "Created %s (%s)\n", report.Path, describePackage(report))

	logger.Info("template package built",
		slog.String("path", report.Path),
		slog.Int("size", report.Size),
		slog.String("digest", report.Digest),
	)
	return nil
}
