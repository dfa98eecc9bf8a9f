package usecase

import (
	"context"
	"time"

	installerDomain "github.com/CallMeGwei/captive-portal-totp/internal/installer/domain"
	"github.com/CallMeGwei/captive-portal-totp/internal/metrics"
)

const metricsDomain = "installer"

// installerUseCaseWithMetrics decorates InstallerUseCase with metrics instrumentation.
type installerUseCaseWithMetrics struct {
	next    InstallerUseCase
	metrics metrics.BusinessMetrics
}

// NewInstallerUseCaseWithMetrics wraps an InstallerUseCase with metrics recording.
func NewInstallerUseCaseWithMetrics(useCase InstallerUseCase, m metrics.BusinessMetrics) InstallerUseCase {
	return &installerUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Install records metrics for install operations.
func (u *installerUseCaseWithMetrics) Install(ctx context.Context) (*installerDomain.InstallReport, error) {
	start := time.Now()
	report, err := u.next.Install(ctx)
	u.record(ctx, "install", start, err)
	return report, err
}

// Remove records metrics for remove operations.
func (u *installerUseCaseWithMetrics) Remove(ctx context.Context) (*installerDomain.RemoveReport, error) {
	start := time.Now()
	report, err := u.next.Remove(ctx)
	u.record(ctx, "remove", start, err)
	return report, err
}

// RegenerateSecret records metrics for secret regeneration.
func (u *installerUseCaseWithMetrics) RegenerateSecret(ctx context.Context) (*installerDomain.SecretReport, error) {
	start := time.Now()
	report, err := u.next.RegenerateSecret(ctx)
	u.record(ctx, "regenerate_secret", start, err)
	return report, err
}

// BuildOfflinePackage records metrics for offline package builds.
func (u *installerUseCaseWithMetrics) BuildOfflinePackage(ctx context.Context) (*installerDomain.PackageReport, error) {
	start := time.Now()
	report, err := u.next.BuildOfflinePackage(ctx)
	u.record(ctx, "build_package", start, err)
	return report, err
}

func (u *installerUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	u.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}
