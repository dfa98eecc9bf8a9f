// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/CallMeGwei/captive-portal-totp/internal/appliance/repository"
	"github.com/CallMeGwei/captive-portal-totp/internal/backup"
	"github.com/CallMeGwei/captive-portal-totp/internal/config"
	"github.com/CallMeGwei/captive-portal-totp/internal/configctl"
	installerUsecase "github.com/CallMeGwei/captive-portal-totp/internal/installer/usecase"
	"github.com/CallMeGwei/captive-portal-totp/internal/metrics"
	portalService "github.com/CallMeGwei/captive-portal-totp/internal/portal/service"
	secretService "github.com/CallMeGwei/captive-portal-totp/internal/secret/service"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Output receives operator-facing text, including control command stderr.
	output io.Writer
	// Clock used for identifiers, backup names and one-time codes.
	now func() time.Time

	// Infrastructure
	logger          *slog.Logger
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Services
	documentRepository *repository.FileRepository
	backupGuard        *backup.Guard
	secretManager      *secretService.SecretManagerService
	packager           *portalService.ZipPackager
	controlRunner      *configctl.ExecRunner

	// Use Cases
	installerUseCase installerUsecase.InstallerUseCase

	// Initialization flags and mutex for thread-safety
	mu                     sync.Mutex
	loggerInit             sync.Once
	metricsProviderInit    sync.Once
	businessMetricsInit    sync.Once
	documentRepositoryInit sync.Once
	backupGuardInit        sync.Once
	secretManagerInit      sync.Once
	packagerInit           sync.Once
	controlRunnerInit      sync.Once
	installerUseCaseInit   sync.Once
	initErrors             map[string]error
}

// Option customizes a Container.
type Option func(*Container)

// WithOutput sets the writer control command output is forwarded to.
func WithOutput(w io.Writer) Option {
	return func(c *Container) {
		c.output = w
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		c.now = now
	}
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config, opts ...Option) *Container {
	c := &Container{
		config:     cfg,
		output:     os.Stdout,
		now:        time.Now,
		initErrors: make(map[string]error),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// MetricsProvider returns the metrics provider.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = metrics.NewProvider()
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder.
// A no-op implementation is returned when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// DocumentRepository returns the configuration document repository.
func (c *Container) DocumentRepository() *repository.FileRepository {
	c.documentRepositoryInit.Do(func() {
		c.documentRepository = repository.NewFileRepository(c.config.ConfigXMLPath, c.Logger())
	})
	return c.documentRepository
}

// BackupGuard returns the configuration backup guard.
func (c *Container) BackupGuard() *backup.Guard {
	c.backupGuardInit.Do(func() {
		c.backupGuard = backup.NewGuard(c.now, c.Logger())
	})
	return c.backupGuard
}

// SecretManager returns the secret file manager.
func (c *Container) SecretManager() *secretService.SecretManagerService {
	c.secretManagerInit.Do(func() {
		c.secretManager = secretService.NewSecretManager(
			c.config.SecretPath,
			c.config.SecretGroup,
			nil,
			nil,
			c.Logger(),
		)
	})
	return c.secretManager
}

// Packager returns the portal template packager.
func (c *Container) Packager() *portalService.ZipPackager {
	c.packagerInit.Do(func() {
		c.packager = portalService.NewZipPackager(c.config.SourceDir, c.Logger())
	})
	return c.packager
}

// ControlRunner returns the service control command runner.
func (c *Container) ControlRunner() (*configctl.ExecRunner, error) {
	var err error
	c.controlRunnerInit.Do(func() {
		c.controlRunner, err = configctl.NewExecRunner(c.config.ConfigctlCommand, c.output, c.Logger())
		if err != nil {
			c.initErrors["controlRunner"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["controlRunner"]; exists {
		return nil, storedErr
	}
	return c.controlRunner, nil
}

// InstallerUseCase returns the installer use case.
func (c *Container) InstallerUseCase() (installerUsecase.InstallerUseCase, error) {
	var err error
	c.installerUseCaseInit.Do(func() {
		c.installerUseCase, err = c.initInstallerUseCase()
		if err != nil {
			c.initErrors["installerUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["installerUseCase"]; exists {
		return nil, storedErr
	}
	return c.installerUseCase, nil
}

// Shutdown writes the metrics textfile, if metrics were collected, and
// releases the meter provider. It should be called when the application exits.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.metricsProvider != nil {
		if c.config.MetricsEnabled {
			if err := c.metricsProvider.WriteTextfile(c.config.MetricsTextfilePath); err != nil {
				shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics textfile: %w", err))
			}
		}
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates a JSON logger on stderr. Stdout is reserved for the
// operator-facing report.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	if !c.config.MetricsEnabled {
		return metrics.NewNoOpBusinessMetrics(), nil
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}

	businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return businessMetrics, nil
}

// initInstallerUseCase creates the installer use case with all its dependencies.
func (c *Container) initInstallerUseCase() (installerUsecase.InstallerUseCase, error) {
	runner, err := c.ControlRunner()
	if err != nil {
		return nil, fmt.Errorf("failed to get control runner for installer use case: %w", err)
	}

	baseUseCase := installerUsecase.NewInstallerUseCase(
		c.DocumentRepository(),
		c.BackupGuard(),
		c.SecretManager(),
		c.Packager(),
		runner,
		installerUsecase.Paths{
			PluginSource: c.config.AuthConnectorSource(),
			PluginDest:   c.config.AuthConnectorDest,
			ArchivePath:  c.config.TemplateArchivePath(),
		},
		c.now,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for installer use case: %w", err)
		}
		return installerUsecase.NewInstallerUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
