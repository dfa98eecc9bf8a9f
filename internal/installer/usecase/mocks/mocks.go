// Package mocks provides mock implementations for testing the installer use case and its callers.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	applianceDomain "github.com/CallMeGwei/captive-portal-totp/internal/appliance/domain"
	installerDomain "github.com/CallMeGwei/captive-portal-totp/internal/installer/domain"
	portalDomain "github.com/CallMeGwei/captive-portal-totp/internal/portal/domain"
	secretDomain "github.com/CallMeGwei/captive-portal-totp/internal/secret/domain"
)

// MockDocumentRepository is a mock implementation of DocumentRepository.
type MockDocumentRepository struct {
	mock.Mock
}

// Load mocks the Load method of DocumentRepository.
func (m *MockDocumentRepository) Load(ctx context.Context) (*applianceDomain.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*applianceDomain.Document), args.Error(1)
}

// Save mocks the Save method of DocumentRepository.
func (m *MockDocumentRepository) Save(ctx context.Context, doc *applianceDomain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

// Path mocks the Path method of DocumentRepository.
func (m *MockDocumentRepository) Path() string {
	args := m.Called()
	return args.String(0)
}

// MockSnapshotter is a mock implementation of Snapshotter.
type MockSnapshotter struct {
	mock.Mock
}

// Snapshot mocks the Snapshot method of Snapshotter.
func (m *MockSnapshotter) Snapshot(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

// MockSecretManager is a mock implementation of SecretManager.
type MockSecretManager struct {
	mock.Mock
}

// Generate mocks the Generate method of SecretManager.
func (m *MockSecretManager) Generate(ctx context.Context) (*secretDomain.Secret, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretDomain.Secret), args.Error(1)
}

// Exists mocks the Exists method of SecretManager.
func (m *MockSecretManager) Exists() (bool, error) {
	args := m.Called()
	return args.Bool(0), args.Error(1)
}

// Remove mocks the Remove method of SecretManager.
func (m *MockSecretManager) Remove() (bool, error) {
	args := m.Called()
	return args.Bool(0), args.Error(1)
}

// Path mocks the Path method of SecretManager.
func (m *MockSecretManager) Path() string {
	args := m.Called()
	return args.String(0)
}

// MockPackager is a mock implementation of Packager.
type MockPackager struct {
	mock.Mock
}

// Pack mocks the Pack method of Packager.
func (m *MockPackager) Pack(ctx context.Context) (*portalDomain.TemplateArchive, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portalDomain.TemplateArchive), args.Error(1)
}

// WriteArchive mocks the WriteArchive method of Packager.
func (m *MockPackager) WriteArchive(ctx context.Context, path string) (*portalDomain.TemplateArchive, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portalDomain.TemplateArchive), args.Error(1)
}

// MockControlRunner is a mock implementation of ControlRunner.
type MockControlRunner struct {
	mock.Mock
}

// Run mocks the Run method of ControlRunner. Arguments are recorded as a
// single []string so expectations can match the full command line.
func (m *MockControlRunner) Run(ctx context.Context, args ...string) error {
	called := m.Called(ctx, args)
	return called.Error(0)
}

// MockInstallerUseCase is a mock implementation of InstallerUseCase.
type MockInstallerUseCase struct {
	mock.Mock
}

// Install mocks the Install method of InstallerUseCase.
func (m *MockInstallerUseCase) Install(ctx context.Context) (*installerDomain.InstallReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*installerDomain.InstallReport), args.Error(1)
}

// Remove mocks the Remove method of InstallerUseCase.
func (m *MockInstallerUseCase) Remove(ctx context.Context) (*installerDomain.RemoveReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*installerDomain.RemoveReport), args.Error(1)
}

// RegenerateSecret mocks the RegenerateSecret method of InstallerUseCase.
func (m *MockInstallerUseCase) RegenerateSecret(ctx context.Context) (*installerDomain.SecretReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*installerDomain.SecretReport), args.Error(1)
}

// BuildOfflinePackage mocks the BuildOfflinePackage method of InstallerUseCase.
func (m *MockInstallerUseCase) BuildOfflinePackage(ctx context.Context) (*installerDomain.PackageReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*installerDomain.PackageReport), args.Error(1)
}
