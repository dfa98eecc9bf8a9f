// Package integration provides end-to-end tests that run the installer actions
// through the application container against real files in a temporary
// appliance layout. The control command is replaced by echo.
package integration

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CallMeGwei/captive-portal-totp/internal/app"
	applianceDomain "github.com/CallMeGwei/captive-portal-totp/internal/appliance/domain"
	"github.com/CallMeGwei/captive-portal-totp/internal/config"
	secretDomain "github.com/CallMeGwei/captive-portal-totp/internal/secret/domain"
)

const voucherConfig = `<?xml version="1.0"?>
<opnsense>
  <system>
    <hostname>fw</hostname>
    <authserver>
      <refid>5f1e2d3c4b5a6</refid>
      <type>ldap</type>
      <name>Corp LDAP</name>
    </authserver>
  </system>
  <interfaces>
    <lan><if>igb1</if></lan>
  </interfaces>
  <captiveportal version="1.0.1">
    <zones>
      <zone uuid="9d0b6f2e-1c1d-4a55-8f6a-0e2d6c5b4a31">
        <enabled>1</enabled>
        <zoneid>0</zoneid>
        <interfaces>opt1</interfaces>
        <authservers>voucher server</authservers>
        <template/>
        <description>Guests</description>
      </zone>
    </zones>
    <templates/>
  </captiveportal>
</opnsense>
`

// integrationTestContext holds the temporary appliance layout.
type integrationTestContext struct {
	cfg    *config.Config
	output *bytes.Buffer
	now    time.Time
}

func currentGroup(t *testing.T) string {
	t.Helper()
	u, err := user.Current()
	require.NoError(t, err)
	g, err := user.LookupGroupId(u.Gid)
	if err != nil {
		t.Skipf("cannot resolve primary group: %v", err)
	}
	return g.Name
}

func setupIntegrationTest(t *testing.T) *integrationTestContext {
	t.Helper()
	if _, err := exec.LookPath("echo"); err != nil {
		t.Skipf("echo not available: %v", err)
	}

	root := t.TempDir()
	sourceDir := filepath.Join(root, "installer")
	confDir := filepath.Join(root, "conf")
	pluginDir := filepath.Join(root, "plugins")
	etcDir := filepath.Join(root, "etc")

	for _, dir := range []string{filepath.Join(sourceDir, "portal", "css"), confDir, pluginDir, etcDir} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "portal", "index.html"), []byte("<html>totp</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "portal", "css", "signin.css"), []byte("body{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "SharedTOTP.php"), []byte("<?php // plugin"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(confDir, "config.xml"), []byte(voucherConfig), 0o644))

	cfg := &config.Config{
		ConfigXMLPath:       filepath.Join(confDir, "config.xml"),
		SecretPath:          filepath.Join(etcDir, "captiveportal_totp.conf"),
		SecretGroup:         currentGroup(t),
		AuthConnectorDest:   filepath.Join(pluginDir, "SharedTOTP.php"),
		SourceDir:           sourceDir,
		TemplateArchiveName: "portal_template.zip",
		ConfigctlCommand:    "echo configctl",
		LogLevel:            "error",
		MetricsEnabled:      true,
		MetricsNamespace:    "captive_portal_totp",
		MetricsTextfilePath: filepath.Join(root, "metrics.prom"),
	}
	require.NoError(t, cfg.Validate())

	return &integrationTestContext{
		cfg:    cfg,
		output: &bytes.Buffer{},
		now:    time.Unix(1700000000, 0),
	}
}

// container builds a fresh container per action, as each CLI run does.
func (ictx *integrationTestContext) container() *app.Container {
	ictx.now = ictx.now.Add(time.Second)
	now := ictx.now
	return app.NewContainer(ictx.cfg,
		app.WithOutput(ictx.output),
		app.WithClock(func() time.Time { return now }),
	)
}

func (ictx *integrationTestContext) loadDocument(t *testing.T) *applianceDomain.Document {
	t.Helper()
	data, err := os.ReadFile(ictx.cfg.ConfigXMLPath)
	require.NoError(t, err)
	doc, err := applianceDomain.ParseDocument(data)
	require.NoError(t, err)
	return doc
}

func countSharedTOTP(doc *applianceDomain.Document) int {
	n := 0
	for _, server := range doc.AuthServers() {
		if server.IsSharedTOTP() {
			n++
		}
	}
	return n
}

func TestIntegration_InstallRemove_CompleteFlow(t *testing.T) {
	ictx := setupIntegrationTest(t)
	ctx := context.Background()

	// Install
	container := ictx.container()
	useCase, err := container.InstallerUseCase()
	require.NoError(t, err)

	report, err := useCase.Install(ctx)
	require.NoError(t, err)
	require.NoError(t, container.Shutdown(ctx))

	require.NotNil(t, report.Secret)
	assert.True(t, report.ServiceReloaded)
	assert.Equal(t,
		"configctl template reload OPNsense/Captiveportal\nconfigctl captiveportal restart\n",
		ictx.output.String(),
	)

	plugin, err := os.ReadFile(ictx.cfg.AuthConnectorDest)
	require.NoError(t, err)
	assert.Equal(t, "<?php // plugin", string(plugin))

	stored, err := os.ReadFile(ictx.cfg.SecretPath)
	require.NoError(t, err)
	assert.Equal(t, report.Secret.Secret.Value+"\n", string(stored))
	info, err := os.Stat(ictx.cfg.SecretPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	secret, err := secretDomain.ParseSecret(string(stored))
	require.NoError(t, err)
	raw, err := secret.Bytes()
	require.NoError(t, err)
	assert.Len(t, raw, secretDomain.SecretSize)

	doc := ictx.loadDocument(t)
	assert.Equal(t, 1, countSharedTOTP(doc))
	assert.Len(t, doc.AuthServers(), 2, "unrelated authservers are preserved")
	templates := doc.Templates()
	require.Len(t, templates, 1)
	assert.Equal(t, "TOTP Dark Portal", templates[0].Name())
	zones := doc.Zones()
	require.Len(t, zones, 1)
	assert.Equal(t, applianceDomain.DefaultAuthServerName, zones[0].AuthServers())
	assert.Equal(t, templates[0].UUID(), zones[0].Template())

	saved, err := os.ReadFile(ictx.cfg.ConfigXMLPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(saved), `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, string(saved), "<hostname>fw</hostname>")

	backup, err := os.ReadFile(report.BackupPath)
	require.NoError(t, err)
	assert.Equal(t, voucherConfig, string(backup))

	metricsData, err := os.ReadFile(ictx.cfg.MetricsTextfilePath)
	require.NoError(t, err)
	assert.Contains(t, string(metricsData), "captive_portal_totp_operations_total")

	// A second install reuses the authserver and keeps the secret.
	container = ictx.container()
	useCase, err = container.InstallerUseCase()
	require.NoError(t, err)

	report2, err := useCase.Install(ctx)
	require.NoError(t, err)
	assert.Nil(t, report2.Secret)
	assert.True(t, report2.SecretKept)
	assert.False(t, report2.Config.AuthServerCreated)
	assert.NotEqual(t, report.BackupPath, report2.BackupPath)

	doc = ictx.loadDocument(t)
	assert.Equal(t, 1, countSharedTOTP(doc))
	require.Len(t, doc.Templates(), 1)
	assert.Equal(t, doc.Templates()[0].UUID(), doc.Zones()[0].Template())

	stored2, err := os.ReadFile(ictx.cfg.SecretPath)
	require.NoError(t, err)
	assert.Equal(t, stored, stored2)

	// Remove
	container = ictx.container()
	useCase, err = container.InstallerUseCase()
	require.NoError(t, err)

	removeReport, err := useCase.Remove(ctx)
	require.NoError(t, err)
	assert.True(t, removeReport.PluginRemoved)
	assert.True(t, removeReport.SecretRemoved)

	doc = ictx.loadDocument(t)
	assert.Equal(t, 0, countSharedTOTP(doc))
	assert.Len(t, doc.AuthServers(), 1)
	assert.Empty(t, doc.Templates())
	assert.Equal(t, applianceDomain.VoucherAuthServerName, doc.Zones()[0].AuthServers())
	assert.Equal(t, "", doc.Zones()[0].Template())

	assert.NoFileExists(t, ictx.cfg.AuthConnectorDest)
	assert.NoFileExists(t, ictx.cfg.SecretPath)

	// Removing again is not an error.
	container = ictx.container()
	useCase, err = container.InstallerUseCase()
	require.NoError(t, err)

	removeReport, err = useCase.Remove(ctx)
	require.NoError(t, err)
	assert.False(t, removeReport.PluginRemoved)
	assert.False(t, removeReport.SecretRemoved)
}

func TestIntegration_BuildOfflinePackage(t *testing.T) {
	ictx := setupIntegrationTest(t)
	ctx := context.Background()

	useCase, err := ictx.container().InstallerUseCase()
	require.NoError(t, err)

	report, err := useCase.BuildOfflinePackage(ctx)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ictx.cfg.SourceDir, "portal_template.zip"), report.Path)

	reader, err := zip.OpenReader(report.Path)
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()

	names := make([]string, 0, len(reader.File))
	for _, f := range reader.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"index.html", "css/signin.css"}, names)
	assert.Equal(t, int64(report.Size), fileSize(t, report.Path))
}

func TestIntegration_RegenerateSecret(t *testing.T) {
	ictx := setupIntegrationTest(t)
	ctx := context.Background()

	useCase, err := ictx.container().InstallerUseCase()
	require.NoError(t, err)

	first, err := useCase.RegenerateSecret(ctx)
	require.NoError(t, err)
	second, err := useCase.RegenerateSecret(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, first.Secret.Value, second.Secret.Value)
	assert.Len(t, second.Code, secretDomain.Digits)

	stored, err := os.ReadFile(ictx.cfg.SecretPath)
	require.NoError(t, err)
	assert.Equal(t, second.Secret.Value+"\n", string(stored))
}

func TestIntegration_Install_MissingCaptivePortal(t *testing.T) {
	ictx := setupIntegrationTest(t)
	ctx := context.Background()

	original := "<?xml version=\"1.0\"?>\n<opnsense><system/></opnsense>\n"
	require.NoError(t, os.WriteFile(ictx.cfg.ConfigXMLPath, []byte(original), 0o644))

	useCase, err := ictx.container().InstallerUseCase()
	require.NoError(t, err)

	_, err = useCase.Install(ctx)
	require.ErrorIs(t, err, applianceDomain.ErrMissingCaptivePortal)

	data, err := os.ReadFile(ictx.cfg.ConfigXMLPath)
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
	assert.NoFileExists(t, ictx.cfg.AuthConnectorDest)
	assert.NoFileExists(t, ictx.cfg.SecretPath)

	entries, err := os.ReadDir(filepath.Dir(ictx.cfg.ConfigXMLPath))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no backup is taken")
}

func fileSize(t *testing.T, path string) int64 {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.Size()
}
