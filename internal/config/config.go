// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/joho/godotenv"

	customValidation "github.com/CallMeGwei/captive-portal-totp/internal/validation"
)

// Config holds all application configuration.
type Config struct {
	// ConfigXMLPath is the appliance's persisted system configuration document.
	ConfigXMLPath string

	// SecretPath is where the base32 TOTP secret is stored for the auth plugin.
	SecretPath string
	// SecretGroup is the service group granted read access to the secret file.
	SecretGroup string

	// AuthConnectorDest is where the auth plugin file is copied to.
	AuthConnectorDest string

	// SourceDir holds the plugin file and the portal assets shipped with the tool.
	SourceDir string
	// TemplateArchiveName is the file name of the offline template package.
	TemplateArchiveName string

	// ConfigctlCommand is the control command prefix; it is shell-split so a
	// wrapper such as "sudo configctl" is accepted.
	ConfigctlCommand string

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsTextfilePath is the node_exporter textfile the metrics are written to.
	MetricsTextfilePath string
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		ConfigXMLPath: env.GetString("CONFIG_XML_PATH", "/conf/config.xml"),

		SecretPath:  env.GetString("TOTP_SECRET_PATH", "/usr/local/etc/captiveportal_totp.conf"),
		SecretGroup: env.GetString("TOTP_SECRET_GROUP", "wwwonly"),

		AuthConnectorDest: env.GetString(
			"AUTH_CONNECTOR_DEST",
			"/usr/local/opnsense/mvc/app/library/OPNsense/Auth/SharedTOTP.php",
		),

		SourceDir:           env.GetString("SOURCE_DIR", executableDir()),
		TemplateArchiveName: env.GetString("TEMPLATE_ARCHIVE_NAME", "portal_template.zip"),

		ConfigctlCommand: env.GetString("CONFIGCTL_COMMAND", "configctl"),

		LogLevel: env.GetString("LOG_LEVEL", "info"),

		MetricsEnabled:   env.GetBool("METRICS_ENABLED", false),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "captive_portal_totp"),
		MetricsTextfilePath: env.GetString(
			"METRICS_TEXTFILE_PATH",
			"/var/tmp/node_exporter/captive_portal_totp.prom",
		),
	}
}

// Validate checks the loaded configuration. Errors wrap ErrInvalidInput.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.ConfigXMLPath, validation.Required, customValidation.AbsolutePath),
		validation.Field(&c.SecretPath, validation.Required, customValidation.AbsolutePath),
		validation.Field(&c.SecretGroup, validation.Required, customValidation.GroupName),
		validation.Field(&c.AuthConnectorDest, validation.Required, customValidation.AbsolutePath),
		validation.Field(&c.SourceDir, validation.Required, customValidation.NotBlank),
		validation.Field(&c.TemplateArchiveName,
			validation.Required,
			customValidation.NoWhitespace,
			customValidation.FileName,
		),
		validation.Field(&c.ConfigctlCommand, validation.Required, customValidation.NotBlank),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.MetricsNamespace, validation.When(c.MetricsEnabled, validation.Required)),
		validation.Field(&c.MetricsTextfilePath,
			validation.When(c.MetricsEnabled, validation.Required, customValidation.AbsolutePath),
		),
	)
	return customValidation.WrapValidationError(err)
}

// TemplateArchivePath returns where the offline template package is written.
func (c *Config) TemplateArchivePath() string {
	return filepath.Join(c.SourceDir, c.TemplateArchiveName)
}

// AuthConnectorSource returns the auth plugin file shipped next to the tool.
func (c *Config) AuthConnectorSource() string {
	return filepath.Join(c.SourceDir, "SharedTOTP.php")
}

// executableDir returns the directory holding the running binary, falling back
// to the working directory when it cannot be resolved.
func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
