// Package commands contains CLI command implementations for the application.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"

	installerDomain "github.com/CallMeGwei/captive-portal-totp/internal/installer/domain"
)

// ProgramName is the command operators run, used in printed hints.
const ProgramName = "captive-portal-totp"

// portalPageHint is where the appliance renders the first zone's portal page.
const portalPageHint = "head -5 /var/captiveportal/zone0/htdocs/index.html"

// IOTuple holds the writer commands print operator output to, allowing for
// testing.
type IOTuple struct {
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Writer: os.Stdout,
	}
}

// stepWriter prints numbered progress lines like "[2/5] ...".
type stepWriter struct {
	w     io.Writer
	total int
	n     int
}

func newStepWriter(w io.Writer, total int) *stepWriter {
	return &stepWriter{w: w, total: total}
}

func (s *stepWriter) step(format string, args ...any) {
	s.n++
	_, _ = fmt.Fprintf(s.w, "[%d/%d] %s\n", s.n, s.total, fmt.Sprintf(format, args...))
}

func (s *stepWriter) detail(format string, args ...any) {
	_, _ = fmt.Fprintf(s.w, "      %s\n", fmt.Sprintf(format, args...))
}

func writeLines(w io.Writer, lines ...string) {
	for _, line := range lines {
		_, _ = fmt.Fprintln(w, line)
	}
}

// writeSecret prints a freshly generated secret. This is the only place the
// secret and its provisioning URI leave the process.
func writeSecret(w io.Writer, report *installerDomain.SecretReport, indent string) {
	_, _ = fmt.Fprintf(w, "%sTOTP secret written to %s\n", indent, report.Path)
	_, _ = fmt.Fprintf(w, "%sTOTP Secret (base32): %s\n", indent, report.Secret.Value)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "%sotpauth URI (add to authenticator app):\n", indent)
	_, _ = fmt.Fprintf(w, "%s%s\n", indent, report.ProvisioningURI())
	if report.Code != "" {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintf(w, "%sCurrent code: %s\n", indent, report.Code)
	}
}

// describePackage renders size and digest of a template archive.
func describePackage(report *installerDomain.PackageReport) string {
	return fmt.Sprintf("%s, blake3 %s", humanize.Bytes(uint64(report.Size)), shortDigest(report.Digest))
}

func shortDigest(digest string) string {
	const n = 12
	if len(digest) <= n {
		return digest
	}
	return digest[:n]
}
