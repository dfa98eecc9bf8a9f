// Package configctl invokes the appliance's service control command.
package configctl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	shlex "github.com/anmitsu/go-shlex"

	apperrors "github.com/CallMeGwei/captive-portal-totp/internal/errors"
)

// Control command arguments used after the configuration document changes.
var (
	ReloadTemplatesArgs = []string{"template", "reload", "OPNsense/Captiveportal"}
	RestartPortalArgs   = []string{"captiveportal", "restart"}
)

// ErrEmptyCommand indicates the configured control command has no program.
var ErrEmptyCommand = apperrors.Wrap(apperrors.ErrInvalidInput, "control command is empty")

// Runner runs one control command to completion.
type Runner interface {
	Run(ctx context.Context, args ...string) error
}

// ExecRunner runs the control command as a child process.
type ExecRunner struct {
	command []string
	output  *lockedWriter
	logger  *slog.Logger
}

// lockedWriter serializes writes from the child's stdout and stderr copiers,
// which os/exec runs concurrently when the destination is not a file.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// NewExecRunner parses command with POSIX shell quoting rules, so a value such
// as "sudo configctl" works. Child stdout and stderr are copied to output.
func NewExecRunner(command string, output io.Writer, logger *slog.Logger) (*ExecRunner, error) {
	parts, err := shlex.Split(command, true)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid control command %q: %v", command, err)
	}
	if len(parts) == 0 {
		return nil, ErrEmptyCommand
	}
	if output == nil {
		output = io.Discard
	}
	return &ExecRunner{command: parts, output: &lockedWriter{w: output}, logger: logger}, nil
}

// Command returns the parsed program and leading arguments.
func (r *ExecRunner) Command() []string {
	return append([]string(nil), r.command...)
}

// Run executes the control command with args appended and waits for it to
// exit. A non-zero exit status is an ErrExternalCommand error. Nothing is
// retried.
func (r *ExecRunner) Run(ctx context.Context, args ...string) error {
	argv := append(r.Command(), args...)
	line := strings.Join(argv, " ")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = r.output
	cmd.Stderr = io.MultiWriter(r.output, &stderr)

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			r.logger.ErrorContext(ctx, "control command failed",
				slog.String("command", line),
				slog.Int("exit_code", exitErr.ExitCode()),
				slog.String("stderr", strings.TrimSpace(stderr.String())),
				slog.Duration("duration", duration),
			)
			return fmt.Errorf("%w: %s exited with status %d", apperrors.ErrExternalCommand, line, exitErr.ExitCode())
		}
		return fmt.Errorf("%w: %s: %v", apperrors.ErrExternalCommand, line, err)
	}

	r.logger.InfoContext(ctx, "control command completed",
		slog.String("command", line),
		slog.Duration("duration", duration),
	)

	return nil
}
