package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/user"
	"strconv"

	"github.com/CallMeGwei/captive-portal-totp/internal/fsutil"
	secretDomain "github.com/CallMeGwei/captive-portal-totp/internal/secret/domain"
)

// SecretFileMode grants owner read/write and group read. Nothing else.
const SecretFileMode fs.FileMode = 0o640

// SecretManagerService implements SecretManager on a single file.
type SecretManagerService struct {
	path   string
	group  string
	owner  GroupOwner
	random io.Reader
	logger *slog.Logger
}

// NewSecretManager creates a SecretManagerService writing to path and granting
// read access to group. A nil owner uses the system group database; a nil
// random source uses crypto/rand.
func NewSecretManager(
	path, group string,
	owner GroupOwner,
	random io.Reader,
	logger *slog.Logger,
) *SecretManagerService {
	if owner == nil {
		owner = UnixGroupOwner{}
	}
	if random == nil {
		random = rand.Reader
	}
	return &SecretManagerService{
		path:   path,
		group:  group,
		owner:  owner,
		random: random,
		logger: logger,
	}
}

// Generate creates and persists a fresh 160-bit secret.
//
// Group ownership is applied to the temporary file before it replaces the
// secret file. If that fails ErrInsecureSecretStorage is returned and any
// existing secret is left as it was.
func (s *SecretManagerService) Generate(ctx context.Context) (*secretDomain.Secret, error) {
	raw := make([]byte, secretDomain.SecretSize)
	defer secretDomain.Zero(raw)

	if _, err := io.ReadFull(s.random, raw); err != nil {
		return nil, fmt.Errorf("failed to generate TOTP secret: %w", err)
	}

	secret, err := secretDomain.NewSecret(raw)
	if err != nil {
		return nil, err
	}

	var ownerErr error
	err = fsutil.WriteFileAtomicFunc(s.path, []byte(secret.Value+"\n"), SecretFileMode, func(tmpPath string) error {
		ownerErr = s.owner.SetGroup(tmpPath, s.group)
		return ownerErr
	})
	if ownerErr != nil {
		return nil, fmt.Errorf("%w: %s to group %s: %v", secretDomain.ErrInsecureSecretStorage, s.path, s.group, ownerErr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write TOTP secret: %w", err)
	}

	s.logger.InfoContext(ctx, "TOTP secret written",
		slog.String("path", s.path),
		slog.String("group", s.group),
		slog.String("mode", SecretFileMode.String()),
	)

	return secret, nil
}

// Exists reports whether the secret file is present.
func (s *SecretManagerService) Exists() (bool, error) {
	return fsutil.Exists(s.path)
}

// Remove deletes the secret file if present.
func (s *SecretManagerService) Remove() (bool, error) {
	return fsutil.RemoveIfExists(s.path)
}

// Path returns the secret file location.
func (s *SecretManagerService) Path() string {
	return s.path
}

// UnixGroupOwner resolves group names through the system group database and
// changes only the group of a file, leaving the owner as is.
type UnixGroupOwner struct{}

// SetGroup sets the group of path to the named group.
func (UnixGroupOwner) SetGroup(path, group string) error {
	g, err := user.LookupGroup(group)
	if err != nil {
		return fmt.Errorf("failed to look up group %s: %w", group, err)
	}
	gid, err := strconv.Atoi(g.Gid)
	if err != nil {
		return fmt.Errorf("invalid gid %q for group %s: %w", g.Gid, group, err)
	}
	if err := os.Chown(path, -1, gid); err != nil {
		return err
	}
	return os.Chmod(path, SecretFileMode)
}
