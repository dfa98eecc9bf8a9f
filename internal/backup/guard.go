// Package backup keeps a copy of the configuration document before it is
// overwritten.
//
// Backups are append-only. They are never read, rotated or removed by this
// program; restoring one is a manual operator action.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"time"

	"github.com/CallMeGwei/captive-portal-totp/internal/fsutil"
)

// maxCollisions bounds the counter search for a free backup name.
const maxCollisions = 1000

// ErrNoFreeName indicates every candidate backup name is already taken.
var ErrNoFreeName = errors.New("no free backup file name")

// Snapshotter copies a file aside before it is replaced.
type Snapshotter interface {
	Snapshot(ctx context.Context, path string) (string, error)
}

// Guard implements Snapshotter with timestamped sibling files.
type Guard struct {
	now    func() time.Time
	logger *slog.Logger
}

// NewGuard creates a Guard. A nil clock uses time.Now.
func NewGuard(now func() time.Time, logger *slog.Logger) *Guard {
	if now == nil {
		now = time.Now
	}
	return &Guard{now: now, logger: logger}
}

// Snapshot copies path to path.bak.<unix seconds> and returns the backup
// location. If a backup with that name already exists the name gets a .1, .2
// and so on suffix; an existing backup is never overwritten.
func (g *Guard) Snapshot(ctx context.Context, path string) (string, error) {
	base := Name(path, g.now())

	for i := 0; i <= maxCollisions; i++ {
		candidate := base
		if i > 0 {
			candidate = base + "." + strconv.Itoa(i)
		}

		err := fsutil.CopyNew(path, candidate)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to back up %s: %w", path, err)
		}

		g.logger.InfoContext(ctx, "configuration backup created",
			slog.String("path", path),
			slog.String("backup", candidate),
		)
		return candidate, nil
	}

	return "", fmt.Errorf("%w for %s", ErrNoFreeName, base)
}

// Name returns the primary backup name of path at t.
func Name(path string, t time.Time) string {
	return path + ".bak." + strconv.FormatInt(t.Unix(), 10)
}
