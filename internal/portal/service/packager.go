package service

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/zeebo/blake3"

	"github.com/CallMeGwei/captive-portal-totp/internal/fsutil"
	portalDomain "github.com/CallMeGwei/captive-portal-totp/internal/portal/domain"
)

// ArchiveFileMode is the permission of a standalone archive written to disk.
const ArchiveFileMode fs.FileMode = 0o644

// ZipPackager implements Packager with deflate-compressed zip archives.
type ZipPackager struct {
	sourceDir string
	assets    []portalDomain.Asset
	logger    *slog.Logger
}

// NewZipPackager creates a packager reading portalDomain.Assets below sourceDir.
func NewZipPackager(sourceDir string, logger *slog.Logger) *ZipPackager {
	return &ZipPackager{
		sourceDir: sourceDir,
		assets:    portalDomain.Assets,
		logger:    logger,
	}
}

// Pack reads every asset and compresses it into a new archive. A missing asset
// aborts packing; no partial archive is ever returned.
func (p *ZipPackager) Pack(ctx context.Context) (*portalDomain.TemplateArchive, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	hasher := blake3.New()

	for _, asset := range p.assets {
		content, modified, err := p.readAsset(asset)
		if err != nil {
			return nil, err
		}

		header := &zip.FileHeader{
			Name:     asset.ArchivePath,
			Method:   zip.Deflate,
			Modified: modified,
		}
		w, err := zw.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("failed to add %s to archive: %w", asset.ArchivePath, err)
		}
		if _, err := w.Write(content); err != nil {
			return nil, fmt.Errorf("failed to compress %s: %w", asset.ArchivePath, err)
		}

		_, _ = hasher.Write([]byte(asset.ArchivePath))
		_, _ = hasher.Write([]byte{0})
		_, _ = hasher.Write(content)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	archive := &portalDomain.TemplateArchive{
		Data:   buf.Bytes(),
		Digest: hex.EncodeToString(hasher.Sum(nil)),
	}

	p.logger.DebugContext(ctx, "portal template packed",
		slog.Int("entries", len(p.assets)),
		slog.Int("size", archive.Size()),
		slog.String("digest", archive.Digest),
	)

	return archive, nil
}

// WriteArchive packs the assets and atomically writes the archive to path.
func (p *ZipPackager) WriteArchive(ctx context.Context, path string) (*portalDomain.TemplateArchive, error) {
	archive, err := p.Pack(ctx)
	if err != nil {
		return nil, err
	}

	if err := fsutil.WriteFileAtomic(path, archive.Data, ArchiveFileMode); err != nil {
		return nil, fmt.Errorf("failed to write template archive %s: %w", path, err)
	}

	p.logger.InfoContext(ctx, "portal template archive written",
		slog.String("path", path),
		slog.Int("size", archive.Size()),
	)

	return archive, nil
}

func (p *ZipPackager) readAsset(asset portalDomain.Asset) ([]byte, time.Time, error) {
	path := asset.SourcePath(p.sourceDir)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, time.Time{}, fmt.Errorf("%w: %s", portalDomain.ErrAssetNotFound, path)
		}
		return nil, time.Time{}, fmt.Errorf("failed to stat asset %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, time.Time{}, fmt.Errorf("%w: %s is not a regular file", portalDomain.ErrAssetNotFound, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to read asset %s: %w", path, err)
	}

	return content, info.ModTime(), nil
}
