package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/beevik/etree"

	applianceDomain "github.com/CallMeGwei/captive-portal-totp/internal/appliance/domain"
	"github.com/CallMeGwei/captive-portal-totp/internal/fsutil"
)

const (
	xmlDeclTarget = "xml"
	xmlDeclInst   = `version="1.0" encoding="UTF-8"`

	// defaultFileMode applies when the document file is created rather than replaced.
	defaultFileMode fs.FileMode = 0o644
)

// FileRepository implements DocumentRepository on a single XML file.
type FileRepository struct {
	path   string
	logger *slog.Logger
}

// NewFileRepository creates a FileRepository for the document at path.
func NewFileRepository(path string, logger *slog.Logger) *FileRepository {
	return &FileRepository{
		path:   path,
		logger: logger,
	}
}

// Path returns the document file location.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads and parses the document file.
func (r *FileRepository) Load(ctx context.Context) (*applianceDomain.Document, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", applianceDomain.ErrConfigNotFound, r.path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", r.path, err)
	}

	doc, err := applianceDomain.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", applianceDomain.ErrMalformedConfig, r.path, err)
	}

	r.logger.DebugContext(ctx, "configuration document loaded",
		slog.String("path", r.path),
		slog.Int("size", len(data)),
	)

	return doc, nil
}

// Save writes doc over the document file atomically. The file keeps its
// permission bits and ownership, and always starts with a UTF-8 XML
// declaration.
func (r *FileRepository) Save(ctx context.Context, doc *applianceDomain.Document) error {
	ensureDeclaration(doc.Tree())

	data, err := doc.Bytes()
	if err != nil {
		return fmt.Errorf("failed to serialize configuration document: %w", err)
	}

	mode := defaultFileMode
	info, err := os.Stat(r.path)
	switch {
	case err == nil:
		mode = info.Mode().Perm()
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("failed to stat %s: %w", r.path, err)
	}

	if err := fsutil.WriteFileAtomic(r.path, data, mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", r.path, err)
	}

	if info != nil {
		if err := fsutil.CopyOwner(r.path, info); err != nil {
			return fmt.Errorf("failed to restore ownership of %s: %w", r.path, err)
		}
	}

	r.logger.InfoContext(ctx, "configuration document written",
		slog.String("path", r.path),
		slog.Int("size", len(data)),
	)

	return nil
}

// ensureDeclaration makes the first token of tree an XML declaration naming
// UTF-8, replacing whatever declaration was read.
func ensureDeclaration(tree *etree.Document) {
	for _, token := range tree.Child {
		if pi, ok := token.(*etree.ProcInst); ok && pi.Target == xmlDeclTarget {
			pi.Inst = xmlDeclInst
			return
		}
	}

	tree.InsertChildAt(0, etree.NewProcInst(xmlDeclTarget, xmlDeclInst))
	tree.InsertChildAt(1, etree.NewText("\n"))
}
