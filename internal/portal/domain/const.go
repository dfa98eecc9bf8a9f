package domain

import "path/filepath"

// TemplateName is the display name of the managed captive portal template.
const TemplateName = "TOTP Dark Portal"

// DefaultArchiveName is the file name used for the standalone archive.
const DefaultArchiveName = "portal_template.zip"

// Asset maps a source file below the source directory to its archive path.
type Asset struct {
	Source      string
	ArchivePath string
}

// SourcePath returns the absolute location of the asset below dir.
func (a Asset) SourcePath(dir string) string {
	return filepath.Join(dir, filepath.FromSlash(a.Source))
}

// Assets lists the files bundled into every template archive, in archive order.
var Assets = []Asset{
	{Source: "portal/index.html", ArchivePath: "index.html"},
	{Source: "portal/css/signin.css", ArchivePath: "css/signin.css"},
}
