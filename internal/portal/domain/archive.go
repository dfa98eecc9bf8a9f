// Package domain defines the captive portal template archive and the assets it bundles.
package domain

import "encoding/base64"

// TemplateArchive is a zip archive holding the portal assets.
//
// Data differs between runs because entry metadata carries timestamps. Digest
// is computed over entry names and contents only, so it is stable for
// unchanged assets.
type TemplateArchive struct {
	Data   []byte
	Digest string
}

// Size returns the archive length in bytes.
func (a *TemplateArchive) Size() int {
	return len(a.Data)
}

// Encoded returns the archive as padded standard base64, the form stored in
// the template content element.
func (a *TemplateArchive) Encoded() (string, error) {
	if len(a.Data) == 0 {
		return "", ErrEmptyArchive
	}
	return base64.StdEncoding.EncodeToString(a.Data), nil
}
