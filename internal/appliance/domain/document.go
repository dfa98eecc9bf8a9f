// Package domain models the parts of the appliance configuration document that
// the captive portal TOTP installer reads and rewrites.
//
// Document wraps a generic XML tree and exposes typed accessors for the
// authserver entries, the captive portal zones and the portal templates.
// Everything else in the tree is carried through untouched, including element
// order, comments and unknown sections.
package domain

import (
	"github.com/beevik/etree"
)

// Document is the appliance configuration tree.
type Document struct {
	tree *etree.Document
}

// NewDocument wraps an already parsed tree. The tree must have a root element.
// Serialization escapes only the characters XML requires; quotes in text are
// written literally.
func NewDocument(tree *etree.Document) (*Document, error) {
	if tree == nil || tree.Root() == nil {
		return nil, ErrMissingRoot
	}
	tree.WriteSettings.CanonicalText = true
	tree.WriteSettings.CanonicalAttrVal = true
	return &Document{tree: tree}, nil
}

// ParseDocument parses a serialized configuration document.
func ParseDocument(data []byte) (*Document, error) {
	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(data); err != nil {
		return nil, err
	}
	return NewDocument(tree)
}

// Tree returns the underlying XML tree for serialization.
func (d *Document) Tree() *etree.Document {
	return d.tree
}

// Bytes serializes the document.
func (d *Document) Bytes() ([]byte, error) {
	return d.tree.WriteToBytes()
}

// System returns the system section.
func (d *Document) System() (*etree.Element, error) {
	system := d.tree.Root().SelectElement(tagSystem)
	if system == nil {
		return nil, ErrMissingSystem
	}
	return system, nil
}

// CaptivePortal returns the captiveportal section.
func (d *Document) CaptivePortal() (*etree.Element, error) {
	cp := d.tree.Root().FindElement(pathCaptivePortal)
	if cp == nil {
		return nil, ErrMissingCaptivePortal
	}
	return cp, nil
}

// CheckPreconditions reports whether both sections touched by install and
// remove are present.
func (d *Document) CheckPreconditions() error {
	if _, err := d.System(); err != nil {
		return err
	}
	if _, err := d.CaptivePortal(); err != nil {
		return err
	}
	return nil
}

// AuthServers returns every authserver entry of the system section in
// document order.
func (d *Document) AuthServers() []*AuthServer {
	system, err := d.System()
	if err != nil {
		return nil
	}
	elements := system.SelectElements(tagAuthServer)
	servers := make([]*AuthServer, 0, len(elements))
	for _, el := range elements {
		servers = append(servers, &AuthServer{el: el})
	}
	return servers
}

// Zones returns every captive portal zone in document order.
func (d *Document) Zones() []*Zone {
	cp, err := d.CaptivePortal()
	if err != nil {
		return nil
	}
	zones := cp.SelectElement(tagZones)
	if zones == nil {
		return nil
	}
	elements := zones.SelectElements(tagZone)
	result := make([]*Zone, 0, len(elements))
	for _, el := range elements {
		result = append(result, &Zone{el: el})
	}
	return result
}

// Templates returns every portal template entry in document order.
func (d *Document) Templates() []*Template {
	cp, err := d.CaptivePortal()
	if err != nil {
		return nil
	}
	templates := cp.SelectElement(tagTemplates)
	if templates == nil {
		return nil
	}
	elements := templates.SelectElements(tagTemplate)
	result := make([]*Template, 0, len(elements))
	for _, el := range elements {
		result = append(result, &Template{el: el})
	}
	return result
}

// AuthServer is one authserver entry of the system section.
type AuthServer struct {
	el *etree.Element
}

// RefID returns the entry's reference id.
func (a *AuthServer) RefID() string {
	return childText(a.el, tagAuthRefID)
}

// Type returns the entry's backend type.
func (a *AuthServer) Type() string {
	return childText(a.el, tagAuthType)
}

// Name returns the entry's display name, or "" if it has none.
func (a *AuthServer) Name() string {
	return childText(a.el, tagAuthName)
}

// IsSharedTOTP reports whether the entry is served by the TOTP plugin.
func (a *AuthServer) IsSharedTOTP() bool {
	return a.Type() == AuthServerTypeSharedTOTP
}

// Zone is one captive portal zone.
type Zone struct {
	el *etree.Element
}

// AuthServers returns the zone's authserver binding.
func (z *Zone) AuthServers() string {
	return childText(z.el, tagZoneAuth)
}

// HasAuthServers reports whether the zone carries an authserver binding element.
func (z *Zone) HasAuthServers() bool {
	return z.el.SelectElement(tagZoneAuth) != nil
}

// SetAuthServers binds the zone to the named authserver, creating the binding
// element if the zone has none.
func (z *Zone) SetAuthServers(name string) {
	ensureChild(z.el, tagZoneAuth).SetText(name)
}

// Template returns the zone's template reference.
func (z *Zone) Template() string {
	return childText(z.el, tagZoneTemplate)
}

// HasTemplate reports whether the zone carries a template reference element.
func (z *Zone) HasTemplate() bool {
	return z.el.SelectElement(tagZoneTemplate) != nil
}

// SetTemplate points the zone at a template id, creating the reference
// element if the zone has none.
func (z *Zone) SetTemplate(id string) {
	ensureChild(z.el, tagZoneTemplate).SetText(id)
}

// Template is one portal template entry.
type Template struct {
	el *etree.Element
}

// UUID returns the template identifier.
func (t *Template) UUID() string {
	return t.el.SelectAttrValue(attrTemplateUUID, "")
}

// FileID returns the template file identifier.
func (t *Template) FileID() string {
	return childText(t.el, tagTemplateFile)
}

// Name returns the template display name.
func (t *Template) Name() string {
	return childText(t.el, tagTemplateName)
}

// Content returns the embedded base64 archive.
func (t *Template) Content() string {
	return childText(t.el, tagTemplateData)
}

func childText(el *etree.Element, tag string) string {
	child := el.SelectElement(tag)
	if child == nil {
		return ""
	}
	return child.Text()
}

func ensureChild(el *etree.Element, tag string) *etree.Element {
	if child := el.SelectElement(tag); child != nil {
		return child
	}
	return el.CreateElement(tag)
}
