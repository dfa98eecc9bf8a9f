package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	portalDomain "github.com/CallMeGwei/captive-portal-totp/internal/portal/domain"
)

// refIDSuffixLen is the number of uuid hex digits appended to the refid.
const refIDSuffixLen = 5

// Identifiers carries the fresh ids an install assigns.
type Identifiers struct {
	// RefID is used only if a new authserver entry is created.
	RefID string
	// TemplateID identifies the embedded template and every zone reference to it.
	TemplateID string
}

// NewIdentifiers generates identifiers for an install happening at now.
func NewIdentifiers(now time.Time) Identifiers {
	return Identifiers{
		RefID:      NewRefID(now, uuid.New()),
		TemplateID: uuid.NewString(),
	}
}

// NewRefID builds an authserver refid from the Unix time in lowercase hex and
// the first hex digits of id. The value only has to be unique.
func NewRefID(now time.Time, id uuid.UUID) string {
	hexID := strings.ReplaceAll(id.String(), "-", "")
	return strconv.FormatInt(now.Unix(), 16) + hexID[:refIDSuffixLen]
}

// ZoneBinding records a zone's authserver binding before it was overwritten.
type ZoneBinding struct {
	Previous string
	Current  string
}

// InstallResult describes what Install changed.
type InstallResult struct {
	AuthServerName    string
	AuthServerCreated bool
	Zones             []ZoneBinding
	TemplateID        string
	TemplatesReplaced int
}

// Install moves the document into the TOTP-Auth state.
//
// An existing sharedtotp authserver is reused and never duplicated. Every zone
// is bound to that authserver and to a freshly embedded template, overwriting
// whatever binding an operator configured. All entries in the templates
// collection are replaced by the single new template. content is the base64
// archive to embed.
func Install(doc *Document, content string, ids Identifiers) (*InstallResult, error) {
	if err := doc.CheckPreconditions(); err != nil {
		return nil, err
	}
	if content == "" {
		return nil, ErrMissingTemplateContent
	}

	result := &InstallResult{TemplateID: ids.TemplateID}

	name, created, err := ensureSharedTOTPAuthServer(doc, ids.RefID)
	if err != nil {
		return nil, err
	}
	result.AuthServerName = name
	result.AuthServerCreated = created

	for _, zone := range doc.Zones() {
		result.Zones = append(result.Zones, ZoneBinding{Previous: zone.AuthServers(), Current: name})
		zone.SetAuthServers(name)
	}

	replaced, err := replaceTemplates(doc, content, ids.TemplateID)
	if err != nil {
		return nil, err
	}
	result.TemplatesReplaced = replaced

	for _, zone := range doc.Zones() {
		zone.SetTemplate(ids.TemplateID)
	}

	return result, nil
}

// RemoveResult describes what Remove changed.
type RemoveResult struct {
	ZonesReset         int
	TemplatesRemoved   int
	AuthServersRemoved int
}

// Remove moves the document back into the Voucher-Auth state.
//
// Every zone is rebound to the voucher authserver and its template reference
// cleared. The whole templates collection is emptied, including templates
// this tool did not create. Every sharedtotp authserver is removed. Zones
// without a binding element are left without one.
func Remove(doc *Document) (*RemoveResult, error) {
	if err := doc.CheckPreconditions(); err != nil {
		return nil, err
	}

	result := &RemoveResult{}

	for _, zone := range doc.Zones() {
		if zone.HasAuthServers() {
			zone.SetAuthServers(VoucherAuthServerName)
		}
		if zone.HasTemplate() {
			zone.SetTemplate("")
		}
		result.ZonesReset++
	}

	cp, err := doc.CaptivePortal()
	if err != nil {
		return nil, err
	}
	if templates := cp.SelectElement(tagTemplates); templates != nil {
		result.TemplatesRemoved = clearChildElements(templates)
	}

	system, err := doc.System()
	if err != nil {
		return nil, err
	}
	for _, server := range doc.AuthServers() {
		if server.IsSharedTOTP() {
			system.RemoveChild(server.el)
			result.AuthServersRemoved++
		}
	}

	return result, nil
}

// ensureSharedTOTPAuthServer returns the display name of the sharedtotp
// authserver, creating the entry when none exists.
func ensureSharedTOTPAuthServer(doc *Document, refID string) (string, bool, error) {
	for _, server := range doc.AuthServers() {
		if !server.IsSharedTOTP() {
			continue
		}
		if name := server.Name(); name != "" {
			return name, false, nil
		}
		return DefaultAuthServerName, false, nil
	}

	system, err := doc.System()
	if err != nil {
		return "", false, err
	}
	entry := system.CreateElement(tagAuthServer)
	entry.CreateElement(tagAuthRefID).SetText(refID)
	entry.CreateElement(tagAuthType).SetText(AuthServerTypeSharedTOTP)
	entry.CreateElement(tagAuthName).SetText(DefaultAuthServerName)

	return DefaultAuthServerName, true, nil
}

// replaceTemplates empties the templates collection, creating it if needed,
// and inserts the managed template. Returns the number of entries removed.
func replaceTemplates(doc *Document, content, id string) (int, error) {
	cp, err := doc.CaptivePortal()
	if err != nil {
		return 0, err
	}

	templates := ensureChild(cp, tagTemplates)
	removed := clearChildElements(templates)

	entry := templates.CreateElement(tagTemplate)
	entry.CreateAttr(attrTemplateUUID, id)
	entry.CreateElement(tagTemplateFile).SetText(id)
	entry.CreateElement(tagTemplateName).SetText(portalDomain.TemplateName)
	entry.CreateElement(tagTemplateData).SetText(content)

	return removed, nil
}

// clearChildElements removes every child token of el and returns how many of
// them were elements.
func clearChildElements(el *etree.Element) int {
	removed := len(el.ChildElements())
	for len(el.Child) > 0 {
		el.RemoveChildAt(len(el.Child) - 1)
	}
	return removed
}
