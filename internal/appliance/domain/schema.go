package domain

// Element and attribute names of the appliance configuration document.
// Nothing outside this file refers to a tag by its literal name.
const (
	tagSystem        = "system"
	tagAuthServer    = "authserver"
	tagAuthRefID     = "refid"
	tagAuthType      = "type"
	tagAuthName      = "name"
	tagZones         = "zones"
	tagZone          = "zone"
	tagZoneAuth      = "authservers"
	tagZoneTemplate  = "template"
	tagTemplates     = "templates"
	tagTemplate      = "template"
	tagTemplateFile  = "fileid"
	tagTemplateName  = "name"
	tagTemplateData  = "content"
	attrTemplateUUID = "uuid"

	// captiveportal lives below the vendor section on current releases, so it
	// is located anywhere below the root.
	pathCaptivePortal = ".//captiveportal"
)

// Fixed values written by install and remove.
const (
	// AuthServerTypeSharedTOTP marks the authserver entry handled by the TOTP plugin.
	AuthServerTypeSharedTOTP = "sharedtotp"

	// DefaultAuthServerName is the display name of a created TOTP authserver.
	DefaultAuthServerName = "TOTP Guest Access"

	// VoucherAuthServerName is the zone binding restored on remove.
	VoucherAuthServerName = "voucher server"
)
