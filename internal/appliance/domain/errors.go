package domain

import (
	"github.com/CallMeGwei/captive-portal-totp/internal/errors"
)

// Configuration document error definitions.
var (
	// ErrMissingRoot indicates the document has no root element.
	ErrMissingRoot = errors.Wrap(errors.ErrInvalidInput, "configuration document has no root element")

	// ErrMissingSystem indicates the document lacks the system section.
	ErrMissingSystem = errors.Wrap(errors.ErrPrecondition, "system section not found in configuration")

	// ErrMissingCaptivePortal indicates the document lacks the captiveportal section.
	ErrMissingCaptivePortal = errors.Wrap(errors.ErrPrecondition, "captiveportal section not found in configuration")

	// ErrMissingTemplateContent indicates install was called without an embedded payload.
	ErrMissingTemplateContent = errors.Wrap(errors.ErrInvalidInput, "template content is required")
)

// Configuration file error definitions.
var (
	// ErrConfigNotFound indicates the configuration document file does not exist.
	ErrConfigNotFound = errors.Wrap(errors.ErrPrecondition, "configuration document not found")

	// ErrMalformedConfig indicates the configuration document could not be parsed.
	ErrMalformedConfig = errors.Wrap(errors.ErrInvalidInput, "malformed configuration document")
)
