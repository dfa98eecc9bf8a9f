package domain

import (
	"github.com/CallMeGwei/captive-portal-totp/internal/errors"
)

// Portal template error definitions.
var (
	// ErrAssetNotFound indicates a required template asset is missing from the source directory.
	ErrAssetNotFound = errors.Wrap(errors.ErrNotFound, "portal asset not found")

	// ErrEmptyArchive indicates an archive with no payload was handed to an encoder.
	ErrEmptyArchive = errors.Wrap(errors.ErrInvalidInput, "template archive is empty")
)
