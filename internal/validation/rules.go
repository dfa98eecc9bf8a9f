// Package validation provides custom validation rules for the application.
package validation

import (
	"path/filepath"
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/CallMeGwei/captive-portal-totp/internal/errors"
)

var (
	// groupNameRegex follows the portable POSIX user/group name pattern
	groupNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// AbsolutePath validates that a string is an absolute, already-clean filesystem path.
var AbsolutePath = validation.NewStringRuleWithError(
	func(s string) bool {
		return filepath.IsAbs(s) && filepath.Clean(s) == s
	},
	validation.NewError("validation_absolute_path", "must be a clean absolute path"),
)

// FileName validates that a string is a bare file name with no directory part.
var FileName = validation.NewStringRuleWithError(
	func(s string) bool {
		return s != "." && s != ".." && filepath.Base(s) == s && !strings.ContainsRune(s, '/')
	},
	validation.NewError("validation_file_name", "must be a file name without directory components"),
)

// GroupName validates a Unix group name.
var GroupName = validation.NewStringRuleWithError(
	func(s string) bool {
		return groupNameRegex.MatchString(s)
	},
	validation.NewError("validation_group_name", "must be a valid unix group name"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
