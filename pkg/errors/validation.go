package errors

import (
	"regexp"
	"unicode"
)

// maxNameLength bounds trigger, node and placement names.
const maxNameLength = 128

// nameRegex matches identifiers used in scenario files and placement tables.
var nameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.:-]*$`)

// ValidateName validates a trigger, node or placement name.
//
// Validation rules:
//   - Name cannot be empty
//   - Maximum length of 128 characters
//   - No control characters
//   - Must start with a letter or underscore, then letters, digits, '_', '.', ':' or '-'
func ValidateName(kind, name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "%s name cannot be empty", kind)
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "%s name too long (max %d characters)", kind, maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "%s name contains invalid control characters", kind)
		}
	}

	if !nameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid %s name: %q", kind, name)
	}

	return nil
}
