package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxNameLength bounds node and attribute names. Attribute labels carry a
// formatted value, so the limit is generous.
const maxNameLength = 512

// ValidateName validates a node or attribute name.
//
// The rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - Maximum length of 512 characters
//
// Names are free-form otherwise; the walker produces labels such as
// "list_head@0x4010" and "next  0x0000000000004010".
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "name contains invalid control characters")
		}
	}

	return nil
}

// typeNameRegex matches C type names with optional pointer suffixes,
// e.g. "list_head", "struct _LIST_ENTRY *", "node_t **".
var typeNameRegex = regexp.MustCompile(`^(struct\s+)?[A-Za-z_$?@][A-Za-z0-9_$?@:<>]*(\s*\*)*$`)

// ValidateTypeName validates a struct type name as typed by the user.
func ValidateTypeName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return New(ErrCodeInvalidInput, "type name cannot be empty")
	}

	if !typeNameRegex.MatchString(trimmed) {
		return New(ErrCodeInvalidInput, "invalid type name: %q", name)
	}

	return nil
}
