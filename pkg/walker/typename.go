package walker

import (
	"regexp"
	"strings"
)

var structPrefix = regexp.MustCompile(`^[ ]*(struct[ ]+)?`)

// NormalizeType strips leading blanks and a leading "struct " keyword, so
// "struct list_head" and "list_head" name the same type.
func NormalizeType(name string) string {
	return strings.TrimRight(structPrefix.ReplaceAllString(name, ""), " ")
}

// Deref removes one level of pointer indirection: "node_t **" becomes
// "node_t *". ok is false if name is not a pointer type.
func Deref(name string) (string, bool) {
	name = strings.TrimRight(name, " ")
	if !strings.HasSuffix(name, "*") {
		return "", false
	}
	return strings.TrimRight(strings.TrimSuffix(name, "*"), " "), true
}
