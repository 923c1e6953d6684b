package utils

import "strings"

// SanitizeShareName strips the share-encoding delimiters from a
// property name so the encoded record grid stays parseable. Field
// separator "|" and record separator ";" are removed, surrounding
// whitespace is trimmed.
func SanitizeShareName(name string) string {
	name = strings.ReplaceAll(name, "|", "")
	name = strings.ReplaceAll(name, ";", "")
	return strings.TrimSpace(name)
}
