package entity

import "strings"

// normalizeFold lowercases a string for case-insensitive matching while
// preserving diacritics, since the gazetteer and keyword lists carry both
// accented and unaccented variants explicitly.
func normalizeFold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
