package form

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// FieldLabel turns a server field key into the label shown to users:
// "states_stateNameId" becomes "State Name".
func FieldLabel(key string) string {
	segment := key
	if parts := strings.Split(key, "_"); len(parts) > 1 {
		segment = parts[1]
	}

	stripped := stripIDSuffix(segment)
	if strings.TrimSpace(stripped) == "" {
		stripped = segment
	}

	return capitalizeFirst(strings.TrimSpace(spaceCamel(stripped)))
}

// RewriteMessage replaces the first occurrence of the raw key in a server
// message with its label.
func RewriteMessage(message, key, label string) string {
	if key == "" || !strings.Contains(message, key) {
		return message
	}
	return strings.Replace(message, key, label, 1)
}

func stripIDSuffix(s string) string {
	for _, suffix := range []string{"key", "id"} {
		if len(s) < len(suffix) {
			continue
		}
		if strings.EqualFold(s[len(s)-len(suffix):], suffix) {
			return s[:len(s)-len(suffix)]
		}
	}
	return s
}

func spaceCamel(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
