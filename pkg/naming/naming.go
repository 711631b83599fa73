// Package naming converts Go identifiers to the wire field names expected by
// the messenger API and encodes JSON using that convention.
package naming

import (
	"strings"
	"unicode"
)

// SeparateCamelCase inserts separator before every upper-case letter except
// when it would be the first character of the result.
func SeparateCamelCase(name, separator string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)

	for _, r := range name {
		if unicode.IsUpper(r) && b.Len() != 0 {
			b.WriteString(separator)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SnakeCase maps AccountId to account_id and phoneNumbers to phone_numbers.
// Every capital starts a new word, so URL becomes u_r_l.
func SnakeCase(name string) string {
	return strings.ToLower(SeparateCamelCase(name, "_"))
}
