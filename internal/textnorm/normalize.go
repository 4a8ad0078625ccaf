// Package textnorm canonicalizes complaint text before it is analyzed.
package textnorm

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize lower-cases text, replaces every rune outside [a-z0-9] with a space,
// collapses whitespace runs and trims the result. Normalize("") == "".
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	// A Caser is stateful, so one is built per call.
	lowered := cases.Lower(language.Und).String(text)

	var b strings.Builder
	b.Grow(len(lowered))
	pendingSpace := false
	for _, r := range lowered {
		if isKept(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

func isKept(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
