package memsync

import (
	"html"
	"net/mail"
	"strings"
	"unicode"
)

// StripControlCharacters removes C0/C1 control characters from s.
// Newlines and tabs are dropped too: payload fields are single-line values.
func StripControlCharacters(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// EscapeMarkup escapes HTML markup special characters so free-text fields
// are inert on the transport.
func EscapeMarkup(s string) string {
	return html.EscapeString(s)
}

// SanitizeText normalizes a free-text field for the sync payload: control
// characters are stripped, markup is escaped, and surrounding whitespace is
// trimmed. Never fails; malformed input yields a best-effort result.
func SanitizeText(s string) string {
	return strings.TrimSpace(EscapeMarkup(StripControlCharacters(s)))
}

// NormalizeEmail validates the basic shape of an email address and returns it
// trimmed and lowercased. Returns the empty string when the input does not
// parse as an address (best effort, consistent with the mapper's no-fail
// contract).
func NormalizeEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return ""
	}
	return addr.Address
}
