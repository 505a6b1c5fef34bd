// Package email holds the address helpers shared by the form engine, the
// submission gateway, and the registration endpoint. Both sides of the wire
// must normalize and shape-check addresses identically.
package email

import (
	"regexp"
	"strings"
)

// addressShape accepts local-part "@" domain "." extension with no whitespace.
// This is deliberately a generic shape check, not full RFC 5322.
var addressShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Normalize trims surrounding whitespace and lowercases an address. The
// normalized form is what gets compared, stored, and transmitted.
func Normalize(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// HasValidShape reports whether addr looks like local@domain.ext.
func HasValidShape(addr string) bool {
	return addressShape.MatchString(addr)
}

// Domain returns the part after the last "@", lowercased, or "" when the
// address has no "@".
func Domain(addr string) string {
	at := strings.LastIndexByte(addr, '@')
	if at < 0 {
		return ""
	}
	return strings.ToLower(addr[at+1:])
}
