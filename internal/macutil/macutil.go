// Package macutil canonicalizes MAC addresses for comparison and transmission.
package macutil

import "strings"

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// Normalize converts any MAC representation into aa:bb:cc:dd:ee:ff form.
// Every non-hex character is stripped; if exactly 12 hex digits remain they
// are re-joined in colon-separated pairs and lower-cased. Anything else is
// returned trimmed and lower-cased, on the assumption the caller already
// supplied a separated address. Never fails.
func Normalize(input string) string {
	var hex []byte
	for i := 0; i < len(input); i++ {
		if isHexDigit(input[i]) {
			hex = append(hex, input[i])
		}
	}

	if len(hex) != 12 {
		return strings.ToLower(strings.TrimSpace(input))
	}

	pairs := make([]string, 0, 6)
	for i := 0; i < 12; i += 2 {
		pairs = append(pairs, string(hex[i:i+2]))
	}

	return strings.ToLower(strings.Join(pairs, ":"))
}

// Equal reports whether two MAC representations refer to the same address.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
