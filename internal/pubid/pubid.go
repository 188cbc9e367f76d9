// Package pubid normalizes public identifiers and converts them to and from
// urn:publicid: URNs (RFC 3151).
package pubid

import "strings"

// URNPrefix starts every public identifier URN
const URNPrefix = "urn:publicid:"

// Normalize collapses runs of whitespace to a single space, and trims
// leading and trailing whitespace.
func Normalize(publicID string) string {
	return strings.Join(strings.FieldsFunc(publicID, isSpace), " ")
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

// IsURN tells whether the identifier is a public identifier URN
func IsURN(id string) bool {
	return len(id) >= len(URNPrefix) && strings.EqualFold(id[:len(URNPrefix)], URNPrefix)
}

var encoder = strings.NewReplacer(
	"%", "%25",
	";", "%3B",
	"'", "%27",
	"?", "%3F",
	"#", "%23",
	"+", "%2B",
	"::", ";",
	":", "%3A",
	"//", ":",
	"/", "%2F",
	" ", "+",
)

// EncodeURN turns a public identifier into a urn:publicid: URN
func EncodeURN(publicID string) string {
	return URNPrefix + encoder.Replace(Normalize(publicID))
}

var escapes = map[string]string{
	"%2B": "+",
	"%3A": ":",
	"%2F": "/",
	"%3B": ";",
	"%27": "'",
	"%3F": "?",
	"%23": "#",
	"%25": "%",
}

// DecodeURN turns a urn:publicid: URN back into a public identifier.
// Anything that is not such a URN is returned unchanged.
func DecodeURN(urn string) string {
	if !IsURN(urn) {
		return urn
	}

	rest := strings.TrimSpace(urn[len(URNPrefix):])

	var b strings.Builder
	for len(rest) > 0 {
		switch {
		case rest[0] == '+':
			b.WriteByte(' ')
			rest = rest[1:]
		case rest[0] == ':':
			b.WriteString("//")
			rest = rest[1:]
		case rest[0] == ';':
			b.WriteString("::")
			rest = rest[1:]
		case rest[0] == '%' && len(rest) >= 3:
			if s, ok := escapes[strings.ToUpper(rest[:3])]; ok {
				b.WriteString(s)
				rest = rest[3:]
				continue
			}
			b.WriteByte('%')
			rest = rest[1:]
		default:
			b.WriteByte(rest[0])
			rest = rest[1:]
		}
	}

	return b.String()
}
