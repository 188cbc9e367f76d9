// Package uri holds the URI handling rules catalogs apply to system
// identifiers, URIs and catalog locations.
package uri

import (
	"fmt"
	"net/url"
	"strings"
)

// Normalize percent-encodes the bytes that are not allowed to appear
// literally in a URI reference: controls, space, non-ASCII bytes (of the UTF-8
// encoding), and " < > \ ^ ` { | }.  Existing escapes are left alone, so
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(ref string) string {
	var b strings.Builder
	b.Grow(len(ref))

	for i := 0; i < len(ref); i++ {
		if ch := ref[i]; unsafe(ch) {
			fmt.Fprintf(&b, "%%%02X", ch)
		} else {
			b.WriteByte(ch)
		}
	}

	return b.String()
}

func unsafe(ch byte) bool {
	if ch <= 0x20 || ch >= 0x7F {
		return true
	}
	switch ch {
	case '"', '<', '>', '\\', '^', '`', '{', '|', '}':
		return true
	}
	return false
}

// FixSlashes turns backslashes into forward slashes
func FixSlashes(ref string) string {
	return strings.Replace(ref, "\\", "/", -1)
}

// Resolve resolves ref against base.  If ref cannot be parsed as a URI
// reference, it is returned unchanged.
func Resolve(base *url.URL, ref string) string {
	ref = FixSlashes(ref)
	if base == nil {
		return ref
	}

	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}

	return base.ResolveReference(u).String()
}

// Rebase computes a new base from an existing one.  A relative value layers
// on top of the current base.  Unparseable values are treated as file paths.
func Rebase(base *url.URL, value string) (*url.URL, error) {
	value = FixSlashes(value)

	u, err := url.Parse(value)
	if err != nil {
		u, err = url.Parse("file:" + value)
		if err != nil {
			return nil, fmt.Errorf("malformed base %q", value)
		}
	}

	if base == nil {
		return u, nil
	}
	return base.ResolveReference(u), nil
}

// HasPrefix tells whether s starts with the literal prefix p
func HasPrefix(s, p string) bool {
	return len(p) <= len(s) && s[:len(p)] == p
}

// HasSuffix tells whether s ends with the literal suffix p
func HasSuffix(s, p string) bool {
	return len(p) <= len(s) && s[len(s)-len(p):] == p
}
