package pubid_test

import (
	"testing"

	"github.com/birkland/catalog/internal/pubid"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"-//A//DTD A//EN":           "-//A//DTD A//EN",
		"  -//A//DTD\t\tA//EN \n":   "-//A//DTD A//EN",
		"-//A//DTD\r\n   A   //EN":  "-//A//DTD A //EN",
		"":                          "",
	}

	for in, expected := range cases {
		if got := pubid.Normalize(in); got != expected {
			t.Errorf("Normalize(%q): expected %q, got %q", in, expected, got)
		}
	}
}

func TestURNRoundTrip(t *testing.T) {
	cases := []struct {
		publicID string
		urn      string
	}{
		{"-//OASIS//DTD DocBook XML V4.1.2//EN", "urn:publicid:-:OASIS:DTD+DocBook+XML+V4.1.2:EN"},
		{"ISO/IEC 10179:1996//DTD DSSSL Architecture//EN", "urn:publicid:ISO%2FIEC+10179%3A1996:DTD+DSSSL+Architecture:EN"},
		{"a::b;c", "urn:publicid:a;b%3Bc"},
		{"100% #1 ?'+", "urn:publicid:100%25+%231+%3F%27%2B"},
	}

	for _, c := range cases {
		c := c
		t.Run(c.publicID, func(t *testing.T) {
			if got := pubid.EncodeURN(c.publicID); got != c.urn {
				t.Errorf("EncodeURN: expected %q, got %q", c.urn, got)
			}
			if got := pubid.DecodeURN(c.urn); got != c.publicID {
				t.Errorf("DecodeURN: expected %q, got %q", c.publicID, got)
			}
		})
	}
}

func TestDecodeNotURN(t *testing.T) {
	if got := pubid.DecodeURN("http://example.org/a.dtd"); got != "http://example.org/a.dtd" {
		t.Errorf("non-URN input should be unchanged, got %q", got)
	}

	if !pubid.IsURN("URN:PublicID:-:A:B") {
		t.Errorf("prefix match should be case-insensitive")
	}

	if got := pubid.DecodeURN("urn:publicid:50%off"); got != "50%off" {
		t.Errorf("unknown escapes should be kept, got %q", got)
	}
}
