// Package tr9401 reads SGML Open (TR9401) plain text catalogs.
//
// A text catalog is a sequence of whitespace separated tokens.  Tokens may be
// quoted with " or ', and anything between a pair of -- is a comment.  Each
// entry is a keyword followed by as many tokens as its kind takes.  Keywords
// that are not recognized start an unknown entry, which extends to the next
// recognized keyword.
package tr9401

import (
	"io"
	"io/ioutil"
	"strings"
	"unicode"

	"github.com/birkland/catalog"
	"github.com/pkg/errors"
)

// MIMEType is the content type text catalogs are served with
const MIMEType = "text/plain"

// Reader reads TR9401 catalogs
type Reader struct{}

// ReadCatalog implements catalog.Reader
func (Reader) ReadCatalog(b catalog.Builder, r io.Reader) error {
	content, err := ioutil.ReadAll(r)
	if err != nil {
		return errors.Wrapf(catalog.ErrUnparseable, "could not read text catalog: %s", err)
	}

	text := string(content)
	if strings.HasPrefix(strings.TrimLeftFunc(text, unicode.IsSpace), "<") {
		return errors.Wrapf(catalog.ErrUnknownFormat, "markup is not a text catalog")
	}

	reg := b.Registry()
	s := &scanner{text: text}

	var unknown []string
	flush := func() {
		if len(unknown) > 0 {
			b.UnknownEntry(unknown)
			unknown = nil
		}
	}

	for {
		tok, ok := s.next()
		if !ok {
			break
		}

		kind, known := keyword(reg, tok)
		if !known {
			unknown = append(unknown, tok)
			continue
		}
		flush()

		arity, _ := reg.Arity(kind)
		args := make([]string, 0, arity)
		for len(args) < arity {
			arg, ok := s.next()
			if !ok {
				return errors.Wrapf(catalog.ErrParseFailed, "%s entry is missing arguments", strings.ToUpper(tok))
			}
			args = append(args, arg)
		}

		e, err := catalog.NewEntry(reg, kind, args...)
		if err != nil {
			return errors.Wrapf(catalog.ErrParseFailed, "%s", err)
		}
		b.AddEntry(e)
	}

	if s.err != nil {
		return s.err
	}

	flush()
	return nil
}

// Keywords are case insensitive.  DELEGATE is the SGML name of DELEGATE_PUBLIC.
func keyword(reg *catalog.Registry, tok string) (catalog.Kind, bool) {
	name := strings.ToUpper(tok)
	if name == "DELEGATE" {
		return catalog.DelegatePublic, true
	}
	return reg.Lookup(name)
}

type scanner struct {
	text string
	pos  int
	err  error
}

// next returns the next token, skipping whitespace and comments
func (s *scanner) next() (string, bool) {
	for {
		s.skipSpace()
		if s.pos >= len(s.text) {
			return "", false
		}

		if !strings.HasPrefix(s.text[s.pos:], "--") {
			break
		}

		end := strings.Index(s.text[s.pos+2:], "--")
		if end < 0 {
			s.err = errors.Wrapf(catalog.ErrParseFailed, "unterminated comment at offset %d", s.pos)
			s.pos = len(s.text)
			return "", false
		}
		s.pos += end + 4
	}

	if q := s.text[s.pos]; q == '"' || q == '\'' {
		end := strings.IndexByte(s.text[s.pos+1:], q)
		if end < 0 {
			s.err = errors.Wrapf(catalog.ErrParseFailed, "unterminated literal at offset %d", s.pos)
			s.pos = len(s.text)
			return "", false
		}
		tok := s.text[s.pos+1 : s.pos+1+end]
		s.pos += end + 2
		return tok, true
	}

	start := s.pos
	for s.pos < len(s.text) && !isSpace(s.text[s.pos]) {
		s.pos++
	}
	return s.text[start:s.pos], true
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.text) && isSpace(s.text[s.pos]) {
		s.pos++
	}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f'
}
