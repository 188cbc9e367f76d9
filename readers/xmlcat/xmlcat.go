// Package xmlcat reads OASIS XML Catalogs, including the TR9401 and resolver
// extension namespaces, and legacy XCatalog documents.
package xmlcat

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/birkland/catalog"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/ianaindex"
)

// Namespaces of the recognized catalog vocabularies
const (
	OASISNamespace    = "urn:oasis:names:tc:entity:xmlns:xml:catalog"
	TR9401Namespace   = "urn:oasis:names:tc:entity:xmlns:tr9401:catalog"
	ResolverNamespace = "http://nwalsh.com/xcatalog/1.0"

	xmlNamespace = "http://www.w3.org/XML/1998/namespace"
)

// MIMETypes XML catalogs are served with
var MIMETypes = []string{"application/xml", "text/xml"}

// An element that produces an entry: the entry keyword, and the attributes
// supplying its arguments.
type rule struct {
	keyword string
	attrs   []string
}

var oasisRules = map[xml.Name]rule{
	{Space: OASISNamespace, Local: "public"}:         {"PUBLIC", []string{"publicId", "uri"}},
	{Space: OASISNamespace, Local: "system"}:         {"SYSTEM", []string{"systemId", "uri"}},
	{Space: OASISNamespace, Local: "rewriteSystem"}:  {"REWRITE_SYSTEM", []string{"systemIdStartString", "rewritePrefix"}},
	{Space: OASISNamespace, Local: "systemSuffix"}:   {"SYSTEM_SUFFIX", []string{"systemIdSuffix", "uri"}},
	{Space: OASISNamespace, Local: "delegatePublic"}: {"DELEGATE_PUBLIC", []string{"publicIdStartString", "catalog"}},
	{Space: OASISNamespace, Local: "delegateSystem"}: {"DELEGATE_SYSTEM", []string{"systemIdStartString", "catalog"}},
	{Space: OASISNamespace, Local: "uri"}:            {"URI", []string{"name", "uri"}},
	{Space: OASISNamespace, Local: "rewriteURI"}:     {"REWRITE_URI", []string{"uriStartString", "rewritePrefix"}},
	{Space: OASISNamespace, Local: "uriSuffix"}:      {"URI_SUFFIX", []string{"uriSuffix", "uri"}},
	{Space: OASISNamespace, Local: "delegateURI"}:    {"DELEGATE_URI", []string{"uriStartString", "catalog"}},
	{Space: OASISNamespace, Local: "nextCatalog"}:    {"CATALOG", []string{"catalog"}},

	{Space: TR9401Namespace, Local: "doctype"}:  {"DOCTYPE", []string{"name", "uri"}},
	{Space: TR9401Namespace, Local: "document"}: {"DOCUMENT", []string{"uri"}},
	{Space: TR9401Namespace, Local: "dtddecl"}:  {"DTDDECL", []string{"publicId", "uri"}},
	{Space: TR9401Namespace, Local: "entity"}:   {"ENTITY", []string{"name", "uri"}},
	{Space: TR9401Namespace, Local: "linktype"}: {"LINKTYPE", []string{"name", "uri"}},
	{Space: TR9401Namespace, Local: "notation"}: {"NOTATION", []string{"name", "uri"}},
	{Space: TR9401Namespace, Local: "sgmldecl"}: {"SGMLDECL", []string{"uri"}},

	{Space: ResolverNamespace, Local: "uriSuffix"}:    {"URISUFFIX", []string{"suffix", "uri"}},
	{Space: ResolverNamespace, Local: "systemSuffix"}: {"SYSTEMSUFFIX", []string{"suffix", "uri"}},
	{Space: ResolverNamespace, Local: "resolver"}:     {"RESOLVER", []string{"uri"}},
}

var xcatalogRules = map[xml.Name]rule{
	{Local: "Base"}:     {"BASE", []string{"HRef"}},
	{Local: "Map"}:      {"PUBLIC", []string{"PublicId", "HRef"}},
	{Local: "Delegate"}: {"DELEGATE_PUBLIC", []string{"PublicId", "HRef"}},
	{Local: "Extend"}:   {"CATALOG", []string{"HRef"}},
	{Local: "Remap"}:    {"SYSTEM", []string{"SystemId", "HRef"}},
}

// Reader reads XML catalogs
type Reader struct{}

// ReadCatalog implements catalog.Reader.  Input that is not XML, or whose
// root is not a catalog, is reported as ErrUnknownFormat.  Malformed XML
// within a catalog is ErrParseFailed.
func (Reader) ReadCatalog(b catalog.Builder, r io.Reader) error {
	d := xml.NewDecoder(r)
	d.CharsetReader = charsetReader

	root, err := findRoot(d)
	if err != nil {
		return errors.Wrapf(catalog.ErrUnknownFormat, "not an XML catalog: %s", err)
	}

	var p *parser
	switch {
	case root.Name.Space == OASISNamespace && root.Name.Local == "catalog":
		p = &parser{b: b, rules: oasisRules, scoped: true, override: b.DefaultOverride()}
	case root.Name.Space == "" && root.Name.Local == "XMLCatalog":
		p = &parser{b: b, rules: xcatalogRules}
	default:
		return errors.Wrapf(catalog.ErrUnknownFormat, "unrecognized root element {%s}%s",
			root.Name.Space, root.Name.Local)
	}

	p.start(root)
	return p.run(d)
}

func findRoot(d *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := d.Token()
		if err != nil {
			return xml.StartElement{}, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			return t, nil
		case xml.CharData:
			if len(strings.TrimSpace(string(t))) > 0 {
				return xml.StartElement{}, errors.New("content before the root element")
			}
		}
	}
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, errors.Errorf("unsupported encoding %s", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

// What an element changed, to be undone at its end
type frame struct {
	rebased   bool
	base      string
	preferred bool
	override  bool
}

type parser struct {
	b        catalog.Builder
	rules    map[xml.Name]rule
	scoped   bool // xml:base and prefer apply
	override bool
	stack    []frame
}

func (p *parser) run(d *xml.Decoder) error {
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(catalog.ErrParseFailed, "malformed XML catalog: %s", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !p.recognized(t.Name.Space) {
				if err := d.Skip(); err != nil {
					return errors.Wrapf(catalog.ErrParseFailed, "malformed XML catalog: %s", err)
				}
				continue
			}
			p.start(t)
		case xml.EndElement:
			p.end()
		}
	}
}

// Elements of other namespaces are ignored, along with their content
func (p *parser) recognized(space string) bool {
	if !p.scoped {
		return space == ""
	}
	return space == OASISNamespace || space == TR9401Namespace || space == ResolverNamespace
}

func (p *parser) start(t xml.StartElement) {
	var f frame

	if p.scoped {
		if base, ok := attr(t, xmlNamespace, "base"); ok {
			f.rebased, f.base = true, p.b.CurrentBase()
			p.add(catalog.Base, base)
		}

		if prefer, ok := attr(t, "", "prefer"); ok {
			switch strings.TrimSpace(prefer) {
			case "public":
				f.preferred, f.override = true, p.override
				p.override = true
			case "system":
				f.preferred, f.override = true, p.override
				p.override = false
			}
			if f.preferred {
				p.add(catalog.Override, yesNo(p.override))
			}
		}
	}

	p.stack = append(p.stack, f)
	p.entry(t)
}

func (p *parser) end() {
	if len(p.stack) == 0 {
		return
	}

	f := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]

	if f.preferred {
		p.override = f.override
		p.add(catalog.Override, yesNo(p.override))
	}

	if f.rebased && f.base != "" {
		p.add(catalog.Base, f.base)
	}
}

func (p *parser) entry(t xml.StartElement) {
	r, ok := p.rules[t.Name]
	if !ok {
		if t.Name.Local != "catalog" && t.Name.Local != "group" && t.Name.Local != "XMLCatalog" {
			p.b.UnknownEntry([]string{t.Name.Local})
		}
		return
	}

	kind, known := p.b.Registry().Lookup(r.keyword)
	args := make([]string, 0, len(r.attrs))
	for _, name := range r.attrs {
		if v, ok := attr(t, "", name); ok {
			args = append(args, v)
		}
	}

	if !known || len(args) != len(r.attrs) {
		p.b.UnknownEntry(append([]string{t.Name.Local}, args...))
		return
	}

	e, err := catalog.NewEntry(p.b.Registry(), kind, args...)
	if err != nil {
		p.b.UnknownEntry(append([]string{t.Name.Local}, args...))
		return
	}
	p.b.AddEntry(e)
}

func (p *parser) add(kind catalog.Kind, arg string) {
	if e, err := catalog.NewEntry(p.b.Registry(), kind, arg); err == nil {
		p.b.AddEntry(e)
	}
}

func attr(t xml.StartElement, space, local string) (string, bool) {
	for _, a := range t.Attr {
		if a.Name.Local != local {
			continue
		}
		if a.Name.Space == space || (space == xmlNamespace && a.Name.Space == "xml") {
			return a.Value, true
		}
	}
	return "", false
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}
