package resolv

import (
	"strings"

	"github.com/birkland/catalog"
	"github.com/birkland/catalog/internal/pubid"
	"github.com/birkland/catalog/internal/uri"
	"golang.org/x/text/cases"
)

// A resolution query.  Identifiers are normalized before a query is made, so
// the same query can be handed to subordinate and delegated catalogs as-is.
type query struct {
	kind     catalog.Kind // System, URI, Public, Doctype, Entity, Notation or Document
	name     string       // doctype, entity or notation name
	publicID string
	systemID string
}

// The entry kinds that apply to system identifiers, or URIs
type family struct {
	exact, rewrite, suffix, delegate catalog.Kind
}

var (
	systemFamily = family{catalog.System, catalog.RewriteSystem, catalog.SystemSuffix, catalog.DelegateSystem}
	uriFamily    = family{catalog.URI, catalog.RewriteURI, catalog.URISuffix, catalog.DelegateURI}
)

func (q query) family() family {
	if q.kind == catalog.URI {
		return uriFamily
	}
	return systemFamily
}

// ResolveSystem returns the location mapped to a system identifier, or an
// empty string if no reachable catalog maps it.  A urn:publicid: system
// identifier is resolved as the public identifier it encodes.
func (c *Catalog) ResolveSystem(systemID string) string {
	c.debug.Message(catalog.LevelEntry, "resolveSystem", systemID)

	if pubid.IsURN(systemID) {
		return c.resolve(query{kind: catalog.Public, publicID: pubid.Normalize(pubid.DecodeURN(systemID))})
	}
	return c.resolve(query{kind: catalog.System, systemID: uri.Normalize(systemID)})
}

// ResolveURI returns the location mapped to a URI, or an empty string.
func (c *Catalog) ResolveURI(ref string) string {
	c.debug.Message(catalog.LevelEntry, "resolveURI", ref)

	if pubid.IsURN(ref) {
		return c.resolve(query{kind: catalog.Public, publicID: pubid.Normalize(pubid.DecodeURN(ref))})
	}
	return c.resolve(query{kind: catalog.URI, systemID: uri.Normalize(ref)})
}

// ResolvePublic returns the location mapped to a public identifier, or to
// the accompanying system identifier, which may be empty.
func (c *Catalog) ResolvePublic(publicID, systemID string) string {
	c.debug.Message(catalog.LevelEntry, "resolvePublic", publicID, systemID)

	pub, sys := c.prepare(publicID, systemID)
	return c.resolve(query{kind: catalog.Public, publicID: pub, systemID: sys})
}

// ResolveDoctype resolves the external subset of a document type
func (c *Catalog) ResolveDoctype(name, publicID, systemID string) string {
	c.debug.Message(catalog.LevelEntry, "resolveDoctype", name, publicID, systemID)

	pub, sys := c.prepare(publicID, systemID)
	return c.resolve(query{kind: catalog.Doctype, name: name, publicID: pub, systemID: sys})
}

// ResolveEntity resolves an external entity
func (c *Catalog) ResolveEntity(name, publicID, systemID string) string {
	c.debug.Message(catalog.LevelEntry, "resolveEntity", name, publicID, systemID)

	pub, sys := c.prepare(publicID, systemID)
	return c.resolve(query{kind: catalog.Entity, name: name, publicID: pub, systemID: sys})
}

// ResolveNotation resolves a notation
func (c *Catalog) ResolveNotation(name, publicID, systemID string) string {
	c.debug.Message(catalog.LevelEntry, "resolveNotation", name, publicID, systemID)

	pub, sys := c.prepare(publicID, systemID)
	return c.resolve(query{kind: catalog.Notation, name: name, publicID: pub, systemID: sys})
}

// ResolveDocument returns the location of the default document, if any
// catalog names one.
func (c *Catalog) ResolveDocument() string {
	c.debug.Message(catalog.LevelEntry, "resolveDocument")
	return c.resolve(query{kind: catalog.Document})
}

// Unwraps urn:publicid: identifiers and normalizes both identifiers.
func (c *Catalog) prepare(publicID, systemID string) (string, string) {
	if pubid.IsURN(publicID) {
		publicID = pubid.DecodeURN(publicID)
	}
	publicID = pubid.Normalize(publicID)

	if pubid.IsURN(systemID) {
		decoded := pubid.Normalize(pubid.DecodeURN(systemID))
		switch {
		case publicID == "":
			publicID = decoded
		case publicID != decoded:
			c.debug.Message(catalog.LevelError,
				"urn:publicid: system identifier differs from public identifier, ignoring it", systemID)
		}
		systemID = ""
	}

	return publicID, uri.Normalize(systemID)
}

func (c *Catalog) resolve(q query) string {
	if r := c.resolveLocal(c.snapshot(), q); r != "" {
		return r
	}
	return c.resolveSubordinates(q)
}

// The entries of a parsed catalog.  Entries are only ever appended, so the
// snapshot can be scanned without holding the lock.
func (c *Catalog) snapshot() []catalog.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[:len(c.entries):len(c.entries)]
}

func (c *Catalog) slots() []*slot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*slot(nil), c.subs...)
}

// Everything this catalog can answer without its subordinates
func (c *Catalog) resolveLocal(entries []catalog.Entry, q query) string {
	if q.kind == catalog.Document {
		for _, e := range entries {
			if e.Kind() == catalog.Document {
				return e.Arg(0)
			}
		}
		return ""
	}

	fam := q.family()

	if q.systemID != "" {
		if r := c.direct(entries, fam, q.systemID); r != "" {
			return r
		}
	}

	if q.publicID != "" {
		if r := c.localPublic(entries, q); r != "" {
			return r
		}
		if r := c.delegatePublic(entries, q); r != "" {
			return r
		}
	}

	if q.systemID != "" {
		if r := c.delegateSystem(entries, fam, q); r != "" {
			return r
		}
	}

	switch q.kind {
	case catalog.Doctype, catalog.Entity, catalog.Notation:
		if r := c.named(entries, q); r != "" {
			return r
		}
	}

	if c.ext != nil {
		return c.ext.resolve(c, entries, q)
	}
	return ""
}

// Exact, then longest rewrite prefix, then longest suffix
func (c *Catalog) direct(entries []catalog.Entry, fam family, id string) string {
	equal := func(a, b string) bool { return a == b }
	if c.fold && fam.exact == catalog.System {
		fold := cases.Fold()
		folded := fold.String(id)
		equal = func(a, _ string) bool { return fold.String(a) == folded }
	}

	for _, e := range entries {
		if e.Kind() == fam.exact && equal(e.Arg(0), id) {
			return e.Arg(1)
		}
	}

	var rewrite *catalog.Entry
	for i, e := range entries {
		if e.Kind() != fam.rewrite || !uri.HasPrefix(id, e.Arg(0)) {
			continue
		}
		if rewrite == nil || len(e.Arg(0)) > len(rewrite.Arg(0)) {
			rewrite = &entries[i]
		}
	}
	if rewrite != nil {
		return rewrite.Arg(1) + id[len(rewrite.Arg(0)):]
	}

	var suffix *catalog.Entry
	for i, e := range entries {
		if e.Kind() != fam.suffix || !uri.HasSuffix(id, e.Arg(0)) {
			continue
		}
		if suffix == nil || len(e.Arg(0)) > len(suffix.Arg(0)) {
			suffix = &entries[i]
		}
	}
	if suffix != nil {
		return suffix.Arg(1)
	}

	return ""
}

// PUBLIC entries are only usable while OVERRIDE is on, unless no system
// identifier was given.  The toggle follows the OVERRIDE entries preceding
// each PUBLIC entry.
func (c *Catalog) localPublic(entries []catalog.Entry, q query) string {
	over := c.override
	for _, e := range entries {
		switch e.Kind() {
		case catalog.Override:
			over = overrides(e)
		case catalog.Public:
			if e.Arg(0) == q.publicID && (over || q.systemID == "") {
				return e.Arg(1)
			}
		}
	}
	return ""
}

func (c *Catalog) delegatePublic(entries []catalog.Entry, q query) string {
	var targets []string

	over := c.override
	for _, e := range entries {
		switch e.Kind() {
		case catalog.Override:
			over = overrides(e)
		case catalog.DelegatePublic:
			if (over || q.systemID == "") && strings.HasPrefix(q.publicID, e.Arg(0)) {
				targets = append(targets, e.Arg(1))
			}
		}
	}

	if len(targets) == 0 {
		return ""
	}
	return c.delegate(targets, query{kind: catalog.Public, publicID: q.publicID})
}

func (c *Catalog) delegateSystem(entries []catalog.Entry, fam family, q query) string {
	var targets []string
	for _, e := range entries {
		if e.Kind() == fam.delegate && uri.HasPrefix(q.systemID, e.Arg(0)) {
			targets = append(targets, e.Arg(1))
		}
	}

	if len(targets) == 0 {
		return ""
	}
	return c.delegate(targets, query{kind: fam.exact, systemID: q.systemID})
}

// Delegated catalogs are parsed anew for every query, since each query may
// select a different set of them.
func (c *Catalog) delegate(targets []string, q query) string {
	c.debug.Message(catalog.LevelLoad, "Switching to delegated catalog(s)", targets...)

	d := c.newChild()
	for _, t := range targets {
		if err := d.ParseCatalog(t); err != nil {
			c.debug.Message(catalog.LevelError, "Problem loading delegated catalog", t, err.Error())
		}
	}

	return d.resolve(q)
}

// DOCTYPE, ENTITY and NOTATION entries, by name
func (c *Catalog) named(entries []catalog.Entry, q query) string {
	over := c.override
	for _, e := range entries {
		switch e.Kind() {
		case catalog.Override:
			over = overrides(e)
		case q.kind:
			if e.Arg(0) == q.name && (over || q.systemID == "") {
				return e.Arg(1)
			}
		}
	}
	return ""
}

func (c *Catalog) resolveSubordinates(q query) string {
	for _, s := range c.slots() {
		sub, _ := c.materialize(s)
		if r := sub.resolve(q); r != "" {
			return r
		}
	}
	return ""
}

func overrides(e catalog.Entry) bool {
	return strings.EqualFold(e.Arg(0), "yes")
}
