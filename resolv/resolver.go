package resolv

import (
	"io"
	"net/url"

	"github.com/birkland/catalog"
	"github.com/birkland/catalog/drivers/web"
	"github.com/birkland/catalog/internal/pubid"
	"github.com/birkland/catalog/internal/uri"
	"golang.org/x/text/cases"
)

// DefaultMaxExternalDepth bounds the nesting of external resolver queries
// when the configuration does not.
const DefaultMaxExternalDepth = 3

// External resolver commands
const (
	CommandIdentifier = "i2l"   // system identifier or URI to location
	CommandPublic     = "fpi2l" // formal public identifier to location
)

// ExternalClient queries an external resolver endpoint, returning a catalog
// and its content type.  Failures of any kind mean the resolver has no
// answer.
type ExternalClient interface {
	Query(endpoint, command, uri, uri2 string) (body io.ReadCloser, contentType string, err error)
}

// A catalog extension: extra kinds, with their own normalization, consulted
// once the built-in kinds yield nothing.
type extension interface {
	normalize(c *Catalog, e catalog.Entry) catalog.Entry
	resolve(c *Catalog, entries []catalog.Entry, q query) string
}

// Resolver is a Catalog that additionally understands URISUFFIX,
// SYSTEMSUFFIX and RESOLVER entries, and answers collect-all and reverse
// queries.
type Resolver struct {
	*Catalog
}

// NewResolver creates an empty resolver.  Subordinate and delegated catalogs
// of a resolver are resolvers too, so any Factory in the configuration is
// replaced.
func NewResolver(cfg Config) *Resolver {
	if cfg.Registry == nil {
		cfg.Registry = catalog.NewRegistry()
	}
	if cfg.Client == nil {
		cfg.Client = web.New(web.Options{})
	}
	if cfg.MaxExternalDepth <= 0 {
		cfg.MaxExternalDepth = DefaultMaxExternalDepth
	}

	ext := &resolverExt{
		uriSuffix:    cfg.Registry.Register("URISUFFIX", 2),
		systemSuffix: cfg.Registry.Register("SYSTEMSUFFIX", 2),
		resolver:     cfg.Registry.Register("RESOLVER", 1),
	}

	cfg.Factory = FactoryFunc(func(cfg Config) *Catalog {
		return newCatalog(cfg, ext)
	})

	return &Resolver{Catalog: newCatalog(cfg, ext)}
}

type resolverExt struct {
	uriSuffix    catalog.Kind
	systemSuffix catalog.Kind
	resolver     catalog.Kind
}

func (x *resolverExt) normalize(c *Catalog, e catalog.Entry) catalog.Entry {
	switch e.Kind() {
	case x.uriSuffix, x.systemSuffix:
		return e.WithArg(0, uri.Normalize(e.Arg(0))).WithArg(1, c.location(e.Arg(1)))
	case x.resolver:
		return e.WithArg(0, c.location(e.Arg(0)))
	}
	return e
}

// RESOLVER and suffix entries are tried in the order they appear
func (x *resolverExt) resolve(c *Catalog, entries []catalog.Entry, q query) string {
	switch q.kind {
	case catalog.System, catalog.URI:
		if q.systemID == "" {
			return ""
		}

		suffix := x.systemSuffix
		if q.kind == catalog.URI {
			suffix = x.uriSuffix
		}

		for _, e := range entries {
			switch e.Kind() {
			case x.resolver:
				if r := x.external(c, e.Arg(0), CommandIdentifier, q.systemID, "", q); r != "" {
					return r
				}
			case suffix:
				if uri.HasSuffix(q.systemID, e.Arg(0)) {
					return e.Arg(1)
				}
			}
		}

	case catalog.Public:
		for _, e := range entries {
			if e.Kind() != x.resolver {
				continue
			}
			if r := x.external(c, e.Arg(0), CommandPublic, q.publicID, q.systemID, q); r != "" {
				return r
			}
		}
	}

	return ""
}

// Queries an external resolver, and resolves the query against the catalog
// it returns.
func (x *resolverExt) external(c *Catalog, endpoint, command, id, id2 string, q query) string {
	if c.depth >= c.cfg.MaxExternalDepth {
		c.debug.Message(catalog.LevelError, "External resolvers nested too deeply, skipping", endpoint)
		return ""
	}

	body, contentType, err := c.cfg.Client.Query(endpoint, command, id, id2)
	if err != nil {
		c.debug.Message(catalog.LevelError, "External resolver failed", endpoint, err.Error())
		return ""
	}
	defer body.Close()

	r := c.newChild()
	r.depth = c.depth + 1
	if base, err := url.Parse(endpoint); err == nil {
		r.base = base
	}

	if err := r.ParseStream(contentType, body); err != nil {
		c.debug.Message(catalog.LevelError, "Problem parsing external resolver response", endpoint, err.Error())
	}

	return r.resolve(q)
}

// ResolveAllSystem returns every location mapped to a system identifier by
// any catalog in the tree of subordinate catalogs.
func (r *Resolver) ResolveAllSystem(systemID string) []string {
	if pubid.IsURN(systemID) {
		return r.ResolveAllPublic(pubid.DecodeURN(systemID), "")
	}
	return r.allSystem(uri.Normalize(systemID))
}

// ResolveSystemReverse returns a system identifier the tree maps to the given
// location, or an empty string.
func (r *Resolver) ResolveSystemReverse(location string) string {
	found := r.reverseSystem(uri.Normalize(location), false)
	if len(found) == 0 {
		return ""
	}
	return found[0]
}

// ResolveAllSystemReverse returns every system identifier the tree maps to
// the given location.
func (r *Resolver) ResolveAllSystemReverse(location string) []string {
	return r.reverseSystem(uri.Normalize(location), true)
}

// ResolveAllPublic returns the locations mapped to a public identifier by
// this catalog, followed by those of the first subordinate catalog that maps
// it at all.
func (r *Resolver) ResolveAllPublic(publicID, systemID string) []string {
	pub, sys := r.prepare(publicID, systemID)
	return r.collect(query{kind: catalog.Public, publicID: pub, systemID: sys})
}

// ResolveAllDoctype is ResolveAllPublic for DOCTYPE entries
func (r *Resolver) ResolveAllDoctype(name, publicID, systemID string) []string {
	pub, sys := r.prepare(publicID, systemID)
	return r.collect(query{kind: catalog.Doctype, name: name, publicID: pub, systemID: sys})
}

// ResolveAllEntity is ResolveAllPublic for ENTITY entries
func (r *Resolver) ResolveAllEntity(name, publicID, systemID string) []string {
	pub, sys := r.prepare(publicID, systemID)
	return r.collect(query{kind: catalog.Entity, name: name, publicID: pub, systemID: sys})
}

// ResolveAllNotation is ResolveAllPublic for NOTATION entries
func (r *Resolver) ResolveAllNotation(name, publicID, systemID string) []string {
	pub, sys := r.prepare(publicID, systemID)
	return r.collect(query{kind: catalog.Notation, name: name, publicID: pub, systemID: sys})
}

// ResolveAllDocument is ResolveAllPublic for DOCUMENT entries
func (r *Resolver) ResolveAllDocument() []string {
	return r.collect(query{kind: catalog.Document})
}

func (c *Catalog) allSystem(id string) []string {
	equal := func(a string) bool { return a == id }
	if c.fold {
		fold := cases.Fold()
		folded := fold.String(id)
		equal = func(a string) bool { return fold.String(a) == folded }
	}

	var found []string
	for _, e := range c.snapshot() {
		if e.Kind() == catalog.System && equal(e.Arg(0)) {
			found = append(found, e.Arg(1))
		}
	}

	for _, s := range c.slots() {
		sub, _ := c.materialize(s)
		found = append(found, sub.allSystem(id)...)
	}

	return found
}

func (c *Catalog) reverseSystem(location string, all bool) []string {
	var found []string
	for _, e := range c.snapshot() {
		if e.Kind() == catalog.System && e.Arg(1) == location {
			found = append(found, e.Arg(0))
			if !all {
				return found
			}
		}
	}

	for _, s := range c.slots() {
		sub, _ := c.materialize(s)
		found = append(found, sub.reverseSystem(location, all)...)
		if !all && len(found) > 0 {
			return found
		}
	}

	return found
}

// Local matches, plus those of the first subordinate that has any
func (c *Catalog) collect(q query) []string {
	found := c.localAll(c.snapshot(), q)

	for _, s := range c.slots() {
		sub, _ := c.materialize(s)
		if more := sub.collect(q); len(more) > 0 {
			return append(found, more...)
		}
	}

	return found
}

func (c *Catalog) localAll(entries []catalog.Entry, q query) []string {
	var found []string

	over := c.override
	for _, e := range entries {
		switch e.Kind() {
		case catalog.Override:
			over = overrides(e)
		case catalog.Document:
			if q.kind == catalog.Document {
				found = append(found, e.Arg(0))
			}
		case catalog.Public:
			if q.kind == catalog.Public && e.Arg(0) == q.publicID && (over || q.systemID == "") {
				found = append(found, e.Arg(1))
			}
		case catalog.Doctype, catalog.Entity, catalog.Notation:
			if e.Kind() == q.kind && e.Arg(0) == q.name && (over || q.systemID == "") {
				found = append(found, e.Arg(1))
			}
		}
	}

	return found
}
