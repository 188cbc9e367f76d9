package resolv

import (
	"net/url"
	"sync"

	"github.com/birkland/catalog"
	"github.com/birkland/catalog/drivers"
	"github.com/birkland/catalog/internal/uri"
	"github.com/birkland/catalog/readers"
)

// Config establishes the collaborators a catalog works with.  Unset fields
// get defaults when the catalog is created.
type Config struct {
	Registry *catalog.Registry       // entry kinds, defaults to the built-ins
	Manager  catalog.Manager         // policy, defaults to an empty catalog.Policy
	Readers  []catalog.ReaderBinding // tried in order, defaults to readers.Default()
	Opener   catalog.Opener          // transport, defaults to drivers.New()
	Factory  Factory                 // creates subordinate and delegate catalogs

	// OnUnknown is invoked with the tokens of every unrecognized catalog
	// entry.  Unrecognized entries are otherwise ignored.
	OnUnknown func(tokens []string)

	// Client performs external resolver queries (Resolver only)
	Client ExternalClient

	// MaxExternalDepth bounds how deeply catalogs returned by external
	// resolvers may in turn query external resolvers (Resolver only)
	MaxExternalDepth int
}

// Factory creates a fresh, empty catalog configured like an existing one
type Factory interface {
	NewCatalog(cfg Config) *Catalog
}

// FactoryFunc is a function that can be used to satisfy the Factory interface
type FactoryFunc func(cfg Config) *Catalog

// NewCatalog invokes the function
func (f FactoryFunc) NewCatalog(cfg Config) *Catalog {
	return f(cfg)
}

type state int

const (
	unparsed state = iota
	parsing
	parsed
)

// Catalog is a set of catalog entries, plus references to subordinate and
// delegated catalogs, capable of resolving identifiers.
//
// Parsing must not be interleaved with other operations on the same
// Catalog.  Once parsed, a catalog may be queried concurrently.
type Catalog struct {
	cfg      Config
	debug    *catalog.Debug
	override bool
	fold     bool
	ext      extension

	mu        sync.Mutex
	state     state
	base      *url.URL
	entries   []catalog.Entry
	subs      []*slot
	queue     []string        // catalog locations still to be parsed
	local     []string        // CATALOG entries of the resource being parsed
	delegates []catalog.Entry // DELEGATE_* entries of the resource being parsed
	loaded    []string        // locations parsed into entries
	lineage   []string        // locations of the catalogs that led here
	depth     int             // external resolver nesting
}

// A subordinate catalog, loaded the first time it is needed
type slot struct {
	mu       sync.Mutex
	location string
	catalog  *Catalog
}

// Subordinate describes a subordinate catalog of a Catalog
type Subordinate struct {
	Location string
	Catalog  *Catalog // nil until loaded
}

// NewCatalog creates an empty catalog
func NewCatalog(cfg Config) *Catalog {
	return newCatalog(cfg, nil)
}

func newCatalog(cfg Config, ext extension) *Catalog {
	if cfg.Registry == nil {
		cfg.Registry = catalog.NewRegistry()
	}
	if cfg.Manager == nil {
		cfg.Manager = &catalog.Policy{}
	}
	if cfg.Readers == nil {
		cfg.Readers = readers.Default()
	}
	if cfg.Opener == nil {
		cfg.Opener = drivers.New(drivers.Options{})
	}
	if cfg.Factory == nil {
		cfg.Factory = FactoryFunc(NewCatalog)
	}

	return &Catalog{
		cfg:      cfg,
		debug:    cfg.Manager.Debug(),
		override: cfg.Manager.DefaultOverride(),
		fold:     cfg.Manager.FoldSystemCase(),
		ext:      ext,
	}
}

// newChild creates a catalog through the factory, carrying over the lineage
// of this one, so that inclusion cycles can be detected.
func (c *Catalog) newChild() *Catalog {
	child := c.cfg.Factory.NewCatalog(c.cfg)

	c.mu.Lock()
	defer c.mu.Unlock()

	child.lineage = make([]string, 0, len(c.lineage)+len(c.loaded))
	child.lineage = append(append(child.lineage, c.lineage...), c.loaded...)
	child.depth = c.depth
	return child
}

// Registry returns the entry kinds known to the catalog
func (c *Catalog) Registry() *catalog.Registry {
	return c.cfg.Registry
}

// Base returns the current base URI, or an empty string if there is none
func (c *Catalog) Base() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.base == nil {
		return ""
	}
	return c.base.String()
}

// Entries returns the entries of the catalog, in order
func (c *Catalog) Entries() []catalog.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]catalog.Entry(nil), c.entries...)
}

// Subordinates lists the subordinate catalogs, loaded or not
func (c *Catalog) Subordinates() []Subordinate {
	c.mu.Lock()
	subs := append([]*slot(nil), c.subs...)
	c.mu.Unlock()

	list := make([]Subordinate, 0, len(subs))
	for _, s := range subs {
		s.mu.Lock()
		list = append(list, Subordinate{Location: s.location, Catalog: s.catalog})
		s.mu.Unlock()
	}
	return list
}

// Parsed tells whether the catalog has finished parsing at least once
func (c *Catalog) Parsed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == parsed
}

// stage is the view of a catalog handed to readers while a resource is
// parsed.  Entries are held back until the reader succeeds, so a resource
// that fails to parse contributes nothing, and a reader that gives up
// partway leaves nothing behind for the next one to duplicate.
type stage struct {
	c    *Catalog
	base *url.URL
	ops  []staged
}

// An entry, or the tokens of an unrecognized one
type staged struct {
	entry   catalog.Entry
	unknown []string
}

// Must be called with the lock held
func (c *Catalog) stage() *stage {
	return &stage{c: c, base: c.base}
}

func (s *stage) Registry() *catalog.Registry {
	return s.c.cfg.Registry
}

func (s *stage) AddEntry(e catalog.Entry) {
	if e.Kind() == catalog.Base {
		if base, err := uri.Rebase(s.base, e.Arg(0)); err == nil {
			s.base = base
		}
	}
	s.ops = append(s.ops, staged{entry: e})
}

func (s *stage) UnknownEntry(tokens []string) {
	s.ops = append(s.ops, staged{unknown: tokens})
}

func (s *stage) CurrentBase() string {
	if s.base == nil {
		return ""
	}
	return s.base.String()
}

func (s *stage) DefaultOverride() bool {
	return s.c.override
}

// Adds everything the reader produced to the catalog, in order.  Must be
// called with the lock held.
func (s *stage) commit() {
	for _, op := range s.ops {
		if op.unknown != nil {
			s.c.unknownEntry(op.unknown)
			continue
		}
		s.c.addEntry(op.entry)
	}
	s.ops = nil
}
