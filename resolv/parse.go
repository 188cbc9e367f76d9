package resolv

import (
	"bytes"
	"io"
	"io/ioutil"
	"reflect"

	"github.com/birkland/catalog"
	"github.com/birkland/catalog/drivers/web"
	"github.com/birkland/catalog/fspath"
	"github.com/birkland/catalog/internal/pubid"
	"github.com/birkland/catalog/internal/uri"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ParseCatalog parses the catalog at the given location, which may be a URL,
// or a file path relative to the working directory.  If the catalog has no
// content yet, the location becomes its body, otherwise it is recorded as a
// subordinate catalog to be loaded on demand.
//
// Failures to open or read a resource do not stop parsing.  They are
// returned as catalog.Errors once everything that could be parsed has been.
func (c *Catalog) ParseCatalog(location string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.queue = append(c.queue, location)
	return c.parsePending()
}

// LoadSystemCatalogs parses the seed locations supplied by the manager
func (c *Catalog) LoadSystemCatalogs() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.queue = append(c.queue, c.cfg.Manager.SeedLocations()...)
	return c.parsePending()
}

// ParseStream parses catalog content using the reader bound to the given
// MIME type.  Relative references are resolved against the current base, or
// the working directory if there is none yet.
func (c *Catalog) ParseStream(mimeType string, r io.Reader) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	reader := c.readerFor(mimeType)
	if reader == nil {
		return &catalog.Error{
			Class: catalog.FormatError,
			Err:   errors.Wrapf(catalog.ErrUnknownFormat, "no reader for MIME type %q", mimeType),
		}
	}

	if c.base == nil {
		cwd, err := fspath.Cwd()
		if err != nil {
			return &catalog.Error{Class: catalog.ResourceError, Err: err}
		}
		c.base = cwd
	}

	c.state = parsing
	s := c.stage()
	if err := reader.ReadCatalog(s, r); err != nil {
		c.state = parsed
		return &catalog.Error{Class: catalog.Classify(err), Err: err}
	}
	s.commit()

	return c.parsePending()
}

// ParseAllCatalogs loads every subordinate catalog, and theirs, so that later
// queries do not need to.  Delegated catalogs are not affected; they are
// always loaded when a query is delegated.
func (c *Catalog) ParseAllCatalogs() error {
	c.mu.Lock()
	subs := append([]*slot(nil), c.subs...)
	c.mu.Unlock()

	var g errgroup.Group
	for _, s := range subs {
		s := s
		g.Go(func() error {
			sub, err := c.materialize(s)
			if e := sub.ParseAllCatalogs(); err == nil {
				err = e
			}
			return err
		})
	}

	return g.Wait()
}

// AddEntry adds an entry to the catalog, normalizing and classifying it
// exactly as if it had been read from a catalog resource.
func (c *Catalog) AddEntry(e catalog.Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.addEntry(e)

	if c.state != parsing {
		for _, loc := range c.local {
			c.subs = append(c.subs, &slot{location: loc})
		}
		c.local = nil
		c.flushDelegates()
	}
}

// Works through the queue of catalog locations.  Must be called with the
// lock held.
func (c *Catalog) parsePending() error {
	var errs catalog.Errors

	c.state = parsing
	defer func() { c.state = parsed }()

	c.mergeLocal()
	if len(c.queue) == 0 {
		c.flushDelegates()
	}

	for len(c.queue) > 0 {
		loc := c.queue[0]
		c.queue = c.queue[1:]

		if len(c.entries) == 0 && len(c.subs) == 0 {
			// Nothing parsed yet, so this one becomes the body
			if err := c.parseResource(loc); err != nil {
				errs = append(errs, err)
			}
		} else {
			c.subs = append(c.subs, &slot{location: loc})
		}

		c.mergeLocal()
		c.flushDelegates()
	}

	return errs.Err()
}

// Places the CATALOG entries of the resource just parsed at the front of the
// queue, ahead of anything queued before.
func (c *Catalog) mergeLocal() {
	if len(c.local) == 0 {
		return
	}

	queue := make([]string, 0, len(c.local)+len(c.queue))
	queue = append(append(queue, c.local...), c.queue...)
	c.queue = queue
	c.local = nil
}

// Delegates go last, so PUBLIC and SYSTEM entries are always tried first
func (c *Catalog) flushDelegates() {
	c.entries = append(c.entries, c.delegates...)
	c.delegates = nil
}

// Parses a single resource into the catalog
func (c *Catalog) parseResource(location string) *catalog.Error {
	cwd, err := fspath.Cwd()
	if err != nil {
		return &catalog.Error{Class: catalog.ResourceError, Location: location, Err: err}
	}

	base, err := uri.Rebase(cwd, location)
	if err != nil {
		c.debug.Message(catalog.LevelError, "Malformed catalog location", location)
		return &catalog.Error{Class: catalog.ResourceError, Location: location, Err: err}
	}

	abs := base.String()
	if c.seen(abs) {
		c.debug.Message(catalog.LevelError, "Catalog inclusion cycle, skipping", abs)
		return nil
	}

	c.debug.Message(catalog.LevelLoad, "Loading catalog", location)
	c.debug.Message(catalog.LevelBase, "Default BASE", abs)

	c.base = base
	c.loaded = append(c.loaded, abs)

	cerr := c.read(abs)
	if cerr == nil || errors.Cause(cerr.Err) != catalog.ErrUnknownFormat {
		return cerr
	}

	// None of the readers could make sense of it.  Try the bootstrap
	// resolver for an alternate location.
	if boot := c.cfg.Manager.Bootstrap(); boot != nil {
		if alt := boot.ResolveURI(abs); alt != "" && alt != abs {
			c.debug.Message(catalog.LevelLoad, "Loading catalog from bootstrap location", alt)
			return c.read(alt)
		}
	}

	return cerr
}

// Fetches a resource and offers it to each reader in turn.
func (c *Catalog) read(location string) *catalog.Error {
	content, err := c.fetch(location)
	if err != nil {
		if errors.Cause(err) == catalog.ErrNotFound {
			c.debug.Message(catalog.LevelMissing, "Catalog does not exist", location)
		} else {
			c.debug.Message(catalog.LevelError, "Failed to open catalog", location, err.Error())
		}
		return &catalog.Error{Class: catalog.ResourceError, Location: location, Err: err}
	}

	var tried []catalog.Reader
	for _, binding := range c.cfg.Readers {
		if contains(tried, binding.Reader) {
			continue
		}
		tried = append(tried, binding.Reader)

		s := c.stage()
		err = binding.Reader.ReadCatalog(s, bytes.NewReader(content))
		if err == nil {
			s.commit()
			return nil
		}

		if errors.Cause(err) == catalog.ErrParseFailed {
			break
		}
	}

	if err == nil {
		err = errors.Wrapf(catalog.ErrUnknownFormat, "no readers configured")
	}

	c.debug.Message(catalog.LevelError, "Failed to parse catalog", location, err.Error())
	return &catalog.Error{Class: catalog.FormatError, Location: location, Err: err}
}

// Readers bound to several MIME types are only tried once
func contains(readers []catalog.Reader, r catalog.Reader) bool {
	if !reflect.TypeOf(r).Comparable() {
		return false
	}
	for _, t := range readers {
		if t == r {
			return true
		}
	}
	return false
}

func (c *Catalog) fetch(location string) ([]byte, error) {
	rc, _, err := c.cfg.Opener.Open(location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	content, err := ioutil.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading %s", location)
	}
	return content, nil
}

func (c *Catalog) readerFor(mimeType string) catalog.Reader {
	mimeType = web.MediaType(mimeType)
	for _, binding := range c.cfg.Readers {
		if binding.MIME == mimeType {
			return binding.Reader
		}
	}
	return nil
}

// Whether a location has been parsed here, or by a catalog leading here
func (c *Catalog) seen(location string) bool {
	for _, l := range c.loaded {
		if l == location {
			return true
		}
	}
	for _, l := range c.lineage {
		if l == location {
			return true
		}
	}
	return false
}

// Loads a subordinate catalog, if it hasn't been already
func (c *Catalog) materialize(s *slot) (*Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.catalog != nil {
		return s.catalog, nil
	}

	child := c.newChild()
	err := child.ParseCatalog(s.location)
	if err != nil {
		c.debug.Message(catalog.LevelError, "Problem loading subordinate catalog", s.location, err.Error())
	}

	s.catalog = child
	return child, err
}

// Normalizes and classifies an entry.  Must be called with the lock held.
func (c *Catalog) addEntry(e catalog.Entry) {
	switch e.Kind() {
	case catalog.Base:
		c.debug.Message(catalog.LevelEntry, "BASE STR", e.Arg(0))
		base, err := uri.Rebase(c.base, e.Arg(0))
		if err != nil {
			c.debug.Message(catalog.LevelError, "Malformed URL on base", e.Arg(0))
			return
		}
		c.base = base
		c.debug.Message(catalog.LevelBase, "BASE NEW", base.String())

	case catalog.Catalog:
		loc := c.absolute(e.Arg(0))
		c.debug.Message(catalog.LevelEntry, "CATALOG", loc)
		c.local = append(c.local, loc)

	case catalog.DelegatePublic:
		e = e.WithArg(0, pubid.Normalize(e.Arg(0))).WithArg(1, c.location(e.Arg(1)))
		c.debug.Message(catalog.LevelEntry, "DELEGATE_PUBLIC", e.Arg(0), e.Arg(1))
		c.addDelegate(e)

	case catalog.DelegateSystem, catalog.DelegateURI:
		e = e.WithArg(0, uri.Normalize(e.Arg(0))).WithArg(1, c.location(e.Arg(1)))
		c.debug.Message(catalog.LevelEntry, e.Kind().String(), e.Arg(0), e.Arg(1))
		c.addDelegate(e)

	default:
		e = c.normalize(e)
		c.debug.Message(catalog.LevelEntry, c.cfg.Registry.Name(e.Kind()), e.Args()...)
		c.entries = append(c.entries, e)
	}
}

// Produces the normalized form of a non-structural entry
func (c *Catalog) normalize(e catalog.Entry) catalog.Entry {
	switch e.Kind() {
	case catalog.Public, catalog.DTDDecl:
		return e.WithArg(0, pubid.Normalize(e.Arg(0))).WithArg(1, c.location(e.Arg(1)))
	case catalog.System, catalog.URI, catalog.RewriteSystem, catalog.RewriteURI,
		catalog.SystemSuffix, catalog.URISuffix:
		return e.WithArg(0, uri.Normalize(e.Arg(0))).WithArg(1, c.location(e.Arg(1)))
	case catalog.Document, catalog.SGMLDecl:
		return e.WithArg(0, c.location(e.Arg(0)))
	case catalog.Doctype, catalog.Entity, catalog.Notation, catalog.LinkType:
		return e.WithArg(1, c.location(e.Arg(1)))
	}

	if c.ext != nil {
		return c.ext.normalize(c, e)
	}
	return e
}

// Inserts a delegate entry, keeping them ordered from the longest partial
// identifier to the shortest.  Only the first entry for a given partial
// identifier is kept, whatever its kind.
func (c *Catalog) addDelegate(e catalog.Entry) {
	partial := e.Arg(0)

	// Ahead of the first shorter partial, after any of equal length
	pos := 0
	for _, d := range c.delegates {
		dp := d.Arg(0)
		if dp == partial {
			return
		}
		if len(dp) < len(partial) {
			break
		}
		pos++
	}

	c.delegates = append(c.delegates, catalog.Entry{})
	copy(c.delegates[pos+1:], c.delegates[pos:])
	c.delegates[pos] = e
}

func (c *Catalog) unknownEntry(tokens []string) {
	if len(tokens) > 0 {
		c.debug.Message(catalog.LevelLoad, "Unrecognized token parsing catalog", tokens[0])
	}
	if c.cfg.OnUnknown != nil {
		c.cfg.OnUnknown(tokens)
	}
}

// A location-valued argument: normalized, then made absolute
func (c *Catalog) location(ref string) string {
	return c.absolute(uri.Normalize(ref))
}

func (c *Catalog) absolute(ref string) string {
	return uri.Resolve(c.base, ref)
}
