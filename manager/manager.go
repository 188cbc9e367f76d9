// Package manager supplies catalog policy from configuration, and hands out
// resolvers built with it.
package manager

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/birkland/catalog"
	"github.com/birkland/catalog/drivers"
	"github.com/birkland/catalog/drivers/fs"
	"github.com/birkland/catalog/drivers/web"
	"github.com/birkland/catalog/resolv"
)

// Manager implements catalog.Manager over a Config
type Manager struct {
	cfg       Config
	debug     *catalog.Debug
	bootstrap Bootstrap
	opener    catalog.Opener
	client    resolv.ExternalClient

	mu     sync.Mutex
	static atomic.Pointer[resolv.Resolver]
}

// Option customizes a Manager
type Option func(*Manager)

// WithOpener replaces the transport used to fetch catalog resources
func WithOpener(o catalog.Opener) Option {
	return func(m *Manager) {
		m.opener = o
	}
}

// WithDebug replaces the diagnostic sink, which by default writes to stderr
func WithDebug(d *catalog.Debug) Option {
	return func(m *Manager) {
		m.debug = d
	}
}

// New creates a Manager
func New(cfg Config, opts ...Option) *Manager {
	m := &Manager{
		cfg:       cfg,
		bootstrap: NewBootstrap(cfg.Bootstrap),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.debug == nil {
		m.debug = catalog.NewDebug(os.Stderr, cfg.Verbosity)
	}

	m.client = web.New(web.Options{Timeout: cfg.ResolverTimeout})
	if m.opener == nil {
		m.opener = drivers.New(drivers.Options{Timeout: cfg.ResolverTimeout})
	}

	return m
}

// Config returns the configuration the manager was created with
func (m *Manager) Config() Config {
	return m.cfg
}

// DefaultOverride implements catalog.Manager.  It is on unless system
// identifiers are preferred.
func (m *Manager) DefaultOverride() bool {
	return m.cfg.Prefer != "system"
}

// SeedLocations implements catalog.Manager.  Configured catalogs come first,
// followed by the catalog files found in each catalog directory.
func (m *Manager) SeedLocations() []string {
	locations := append([]string(nil), m.cfg.Catalogs...)

	for _, dir := range m.cfg.CatalogDirs {
		found, err := fs.FindCatalogs(dir)
		if err != nil {
			m.debug.Message(catalog.LevelMissing, "Cannot search catalog directory", dir, err.Error())
			continue
		}
		locations = append(locations, found...)
	}

	return locations
}

// FoldSystemCase implements catalog.Manager
func (m *Manager) FoldSystemCase() bool {
	return m.cfg.FoldSystemCase
}

// Debug implements catalog.Manager
func (m *Manager) Debug() *catalog.Debug {
	return m.debug
}

// Bootstrap implements catalog.Manager
func (m *Manager) Bootstrap() catalog.Bootstrap {
	return m.bootstrap
}

// NewResolver creates an empty resolver configured by the manager, for
// callers that want to parse something before the seed catalogs.
func (m *Manager) NewResolver() *resolv.Resolver {
	return resolv.NewResolver(resolv.Config{
		Manager:          m,
		Opener:           m.opener,
		Client:           m.client,
		MaxExternalDepth: m.cfg.MaxResolverDepth,
	})
}

// PrivateResolver creates a new resolver and loads the seed catalogs into
// it.  Catalogs that cannot be loaded are reported through the diagnostic
// sink and skipped.
func (m *Manager) PrivateResolver() *resolv.Resolver {
	r := m.NewResolver()
	if err := r.LoadSystemCatalogs(); err != nil {
		m.debug.Message(catalog.LevelError, "Problem loading catalogs", err.Error())
	}

	return r
}

// StaticResolver returns the resolver shared by every caller, creating it
// on first use.
func (m *Manager) StaticResolver() *resolv.Resolver {
	if r := m.static.Load(); r != nil {
		return r
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if r := m.static.Load(); r != nil {
		return r
	}

	r := m.PrivateResolver()
	m.static.Store(r)
	return r
}

// Resolver returns the static resolver, or a private one if static_catalog
// is off.
func (m *Manager) Resolver() *resolv.Resolver {
	if m.cfg.StaticCatalog {
		return m.StaticResolver()
	}
	return m.PrivateResolver()
}

// Reset discards the static resolver, so that the next call to
// StaticResolver rebuilds it from the catalogs as they are now.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.static.Store(nil)
}
