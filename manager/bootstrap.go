package manager

import (
	"github.com/birkland/catalog/internal/pubid"
	"github.com/birkland/catalog/internal/uri"
)

// Bootstrap is a catalog.Bootstrap backed by a fixed table of identifiers.
// Public identifiers and URIs are matched after normalization.
type Bootstrap map[string]string

// NewBootstrap builds the table from configured entries, later entries
// replacing earlier ones.
func NewBootstrap(entries []BootstrapEntry) Bootstrap {
	b := make(Bootstrap, 2*len(entries))
	for _, e := range entries {
		b[pubid.Normalize(e.ID)] = e.Location
		b[uri.Normalize(e.ID)] = e.Location
	}
	return b
}

// ResolvePublic implements catalog.Bootstrap
func (b Bootstrap) ResolvePublic(publicID, systemID string) string {
	if loc, ok := b[pubid.Normalize(publicID)]; ok && publicID != "" {
		return loc
	}
	if systemID == "" {
		return ""
	}
	return b.ResolveSystem(systemID)
}

// ResolveSystem implements catalog.Bootstrap
func (b Bootstrap) ResolveSystem(systemID string) string {
	if systemID == "" {
		return ""
	}
	return b[uri.Normalize(systemID)]
}

// ResolveURI implements catalog.Bootstrap
func (b Bootstrap) ResolveURI(ref string) string {
	return b.ResolveSystem(ref)
}
