package catalog

import "io"

// Builder receives entries from a Reader as a catalog resource is parsed.
type Builder interface {

	// Registry returns the kinds recognized by the catalog being built
	Registry() *Registry

	// AddEntry adds a parsed entry.  Entries are normalized and classified
	// by the catalog; readers pass them along verbatim.
	AddEntry(Entry)

	// UnknownEntry is invoked with the tokens of a catalog entry whose
	// keyword is not recognized.  It is not an error.
	UnknownEntry(tokens []string)

	// CurrentBase returns the absolute base URI currently in effect
	CurrentBase() string

	// DefaultOverride returns the override policy at the start of a resource
	DefaultOverride() bool
}

// Reader parses one serialized catalog format.
//
// A reader that does not recognize its input fails with an error whose
// cause is ErrUnknownFormat or ErrUnparseable, in which case the next
// reader is tried.  A reader that recognizes the format but finds invalid
// content fails with ErrParseFailed, and no other reader is tried.
type Reader interface {
	ReadCatalog(b Builder, r io.Reader) error
}

// ReaderFunc is a function that can be used to satisfy the Reader interface
type ReaderFunc func(b Builder, r io.Reader) error

// ReadCatalog invokes the function
func (f ReaderFunc) ReadCatalog(b Builder, r io.Reader) error {
	return f(b, r)
}

// ReaderBinding associates a Reader with the MIME type of the format it reads
type ReaderBinding struct {
	MIME   string
	Reader Reader
}

// Opener fetches catalog resources given an absolute location
type Opener interface {

	// Open returns the content of the resource, and its content type if
	// known.  A missing resource is reported with an error whose cause is
	// ErrNotFound.
	Open(location string) (content io.ReadCloser, contentType string, err error)
}

// Bootstrap resolves well-known identifiers without any catalogs, e.g. to
// find the schema of the catalog format itself, or an alternate location for
// a catalog resource none of the readers could classify.  An empty string
// means no mapping.
type Bootstrap interface {
	ResolvePublic(publicID, systemID string) string
	ResolveSystem(systemID string) string
	ResolveURI(uri string) string
}

// Manager supplies the policy a catalog engine runs with
type Manager interface {

	// DefaultOverride is the initial value of the OVERRIDE toggle for
	// every catalog resource, i.e. whether PUBLIC entries are used when a
	// system identifier was supplied as well.
	DefaultOverride() bool

	// SeedLocations are the initial catalog locations, in order
	SeedLocations() []string

	// FoldSystemCase enables case-insensitive SYSTEM matching
	FoldSystemCase() bool

	// Debug is the diagnostic sink
	Debug() *Debug

	// Bootstrap is the fallback resolver, may be nil
	Bootstrap() Bootstrap
}
