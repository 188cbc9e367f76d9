// Package drivers selects a transport for catalog resources by URL scheme.
package drivers

import (
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/birkland/catalog"
	"github.com/birkland/catalog/drivers/fs"
	"github.com/birkland/catalog/drivers/web"
	"github.com/pkg/errors"
)

// Options configure the transports
type Options struct {
	Root    string        // base directory for relative file paths
	Timeout time.Duration // HTTP request timeout
}

// Mux is a catalog.Opener that dispatches on the scheme of a location.
// Locations without a scheme (or with a drive letter) are file paths.
type Mux struct {
	schemes map[string]catalog.Opener
}

// New creates a Mux for file:, http: and https: locations
func New(opts Options) *Mux {
	file := fs.NewDriver(opts.Root)
	http := web.New(web.Options{Timeout: opts.Timeout})

	return &Mux{
		schemes: map[string]catalog.Opener{
			"":      file,
			"file":  file,
			"http":  http,
			"https": http,
		},
	}
}

// Register adds (or replaces) the opener for a scheme
func (m *Mux) Register(scheme string, o catalog.Opener) {
	m.schemes[strings.ToLower(scheme)] = o
}

// Open implements catalog.Opener
func (m *Mux) Open(location string) (io.ReadCloser, string, error) {
	scheme := ""
	if u, err := url.Parse(location); err == nil && len(u.Scheme) > 1 {
		scheme = strings.ToLower(u.Scheme)
	}

	o, ok := m.schemes[scheme]
	if !ok {
		return nil, "", errors.Errorf("no driver for %s", location)
	}

	return o.Open(location)
}
