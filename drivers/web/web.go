// Package web fetches catalog resources over HTTP, and queries external
// resolvers.
package web

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/birkland/catalog"
	"github.com/pkg/errors"
)

// DefaultTimeout bounds every request when Options does not
const DefaultTimeout = 10 * time.Second

// Options configure a Driver
type Options struct {
	Timeout time.Duration // per request, defaults to DefaultTimeout
	Client  *http.Client  // overrides Timeout when given
}

// Driver is an HTTP(S) catalog.Opener, and an external resolver client
type Driver struct {
	client *http.Client
}

// New creates a driver
func New(opts Options) *Driver {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &Driver{client: client}
}

// Open implements catalog.Opener
func (d *Driver) Open(location string) (io.ReadCloser, string, error) {
	return d.get(location)
}

// Query sends an external resolver query, following the
// command/format/uri/uri2 protocol.  The response body is a catalog.
func (d *Driver) Query(endpoint, command, uri, uri2 string) (io.ReadCloser, string, error) {
	params := url.Values{}
	params.Set("command", command)
	params.Set("format", "tr9401")
	params.Set("uri", uri)
	params.Set("uri2", uri2)

	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}

	return d.get(endpoint + sep + params.Encode())
}

func (d *Driver) get(location string) (io.ReadCloser, string, error) {
	resp, err := d.client.Get(location)
	if err != nil {
		return nil, "", errors.Wrapf(err, "could not fetch %s", location)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		_ = resp.Body.Close()
		return nil, "", errors.Wrapf(catalog.ErrNotFound, "%s returned %s", location, resp.Status)
	case resp.StatusCode >= 300:
		_ = resp.Body.Close()
		return nil, "", errors.Errorf("%s returned %s", location, resp.Status)
	}

	return resp.Body, MediaType(resp.Header.Get("Content-Type")), nil
}

// MediaType strips parameters (e.g. ;charset=...) from a content type
func MediaType(contentType string) string {
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
