// Package fspath converts between local filesystem paths and the file: URLs
// catalogs use as base locations.
package fspath

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ToURL converts a filesystem path into an absolute file: URL.
// Directories (or paths ending in a separator) get a trailing slash, so that
// they work as a base for relative references.
func ToURL(path string) (*url.URL, error) {
	trailing := strings.HasSuffix(path, string(filepath.Separator)) || strings.HasSuffix(path, "/")

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not calculate absolute path of %s", path)
	}

	if !trailing {
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			trailing = true
		}
	}

	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") { // Windows drive letter
		p = "/" + p
	}
	if trailing && !strings.HasSuffix(p, "/") {
		p += "/"
	}

	return &url.URL{Scheme: "file", Path: p}, nil
}

// FromURL converts a file: URL into a local filesystem path
func FromURL(u *url.URL) (string, error) {
	if u.Scheme != "file" {
		return "", errors.Errorf("not a file URL: %s", u)
	}

	if u.Host != "" && u.Host != "localhost" {
		return "", errors.Errorf("file URL refers to a remote host: %s", u)
	}

	p := u.Path
	if p == "" {
		p = u.Opaque
	}
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' { // /C:/...
		p = p[1:]
	}

	return filepath.FromSlash(p), nil
}

// Cwd returns the current working directory as a file: URL, which is the
// base against which relative catalog locations are resolved.
func Cwd() (*url.URL, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrapf(err, "could not determine working directory")
	}
	return ToURL(wd + string(filepath.Separator))
}
