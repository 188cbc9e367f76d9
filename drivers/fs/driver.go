package fs

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/birkland/catalog"
	"github.com/birkland/catalog/fspath"
	"github.com/pkg/errors"
)

// Driver opens catalog resources on the local filesystem.  It accepts file:
// URLs as well as bare filesystem paths.
type Driver struct {
	Root string // base directory for relative paths, defaults to the working directory
}

// NewDriver creates a filesystem driver rooted at the given directory
func NewDriver(root string) *Driver {
	return &Driver{Root: root}
}

// Open implements catalog.Opener
func (d *Driver) Open(location string) (io.ReadCloser, string, error) {
	path, err := d.Path(location)
	if err != nil {
		return nil, "", err
	}

	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, "", errors.Wrapf(catalog.ErrNotFound, "no catalog at %s", path)
	}
	if err != nil {
		return nil, "", errors.Wrapf(err, "could not open catalog %s", path)
	}

	info, err := file.Stat()
	if err == nil && info.IsDir() {
		_ = file.Close()
		return nil, "", errors.Errorf("catalog %s is a directory", path)
	}

	return file, ContentType(path), nil
}

// Path calculates the filesystem path of a location
func (d *Driver) Path(location string) (string, error) {
	if u, err := url.Parse(location); err == nil && u.Scheme == "file" {
		return fspath.FromURL(u)
	}

	path := filepath.FromSlash(location)
	if !filepath.IsAbs(path) && d.Root != "" {
		path = filepath.Join(d.Root, path)
	}
	return path, nil
}

var contentTypes = map[string]string{
	".xml":  "application/xml",
	".xcat": "application/xml",
	".cat":  "text/plain",
	".soc":  "text/plain",
	".txt":  "text/plain",
	".yaml": "application/yaml",
	".yml":  "application/yaml",
	".json": "application/json",
	".toml": "application/toml",
}

// ContentType guesses the content type of a catalog file from its
// extension.  Unknown extensions give an empty string.
func ContentType(path string) string {
	return contentTypes[strings.ToLower(filepath.Ext(path))]
}
