package metadata

import (
	"io"
	"io/ioutil"

	"github.com/birkland/catalog"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"go.yaml.in/yaml/v3"
)

// YAMLReader reads YAML documents, and so JSON documents as well
type YAMLReader struct{}

// ReadCatalog implements catalog.Reader
func (YAMLReader) ReadCatalog(b catalog.Builder, r io.Reader) error {
	return read(b, r, yaml.Unmarshal)
}

// TOMLReader reads TOML documents
type TOMLReader struct{}

// ReadCatalog implements catalog.Reader
func (TOMLReader) ReadCatalog(b catalog.Builder, r io.Reader) error {
	return read(b, r, toml.Unmarshal)
}

// DecodeFunc decodes a serialized document, e.g. yaml.Unmarshal
type DecodeFunc func(data []byte, v interface{}) error

func read(b catalog.Builder, r io.Reader, unmarshal DecodeFunc) error {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return errors.Wrapf(catalog.ErrUnparseable, "could not read document: %s", err)
	}

	doc, err := Parse(data, unmarshal)
	if err != nil {
		return err
	}

	doc.Apply(b)
	return nil
}

// Parse decodes and validates a document.  Content that does not decode, or
// does not look like a catalog document at all, is reported as
// catalog.ErrUnknownFormat.  A catalog document violating the schema is
// catalog.ErrParseFailed.
func Parse(data []byte, unmarshal DecodeFunc) (*Document, error) {
	var raw interface{}
	if err := unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(catalog.ErrUnknownFormat, "could not decode document: %s", err)
	}

	fields, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errors.Wrapf(catalog.ErrUnknownFormat, "document is not a mapping")
	}
	if _, ok := fields["entries"]; !ok {
		return nil, errors.Wrapf(catalog.ErrUnknownFormat, "document has no entries")
	}

	issues, err := Validate(raw)
	if err != nil {
		return nil, errors.Wrapf(catalog.ErrParseFailed, "could not validate document: %s", err)
	}
	if len(issues) > 0 {
		return nil, errors.Wrapf(catalog.ErrParseFailed, "invalid catalog document: %s", issues)
	}

	var doc Document
	if err := unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(catalog.ErrParseFailed, "could not decode document: %s", err)
	}

	return &doc, nil
}
