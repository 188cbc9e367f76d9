package metadata

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/birkland/catalog"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"go.yaml.in/yaml/v3"
)

// Serialization formats
const (
	YAML = "yaml"
	JSON = "json"
	TOML = "toml"
)

// MIME types of the serialization formats
const (
	YAMLMIMEType = "application/yaml"
	JSONMIMEType = "application/json"
	TOMLMIMEType = "application/toml"
)

// Document is a structured catalog
type Document struct {
	Location     string     `json:"location,omitempty" yaml:"location,omitempty" toml:"location,omitempty"`
	Base         string     `json:"base,omitempty" yaml:"base,omitempty" toml:"base,omitempty"`
	Prefer       string     `json:"prefer,omitempty" yaml:"prefer,omitempty" toml:"prefer,omitempty"`
	Entries      []Entry    `json:"entries" yaml:"entries" toml:"entries"`
	Subordinates []Document `json:"subordinates,omitempty" yaml:"subordinates,omitempty" toml:"subordinates,omitempty"`
}

// Entry is a catalog entry: its kind keyword, and arguments
type Entry struct {
	Kind string   `json:"kind" yaml:"kind" toml:"kind"`
	Args []string `json:"args" yaml:"args" toml:"args"`
}

// FromEntries creates a document from the entries of a catalog
func FromEntries(reg *catalog.Registry, location string, entries []catalog.Entry) Document {
	doc := Document{
		Location: location,
		Entries:  make([]Entry, 0, len(entries)),
	}

	for _, e := range entries {
		doc.Entries = append(doc.Entries, Entry{Kind: reg.Name(e.Kind()), Args: e.Args()})
	}

	return doc
}

// Serialize writes the document in the given format
func (d *Document) Serialize(w io.Writer, format string) error {
	var err error

	switch strings.ToLower(format) {
	case YAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		err = enc.Encode(d)
		if err == nil {
			err = enc.Close()
		}
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(d)
	case TOML:
		err = toml.NewEncoder(w).Encode(d)
	default:
		return fmt.Errorf("unknown format %s", format)
	}

	return errors.Wrapf(err, "could not serialize catalog as %s", format)
}

// Apply feeds the document to a catalog builder
func (d *Document) Apply(b catalog.Builder) {
	reg := b.Registry()

	if d.Base != "" {
		add(b, catalog.Base, d.Base)
	}

	switch d.Prefer {
	case "public":
		add(b, catalog.Override, "YES")
	case "system":
		add(b, catalog.Override, "NO")
	}

	for _, de := range d.Entries {
		e, err := catalog.ParseEntry(reg, de.Kind, de.Args...)
		if err != nil {
			b.UnknownEntry(append([]string{de.Kind}, de.Args...))
			continue
		}
		b.AddEntry(e)
	}

	for _, sub := range d.Subordinates {
		if sub.Location != "" {
			add(b, catalog.Catalog, sub.Location)
		}
	}
}

func add(b catalog.Builder, kind catalog.Kind, arg string) {
	if e, err := catalog.NewEntry(b.Registry(), kind, arg); err == nil {
		b.AddEntry(e)
	}
}
