// Package metadata reads and writes catalogs as structured documents: YAML,
// JSON or TOML renditions of the entry model.
//
// A document has an optional base and prefer setting, and a list of entries,
// each a kind keyword and its arguments:
//
//	base: http://example.org/dtds/
//	prefer: public
//	entries:
//	  - kind: PUBLIC
//	    args: ["-//A//DTD A//EN", a.dtd]
//	  - kind: CATALOG
//	    args: [more.yaml]
//
// Documents produced by dumping a loaded catalog additionally carry their
// location and their subordinate catalogs.  When read back, each subordinate
// becomes a CATALOG entry.
package metadata
