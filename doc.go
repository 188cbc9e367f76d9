// Package catalog defines the entry model and collaborator interfaces for
// resolving public identifiers, system identifiers and URIs through OASIS
// Open Catalogs.
//
// Resolution itself is performed by the engine in resolv/.  Catalog files are
// parsed by one or more Reader implementations (see readers/ and metadata/),
// fetched through an Opener (see drivers/), and configured by a Manager (see
// manager/).
package catalog
