// Package resolv provides the catalog resolution engine.
//
// A Catalog is seeded with one or more catalog locations.  The first one is
// parsed eagerly, and becomes the body of the catalog.  Catalogs pulled in
// afterwards (by CATALOG entries, or additional seed locations) are only
// recorded, and loaded the first time a query needs them.  Delegated catalogs
// are loaded for every query that is delegated to them.
//
// Resolver extends Catalog with suffix entries, external network resolvers,
// and queries that collect every match, or map locations back to identifiers.
package resolv
