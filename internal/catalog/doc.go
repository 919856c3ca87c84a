// Package catalog holds the canonical song list used to reconcile hand-typed
// session entries.
//
// A Catalog is built once per run from loaded entries and is read-only
// afterwards: it precomputes the normalized comparison key of every entry so
// matchers only analyze the query side. Loaders accept the aggregated
// song-sheet dataset (JSON array or JSON Lines of drive file records with a
// properties map) as well as hand-maintained YAML lists.
package catalog
